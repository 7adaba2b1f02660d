// Package payment provides the balance ledger used for marketplace
// settlement: listing fees in, sale proceeds out, commission withdrawal.
//
// All amounts are unsigned integers in the native payment unit. Transfers
// are all-or-nothing: a transfer either moves the full amount or fails
// without touching any balance. An account can be frozen to model a
// receiving party that is unable to accept funds.
package payment

import (
	"fmt"
	"sync"

	"github.com/blockhole/libmarket-go/identity"
)

// Ledger tracks account balances.
type Ledger struct {
	mu       sync.Mutex
	balances map[identity.Address]uint64
	frozen   map[identity.Address]bool
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[identity.Address]uint64),
		frozen:   make(map[identity.Address]bool),
	}
}

// Deposit credits an account. Used to fund accounts from outside the
// marketplace (the equivalent of value arriving with a call).
func (l *Ledger) Deposit(addr identity.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.frozen[addr] {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, addr)
	}
	l.balances[addr] += amount
	return nil
}

// Balance returns the current balance of an account. Unknown accounts
// have balance zero.
func (l *Ledger) Balance(addr identity.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// Freeze marks an account as unable to accept funds.
func (l *Ledger) Freeze(addr identity.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frozen[addr] = true
}

// Unfreeze restores an account's ability to accept funds.
func (l *Ledger) Unfreeze(addr identity.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.frozen, addr)
}

// Transfer moves amount from one account to another. It fails with
// ErrInsufficientFunds if the payer's balance is too small and with
// ErrAccountFrozen if the recipient cannot accept funds; on failure no
// balance changes.
func (l *Ledger) Transfer(from, to identity.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.frozen[to] {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, to)
	}
	if l.balances[from] < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, l.balances[from], amount)
	}

	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// TransferBatch moves the sum of all payouts from one payer to each
// payout recipient. The batch is atomic: every leg is validated before
// any balance moves, so a frozen recipient or insufficient balance
// leaves the ledger untouched.
func (l *Ledger) TransferBatch(from identity.Address, payouts []Payout) error {
	if len(payouts) == 0 {
		return ErrNoPayouts
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var total uint64
	for _, p := range payouts {
		if p.Amount == 0 {
			continue
		}
		if l.frozen[p.To] {
			return fmt.Errorf("%w: %s", ErrAccountFrozen, p.To)
		}
		total += p.Amount
	}
	if total == 0 {
		return ErrZeroAmount
	}
	if l.balances[from] < total {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, l.balances[from], total)
	}

	l.balances[from] -= total
	for _, p := range payouts {
		if p.Amount == 0 {
			continue
		}
		l.balances[p.To] += p.Amount
	}
	return nil
}
