package payment

import "errors"

var (
	// ErrInsufficientFunds indicates the paying account balance is too small.
	ErrInsufficientFunds = errors.New("payment: insufficient funds")

	// ErrAccountFrozen indicates the receiving account cannot accept funds.
	ErrAccountFrozen = errors.New("payment: account frozen")

	// ErrZeroAmount indicates a transfer or deposit of zero.
	ErrZeroAmount = errors.New("payment: zero amount")

	// ErrInvalidRoyalty indicates a royalty percentage above the maximum.
	ErrInvalidRoyalty = errors.New("payment: royalty exceeds maximum")

	// ErrNoPayouts indicates a batch transfer with no payout legs.
	ErrNoPayouts = errors.New("payment: no payouts")
)
