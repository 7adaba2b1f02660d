// Package market implements the marketplace ledger: the state machine
// governing item listings, escrow custody, fee collection and payment
// distribution for uniquely-owned digital assets.
//
// A listing moves an item through a single cycle:
//
//	Unlisted → (List) → Escrowed → (Buy | Cancel) → Unlisted
//
// While a listing is active, the marketplace's own escrow account is
// the item's custodian in the asset registry. Every operation runs
// under one lock and either completes fully or leaves no trace: a
// failed precondition, payment or store write unwinds all effects of
// the enclosing operation.
package market

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/blockhole/libmarket-go/asset"
	"github.com/blockhole/libmarket-go/identity"
	"github.com/blockhole/libmarket-go/payment"
)

// Registry is the asset registry the marketplace issues all custody
// changes through. It is assumed correct and atomic; the marketplace
// never bypasses it.
type Registry interface {
	Mint(creator identity.Address, metadataURI string, royaltyPercent uint8) (uint64, error)
	OwnerOf(itemID uint64) (identity.Address, error)
	Transfer(from, to identity.Address, itemID uint64) error
	Item(itemID uint64) (asset.Item, error)
}

// Payments moves funds between accounts. Transfers may fail (a
// recipient can be unable to accept funds); a failed transfer must not
// move any balance.
type Payments interface {
	Transfer(from, to identity.Address, amount uint64) error
	TransferBatch(from identity.Address, payouts []payment.Payout) error
}

// Compile-time interface checks against the in-tree implementations.
var (
	_ Registry = (*asset.Registry)(nil)
	_ Payments = (*payment.Ledger)(nil)
)

// Params holds the collaborators and configuration for a Marketplace.
type Params struct {
	Registry Registry
	Payments Payments
	Store    Store

	// Operator may change the listing fee and withdraw commission.
	Operator identity.Address

	// Escrow is the marketplace's own account: custodian of listed
	// items and recipient of listing fees. A fresh account is
	// generated when left zero.
	Escrow identity.Address

	// RoyaltySplit pays the creator their royalty percentage of each
	// sale when the seller is not the creator. When false the seller
	// receives the full price and the stored royalty is informational.
	RoyaltySplit bool

	Logger *zap.Logger
}

// Marketplace is the marketplace ledger.
type Marketplace struct {
	mu       sync.Mutex
	registry Registry
	payments Payments
	store    Store

	operator     identity.Address
	escrow       identity.Address
	royaltySplit bool

	log      *zap.Logger
	handlers []func(Event)
}

// New creates a Marketplace from its collaborators.
func New(p Params) (*Marketplace, error) {
	if p.Registry == nil {
		return nil, fmt.Errorf("%w: registry", ErrNilParam)
	}
	if p.Payments == nil {
		return nil, fmt.Errorf("%w: payments", ErrNilParam)
	}
	if p.Store == nil {
		return nil, fmt.Errorf("%w: store", ErrNilParam)
	}
	if p.Operator.IsZero() {
		return nil, fmt.Errorf("%w: operator", ErrNilParam)
	}

	escrow := p.Escrow
	if escrow.IsZero() {
		kp, err := identity.NewKeyPair()
		if err != nil {
			return nil, fmt.Errorf("market: generate escrow account: %w", err)
		}
		escrow = kp.Address()
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Marketplace{
		registry:     p.Registry,
		payments:     p.Payments,
		store:        p.Store,
		operator:     p.Operator,
		escrow:       escrow,
		royaltySplit: p.RoyaltySplit,
		log:          logger,
	}, nil
}

// Operator returns the operator account.
func (m *Marketplace) Operator() identity.Address { return m.operator }

// Escrow returns the marketplace's own escrow account.
func (m *Marketplace) Escrow() identity.Address { return m.escrow }

// emit invokes subscribed handlers outside the marketplace lock.
func (m *Marketplace) emit(ev Event) {
	m.mu.Lock()
	handlers := make([]func(Event), len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Mint creates a new item owned by caller, recording caller as creator
// with the given royalty percentage and metadata reference. No payment
// is required. Fails with asset.ErrInvalidRoyalty when the royalty
// exceeds the maximum.
func (m *Marketplace) Mint(caller identity.Address, metadataURI string, royaltyPercent uint8) (uint64, error) {
	m.mu.Lock()
	itemID, err := m.registry.Mint(caller, metadataURI, royaltyPercent)
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}

	m.log.Info("item minted",
		zap.Uint64("itemId", itemID),
		zap.String("creator", caller.String()),
		zap.Uint8("royaltyPercent", royaltyPercent))

	m.emit(newEvent(ItemMinted, itemID, caller, 0))
	return itemID, nil
}

// List places an item for sale in escrow. The caller must be the
// item's current custodian and must pay exactly the listing fee; the
// fee is commission revenue and is not refunded on cancellation.
func (m *Marketplace) List(caller identity.Address, itemID, price, paid uint64) (Event, error) {
	ev, err := m.list(caller, itemID, price, paid)
	if err != nil {
		return Event{}, err
	}
	m.emit(ev)
	return ev, nil
}

func (m *Marketplace) list(caller identity.Address, itemID, price, paid uint64) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if price == 0 {
		return Event{}, ErrZeroPrice
	}

	fee, err := m.store.ListingFee()
	if err != nil {
		return Event{}, fmt.Errorf("market: read listing fee: %w", err)
	}
	if paid != fee {
		return Event{}, fmt.Errorf("%w: fee is %d, paid %d", ErrFeeMismatch, fee, paid)
	}

	owner, err := m.registry.OwnerOf(itemID)
	if err != nil || owner != caller {
		return Event{}, fmt.Errorf("%w: item %d", ErrNotItemOwner, itemID)
	}

	existing, err := m.store.Listing(itemID)
	if err != nil && !errors.Is(err, ErrListingNotFound) {
		return Event{}, fmt.Errorf("market: read listing: %w", err)
	}
	if existing != nil && existing.Active {
		return Event{}, fmt.Errorf("%w: item %d", ErrAlreadyListed, itemID)
	}

	commission, err := m.store.Commission()
	if err != nil {
		return Event{}, fmt.Errorf("market: read commission: %w", err)
	}

	// A zero fee (the operator may set one) means nothing to collect.
	if paid > 0 {
		if err := m.payments.Transfer(caller, m.escrow, paid); err != nil {
			return Event{}, fmt.Errorf("market: collect listing fee: %w", err)
		}
	}
	if err := m.registry.Transfer(caller, m.escrow, itemID); err != nil {
		m.refundFee(caller, paid)
		return Event{}, fmt.Errorf("market: move item into escrow: %w", err)
	}

	listing := &Listing{ItemID: itemID, Seller: caller, Price: price, Active: true}
	if err := m.store.PutListingWithCommission(listing, commission+paid); err != nil {
		_ = m.registry.Transfer(m.escrow, caller, itemID)
		m.refundFee(caller, paid)
		return Event{}, fmt.Errorf("market: persist listing: %w", err)
	}

	m.log.Info("listing created",
		zap.Uint64("itemId", itemID),
		zap.String("seller", caller.String()),
		zap.Uint64("price", price),
		zap.Uint64("fee", paid))

	return newEvent(ListingCreated, itemID, m.escrow, price), nil
}

// Cancel withdraws an active listing and returns the item to the
// seller. Only the seller may cancel; the listing fee stays collected.
func (m *Marketplace) Cancel(caller identity.Address, itemID uint64) (Event, error) {
	ev, err := m.cancel(caller, itemID)
	if err != nil {
		return Event{}, err
	}
	m.emit(ev)
	return ev, nil
}

func (m *Marketplace) cancel(caller identity.Address, itemID uint64) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.activeListing(itemID)
	if err != nil {
		return Event{}, err
	}
	if listing.Seller != caller {
		return Event{}, fmt.Errorf("%w: item %d", ErrNotSeller, itemID)
	}

	if err := m.registry.Transfer(m.escrow, listing.Seller, itemID); err != nil {
		return Event{}, fmt.Errorf("market: return item to seller: %w", err)
	}

	listing.Active = false
	if err := m.store.PutListing(listing); err != nil {
		_ = m.registry.Transfer(listing.Seller, m.escrow, itemID)
		return Event{}, fmt.Errorf("market: persist cancellation: %w", err)
	}

	m.log.Info("listing cancelled",
		zap.Uint64("itemId", itemID),
		zap.String("seller", listing.Seller.String()))

	return newEvent(ListingCancelled, itemID, listing.Seller, 0), nil
}

// Buy purchases a listed item at exactly its listed price. Both
// overpayment and underpayment are rejected. The seller receives the
// full price unless the royalty split is enabled and the seller is not
// the creator, in which case the creator receives their royalty share.
func (m *Marketplace) Buy(caller identity.Address, itemID, paid uint64) (Event, error) {
	ev, err := m.buy(caller, itemID, paid)
	if err != nil {
		return Event{}, err
	}
	m.emit(ev)
	return ev, nil
}

func (m *Marketplace) buy(caller identity.Address, itemID, paid uint64) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.activeListing(itemID)
	if err != nil {
		return Event{}, err
	}
	if paid != listing.Price {
		return Event{}, fmt.Errorf("%w: price is %d, paid %d", ErrPriceMismatch, listing.Price, paid)
	}

	payouts, royalty, err := m.proceeds(listing)
	if err != nil {
		return Event{}, err
	}

	if err := m.payments.TransferBatch(caller, payouts); err != nil {
		return Event{}, fmt.Errorf("market: pay sale proceeds: %w", err)
	}
	if err := m.registry.Transfer(m.escrow, caller, itemID); err != nil {
		m.refundPayouts(caller, payouts)
		return Event{}, fmt.Errorf("market: deliver item to buyer: %w", err)
	}

	listing.Active = false
	if err := m.store.PutListing(listing); err != nil {
		_ = m.registry.Transfer(caller, m.escrow, itemID)
		m.refundPayouts(caller, payouts)
		return Event{}, fmt.Errorf("market: persist sale: %w", err)
	}

	ev := newEvent(ItemPurchased, itemID, caller, listing.Price)
	sale := &Sale{
		ID:      ev.ID,
		ItemID:  itemID,
		Seller:  listing.Seller,
		Buyer:   caller,
		Price:   listing.Price,
		Royalty: royalty,
		Time:    ev.Time,
	}
	if err := m.store.PutSale(sale); err != nil {
		listing.Active = true
		_ = m.store.PutListing(listing)
		_ = m.registry.Transfer(caller, m.escrow, itemID)
		m.refundPayouts(caller, payouts)
		return Event{}, fmt.Errorf("market: record sale: %w", err)
	}

	m.log.Info("item purchased",
		zap.Uint64("itemId", itemID),
		zap.String("buyer", caller.String()),
		zap.String("seller", listing.Seller.String()),
		zap.Uint64("price", listing.Price),
		zap.Uint64("royalty", royalty))

	return ev, nil
}

// proceeds computes the payout legs for a sale under the configured
// royalty policy. It returns the legs and the creator's royalty share.
func (m *Marketplace) proceeds(listing *Listing) ([]payment.Payout, uint64, error) {
	if !m.royaltySplit {
		return []payment.Payout{{To: listing.Seller, Amount: listing.Price}}, 0, nil
	}

	item, err := m.registry.Item(listing.ItemID)
	if err != nil {
		return nil, 0, fmt.Errorf("market: read item metadata: %w", err)
	}

	payouts, err := payment.SplitProceeds(listing.Price, listing.Seller, item.Creator, item.RoyaltyPercent)
	if err != nil {
		return nil, 0, fmt.Errorf("market: split proceeds: %w", err)
	}

	var royalty uint64
	for _, p := range payouts {
		if p.To == item.Creator && p.To != listing.Seller {
			royalty = p.Amount
		}
	}
	return payouts, royalty, nil
}

// refundFee returns a collected listing fee during an unwind.
func (m *Marketplace) refundFee(to identity.Address, paid uint64) {
	if paid > 0 {
		_ = m.payments.Transfer(m.escrow, to, paid)
	}
}

// refundPayouts reverses the legs of a paid-out sale back to the buyer.
func (m *Marketplace) refundPayouts(buyer identity.Address, payouts []payment.Payout) {
	for _, p := range payouts {
		if p.Amount > 0 {
			_ = m.payments.Transfer(p.To, buyer, p.Amount)
		}
	}
}

// WithdrawCommission pays the entire accumulated commission balance to
// the operator and resets it to zero. Only the operator may withdraw.
func (m *Marketplace) WithdrawCommission(caller identity.Address) (uint64, error) {
	amount, err := m.withdrawCommission(caller)
	if err != nil {
		return 0, err
	}
	m.emit(newEvent(CommissionWithdrawn, 0, caller, amount))
	return amount, nil
}

func (m *Marketplace) withdrawCommission(caller identity.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.operator {
		return 0, ErrNotOperator
	}

	commission, err := m.store.Commission()
	if err != nil {
		return 0, fmt.Errorf("market: read commission: %w", err)
	}
	if commission == 0 {
		return 0, ErrNothingToWithdraw
	}

	if err := m.payments.Transfer(m.escrow, caller, commission); err != nil {
		return 0, fmt.Errorf("market: pay out commission: %w", err)
	}
	if err := m.store.SetCommission(0); err != nil {
		_ = m.payments.Transfer(caller, m.escrow, commission)
		return 0, fmt.Errorf("market: persist withdrawal: %w", err)
	}

	m.log.Info("commission withdrawn",
		zap.String("operator", caller.String()),
		zap.Uint64("amount", commission))

	return commission, nil
}

// SetListingFee replaces the listing fee. Only the operator may change
// it; the new fee applies to subsequent listings only.
func (m *Marketplace) SetListingFee(caller identity.Address, newFee uint64) error {
	if err := m.setListingFee(caller, newFee); err != nil {
		return err
	}
	m.emit(newEvent(FeeUpdated, 0, caller, newFee))
	return nil
}

func (m *Marketplace) setListingFee(caller identity.Address, newFee uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.operator {
		return ErrNotOperator
	}
	if err := m.store.SetListingFee(newFee); err != nil {
		return fmt.Errorf("market: persist listing fee: %w", err)
	}

	m.log.Info("listing fee updated", zap.Uint64("fee", newFee))
	return nil
}

// ListingFee returns the current listing fee.
func (m *Marketplace) ListingFee() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.ListingFee()
}

// Commission returns the accumulated unwithdrawn commission balance.
func (m *Marketplace) Commission() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Commission()
}

// GetListing returns the listing record for an item, active or not.
// Fails with ErrListingNotFound if the item has never been listed.
func (m *Marketplace) GetListing(itemID uint64) (*Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Listing(itemID)
}

// ActiveListings returns all currently active listings.
func (m *Marketplace) ActiveListings() ([]*Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Listings()
	if err != nil {
		return nil, err
	}
	active := make([]*Listing, 0, len(all))
	for _, l := range all {
		if l.Active {
			active = append(active, l)
		}
	}
	return active, nil
}

// Sales returns the recorded purchase receipts in purchase order.
func (m *Marketplace) Sales() ([]*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Sales()
}

// OwnerOf returns the item's current custodian per the asset registry.
func (m *Marketplace) OwnerOf(itemID uint64) (identity.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.OwnerOf(itemID)
}

// activeListing loads the listing for an item and fails with
// ErrNotListed when no active listing exists. Callers hold the lock.
func (m *Marketplace) activeListing(itemID uint64) (*Listing, error) {
	listing, err := m.store.Listing(itemID)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			return nil, fmt.Errorf("%w: item %d", ErrNotListed, itemID)
		}
		return nil, fmt.Errorf("market: read listing: %w", err)
	}
	if !listing.Active {
		return nil, fmt.Errorf("%w: item %d", ErrNotListed, itemID)
	}
	return listing, nil
}
