// Package asset implements the Asset Registry: the authoritative record
// of which account holds each uniquely-owned item, together with the
// item's immutable mint-time metadata (creator, royalty, metadata URI).
//
// The registry is deliberately small. Escrow, pricing and payment rules
// live in the market package; the registry only moves custody between
// two parties and answers lookups, atomically.
package asset

import (
	"fmt"
	"sync"

	"github.com/blockhole/libmarket-go/identity"
)

// MaxRoyaltyPercent is the highest royalty a creator may set at mint time.
const MaxRoyaltyPercent = 10

// Item is a uniquely-owned digital asset. All fields are immutable
// after mint; custody is tracked separately by the registry.
type Item struct {
	ID             uint64
	Creator        identity.Address
	RoyaltyPercent uint8
	MetadataURI    string
}

// Registry maps item identifiers to custodians and mint metadata.
type Registry struct {
	mu         sync.Mutex
	items      map[uint64]Item
	custodians map[uint64]identity.Address
	nextID     uint64
}

// NewRegistry creates an empty registry. Item identifiers are assigned
// sequentially starting at 1.
func NewRegistry() *Registry {
	return &Registry{
		items:      make(map[uint64]Item),
		custodians: make(map[uint64]identity.Address),
		nextID:     1,
	}
}

// Mint creates a new item owned by creator and returns its identifier.
// The royalty percentage is validated here, at the only point where it
// can be set.
func (r *Registry) Mint(creator identity.Address, metadataURI string, royaltyPercent uint8) (uint64, error) {
	if royaltyPercent > MaxRoyaltyPercent {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRoyalty, royaltyPercent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	r.items[id] = Item{
		ID:             id,
		Creator:        creator,
		RoyaltyPercent: royaltyPercent,
		MetadataURI:    metadataURI,
	}
	r.custodians[id] = creator
	return id, nil
}

// OwnerOf returns the current custodian of an item.
func (r *Registry) OwnerOf(itemID uint64) (identity.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.custodians[itemID]
	if !ok {
		return identity.Address{}, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	return owner, nil
}

// Transfer moves custody of an item from one party to another. It fails
// with ErrNotCustodian unless from is the current custodian.
func (r *Registry) Transfer(from, to identity.Address, itemID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.custodians[itemID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	if owner != from {
		return fmt.Errorf("%w: item %d held by %s", ErrNotCustodian, itemID, owner)
	}

	r.custodians[itemID] = to
	return nil
}

// Item returns the mint-time metadata of an item.
func (r *Registry) Item(itemID uint64) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	return item, nil
}
