package market

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockhole/libmarket-go/identity"
)

// Type identifies the kind of marketplace event.
type Type string

const (
	ItemMinted          Type = "ItemMinted"
	ListingCreated      Type = "ListingCreated"
	ListingCancelled    Type = "ListingCancelled"
	ItemPurchased       Type = "ItemPurchased"
	CommissionWithdrawn Type = "CommissionWithdrawn"
	FeeUpdated          Type = "FeeUpdated"
)

// Event describes a successful marketplace operation. To is the party
// that received the item (or funds, for CommissionWithdrawn): the
// escrow account on ListingCreated, the seller on ListingCancelled,
// the buyer on ItemPurchased.
type Event struct {
	ID     string
	Type   Type
	ItemID uint64
	To     identity.Address
	Amount uint64
	Time   time.Time
}

// Subscribe registers a handler invoked after every successful
// operation. Handlers run synchronously, outside the marketplace lock,
// in registration order.
func (m *Marketplace) Subscribe(handler func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

// newEvent builds an event with a fresh identifier.
func newEvent(t Type, itemID uint64, to identity.Address, amount uint64) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   t,
		ItemID: itemID,
		To:     to,
		Amount: amount,
		Time:   time.Now().UTC(),
	}
}
