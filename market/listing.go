package market

import (
	"time"

	"github.com/blockhole/libmarket-go/identity"
)

// Listing is an offer to sell one item at a fixed price. While a
// listing is active the item is held in escrow by the marketplace's
// own account. A record with Active false means the item was sold or
// the listing was cancelled; the item is then free to be listed again.
type Listing struct {
	ItemID uint64
	Seller identity.Address
	Price  uint64
	Active bool
}

// Sale is the persisted receipt of a completed purchase.
type Sale struct {
	ID      string
	ItemID  uint64
	Seller  identity.Address
	Buyer   identity.Address
	Price   uint64
	Royalty uint64 // portion of Price paid to the creator, zero unless split applied
	Time    time.Time
}
