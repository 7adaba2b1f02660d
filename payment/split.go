package payment

import "github.com/blockhole/libmarket-go/identity"

// Payout represents a single leg of a payment distribution.
type Payout struct {
	To     identity.Address
	Amount uint64
}

// SplitProceeds divides a sale price between the seller and the item's
// creator according to the creator's royalty percentage. The seller
// receives the remainder, so the payouts always sum to exactly price.
// When the seller is the creator, or the royalty is zero, the seller
// receives the full price in a single payout.
func SplitProceeds(price uint64, seller, creator identity.Address, royaltyPercent uint8) ([]Payout, error) {
	if price == 0 {
		return nil, ErrZeroAmount
	}
	if royaltyPercent > 100 {
		return nil, ErrInvalidRoyalty
	}

	if seller == creator || royaltyPercent == 0 {
		return []Payout{{To: seller, Amount: price}}, nil
	}

	royalty := price * uint64(royaltyPercent) / 100
	return []Payout{
		{To: creator, Amount: royalty},
		{To: seller, Amount: price - royalty},
	}, nil
}
