package asset

import "errors"

var (
	// ErrInvalidRoyalty indicates a royalty percentage above MaxRoyaltyPercent.
	ErrInvalidRoyalty = errors.New("asset: royalty must not exceed 10 percent")

	// ErrItemNotFound indicates the item identifier is unknown.
	ErrItemNotFound = errors.New("asset: item not found")

	// ErrNotCustodian indicates the transferring party does not hold the item.
	ErrNotCustodian = errors.New("asset: sender is not the item custodian")
)
