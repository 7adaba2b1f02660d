package market

import "errors"

var (
	// ErrZeroPrice indicates a listing attempt with a price of zero.
	ErrZeroPrice = errors.New("market: price cannot be zero")

	// ErrFeeMismatch indicates the amount paid does not equal the listing fee.
	ErrFeeMismatch = errors.New("market: paid amount must equal the listing fee")

	// ErrNotItemOwner indicates the caller is not the item's current custodian.
	ErrNotItemOwner = errors.New("market: only the item owner can list it")

	// ErrAlreadyListed indicates the item already has an active listing.
	ErrAlreadyListed = errors.New("market: item is already listed")

	// ErrNotListed indicates no active listing exists for the item.
	ErrNotListed = errors.New("market: item is not listed")

	// ErrNotSeller indicates the caller is not the listing's seller.
	ErrNotSeller = errors.New("market: only the seller can cancel the listing")

	// ErrPriceMismatch indicates the amount paid does not equal the listed price.
	ErrPriceMismatch = errors.New("market: paid amount must equal the listed price")

	// ErrNotOperator indicates the caller is not the marketplace operator.
	ErrNotOperator = errors.New("market: only the operator can perform this action")

	// ErrNothingToWithdraw indicates the commission balance is zero.
	ErrNothingToWithdraw = errors.New("market: no commission to withdraw")

	// ErrListingNotFound indicates no listing record exists for the item.
	ErrListingNotFound = errors.New("market: listing not found")

	// ErrNilParam indicates a required constructor parameter was nil or zero.
	ErrNilParam = errors.New("market: parameter must not be nil")
)
