package market

// Store persists the marketplace state: the listing record per item,
// the two configuration scalars (listing fee, commission balance) and
// the sale history. Implementations must make each method atomic and
// durable; PutListingWithCommission in particular must write the
// listing and the new commission balance in a single transaction, so a
// crash can never separate a collected fee from its listing.
type Store interface {
	// Listing returns the listing record for an item, or
	// ErrListingNotFound if the item has never been listed.
	Listing(itemID uint64) (*Listing, error)

	// PutListing creates or replaces the listing record for an item.
	PutListing(l *Listing) error

	// PutListingWithCommission writes a listing record and the new
	// commission balance in one transaction.
	PutListingWithCommission(l *Listing, commission uint64) error

	// Listings returns all listing records, active and inactive.
	Listings() ([]*Listing, error)

	// ListingFee returns the current listing fee.
	ListingFee() (uint64, error)

	// SetListingFee replaces the listing fee.
	SetListingFee(fee uint64) error

	// Commission returns the accumulated unwithdrawn commission.
	Commission() (uint64, error)

	// SetCommission replaces the commission balance.
	SetCommission(amount uint64) error

	// PutSale appends a purchase receipt to the sale history.
	PutSale(s *Sale) error

	// Sales returns all recorded purchase receipts.
	Sales() ([]*Sale, error)

	// Close releases the underlying storage.
	Close() error
}
