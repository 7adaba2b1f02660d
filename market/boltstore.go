package market

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketListings = []byte("listings")
	bucketState    = []byte("state")
	bucketSales    = []byte("sales")

	keyListingFee = []byte("listing_fee")
	keyCommission = []byte("commission")
)

// BoltStore persists marketplace state in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("market: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("market: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketListings, bucketState, bucketSales} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("market: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// itemKey encodes an item identifier as an 8-byte big-endian key for
// sorted storage.
func itemKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// putUint64 writes a scalar into the state bucket.
func putUint64(tx *bbolt.Tx, key []byte, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return tx.Bucket(bucketState).Put(key, b)
}

// getUint64 reads a scalar from the state bucket; absent keys are zero.
func getUint64(tx *bbolt.Tx, key []byte) uint64 {
	data := tx.Bucket(bucketState).Get(key)
	if data == nil {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// SeedListingFee writes the initial listing fee unless one was already
// persisted, so reopening a database never clobbers an operator's fee
// change.
func (s *BoltStore) SeedListingFee(fee uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketState).Get(keyListingFee) != nil {
			return nil
		}
		if err := putUint64(tx, keyListingFee, fee); err != nil {
			return fmt.Errorf("boltstore: seed listing fee: %w", err)
		}
		return nil
	})
}

// Listing retrieves the listing record for an item.
func (s *BoltStore) Listing(itemID uint64) (*Listing, error) {
	var l Listing
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketListings).Get(itemKey(itemID))
		if data == nil {
			return fmt.Errorf("%w: item %d", ErrListingNotFound, itemID)
		}
		if err := decodeGob(data, &l); err != nil {
			return fmt.Errorf("boltstore: decode listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// PutListing creates or replaces the listing record for an item.
func (s *BoltStore) PutListing(l *Listing) error {
	if l == nil {
		return fmt.Errorf("%w: listing", ErrNilParam)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putListing(tx, l)
	})
}

// PutListingWithCommission writes a listing record and the new
// commission balance in one transaction.
func (s *BoltStore) PutListingWithCommission(l *Listing, commission uint64) error {
	if l == nil {
		return fmt.Errorf("%w: listing", ErrNilParam)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putListing(tx, l); err != nil {
			return err
		}
		if err := putUint64(tx, keyCommission, commission); err != nil {
			return fmt.Errorf("boltstore: put commission: %w", err)
		}
		return nil
	})
}

func putListing(tx *bbolt.Tx, l *Listing) error {
	data, err := encodeGob(l)
	if err != nil {
		return fmt.Errorf("boltstore: encode listing: %w", err)
	}
	if err := tx.Bucket(bucketListings).Put(itemKey(l.ItemID), data); err != nil {
		return fmt.Errorf("boltstore: put listing: %w", err)
	}
	return nil
}

// Listings returns all listing records in item order.
func (s *BoltStore) Listings() ([]*Listing, error) {
	var listings []*Listing
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketListings).ForEach(func(k, v []byte) error {
			var l Listing
			if err := decodeGob(v, &l); err != nil {
				return fmt.Errorf("boltstore: decode listing in list: %w", err)
			}
			listings = append(listings, &l)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list listings: %w", err)
	}
	return listings, nil
}

// ListingFee returns the current listing fee.
func (s *BoltStore) ListingFee() (uint64, error) {
	var fee uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		fee = getUint64(tx, keyListingFee)
		return nil
	})
	return fee, err
}

// SetListingFee replaces the listing fee.
func (s *BoltStore) SetListingFee(fee uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putUint64(tx, keyListingFee, fee); err != nil {
			return fmt.Errorf("boltstore: put listing fee: %w", err)
		}
		return nil
	})
}

// Commission returns the accumulated unwithdrawn commission.
func (s *BoltStore) Commission() (uint64, error) {
	var c uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		c = getUint64(tx, keyCommission)
		return nil
	})
	return c, err
}

// SetCommission replaces the commission balance.
func (s *BoltStore) SetCommission(amount uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putUint64(tx, keyCommission, amount); err != nil {
			return fmt.Errorf("boltstore: put commission: %w", err)
		}
		return nil
	})
}

// PutSale appends a purchase receipt to the sale history. Receipts are
// keyed by a sequence number so Sales returns them in purchase order.
func (s *BoltStore) PutSale(sale *Sale) error {
	if sale == nil {
		return fmt.Errorf("%w: sale", ErrNilParam)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSales)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: sale sequence: %w", err)
		}
		data, err := encodeGob(sale)
		if err != nil {
			return fmt.Errorf("boltstore: encode sale: %w", err)
		}
		if err := b.Put(itemKey(seq), data); err != nil {
			return fmt.Errorf("boltstore: put sale: %w", err)
		}
		return nil
	})
}

// Sales returns all recorded purchase receipts in purchase order.
func (s *BoltStore) Sales() ([]*Sale, error) {
	var sales []*Sale
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSales).ForEach(func(k, v []byte) error {
			var sale Sale
			if err := decodeGob(v, &sale); err != nil {
				return fmt.Errorf("boltstore: decode sale: %w", err)
			}
			sales = append(sales, &sale)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list sales: %w", err)
	}
	return sales, nil
}
