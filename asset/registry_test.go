package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockhole/libmarket-go/identity"
)

func makeAddr(seed byte) identity.Address {
	var addr identity.Address
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

func TestMint(t *testing.T) {
	r := NewRegistry()
	creator := makeAddr(0x01)

	id, err := r.Mint(creator, "ipfs://item-metadata", 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	owner, err := r.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, creator, owner)

	item, err := r.Item(id)
	require.NoError(t, err)
	assert.Equal(t, creator, item.Creator)
	assert.Equal(t, uint8(7), item.RoyaltyPercent)
	assert.Equal(t, "ipfs://item-metadata", item.MetadataURI)
}

func TestMint_SequentialIDs(t *testing.T) {
	r := NewRegistry()
	creator := makeAddr(0x01)

	for want := uint64(1); want <= 3; want++ {
		id, err := r.Mint(creator, "ipfs://item", 0)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestMint_RoyaltyValidation(t *testing.T) {
	r := NewRegistry()
	creator := makeAddr(0x01)

	tests := []struct {
		name    string
		royalty uint8
		wantErr error
	}{
		{"zero", 0, nil},
		{"seven", 7, nil},
		{"max", MaxRoyaltyPercent, nil},
		{"eleven", 11, ErrInvalidRoyalty},
		{"fifteen", 15, ErrInvalidRoyalty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Mint(creator, "ipfs://item", tt.royalty)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOwnerOf_Unknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.OwnerOf(42)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestTransfer(t *testing.T) {
	r := NewRegistry()
	alice, bob := makeAddr(0x01), makeAddr(0x02)

	id, err := r.Mint(alice, "ipfs://item", 0)
	require.NoError(t, err)

	require.NoError(t, r.Transfer(alice, bob, id))

	owner, err := r.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestTransfer_NotCustodian(t *testing.T) {
	r := NewRegistry()
	alice, bob, carol := makeAddr(0x01), makeAddr(0x02), makeAddr(0x03)

	id, err := r.Mint(alice, "ipfs://item", 0)
	require.NoError(t, err)

	err = r.Transfer(bob, carol, id)
	assert.ErrorIs(t, err, ErrNotCustodian)

	// Custody unchanged.
	owner, err := r.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestTransfer_Unknown(t *testing.T) {
	r := NewRegistry()
	err := r.Transfer(makeAddr(0x01), makeAddr(0x02), 99)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItem_Unknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Item(7)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItem_ImmutableCopy(t *testing.T) {
	r := NewRegistry()
	creator := makeAddr(0x01)

	id, err := r.Mint(creator, "ipfs://item", 5)
	require.NoError(t, err)

	item, err := r.Item(id)
	require.NoError(t, err)
	item.RoyaltyPercent = 99
	item.MetadataURI = "tampered"

	again, err := r.Item(id)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), again.RoyaltyPercent)
	assert.Equal(t, "ipfs://item", again.MetadataURI)
}
