package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitProceeds(t *testing.T) {
	seller := makeAddr(0x01)
	creator := makeAddr(0x02)

	tests := []struct {
		name    string
		price   uint64
		royalty uint8
		want    []Payout
	}{
		{
			name:    "seller and creator differ",
			price:   1000,
			royalty: 7,
			want: []Payout{
				{To: creator, Amount: 70},
				{To: seller, Amount: 930},
			},
		},
		{
			name:    "zero royalty",
			price:   1000,
			royalty: 0,
			want:    []Payout{{To: seller, Amount: 1000}},
		},
		{
			name:    "royalty rounds down, remainder to seller",
			price:   333,
			royalty: 7,
			want: []Payout{
				{To: creator, Amount: 23}, // 333*7/100 = 23.31
				{To: seller, Amount: 310},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitProceeds(tt.price, seller, creator, tt.royalty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var sum uint64
			for _, p := range got {
				sum += p.Amount
			}
			assert.Equal(t, tt.price, sum, "payouts must sum to price")
		})
	}
}

func TestSplitProceeds_SellerIsCreator(t *testing.T) {
	seller := makeAddr(0x01)

	got, err := SplitProceeds(1000, seller, seller, 10)
	require.NoError(t, err)
	assert.Equal(t, []Payout{{To: seller, Amount: 1000}}, got)
}

func TestSplitProceeds_ZeroPrice(t *testing.T) {
	_, err := SplitProceeds(0, makeAddr(0x01), makeAddr(0x02), 5)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestSplitProceeds_RoyaltyOverHundred(t *testing.T) {
	_, err := SplitProceeds(1000, makeAddr(0x01), makeAddr(0x02), 101)
	assert.ErrorIs(t, err, ErrInvalidRoyalty)
}
