package tipping

import (
	"math/big"
	"testing"

	"github.com/cryptobio/cryptobio-backend/internal/wallet"
	"github.com/stretchr/testify/assert"
)

func TestCreatorShare(t *testing.T) {
	tests := []struct {
		name       string
		dollars    int64
		feePercent int64
		want       int64
	}{
		{"ten dollars one percent", 10, 1, 9_900_000},
		{"five dollars one percent", 5, 1, 4_950_000},
		{"one dollar one percent", 1, 1, 990_000},
		{"zero fee passes through", 25, 0, 25_000_000},
		{"odd split floors", 1, 3, 970_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreatorShare(wallet.Units(tt.dollars), tt.feePercent)
			assert.Equal(t, big.NewInt(tt.want), got)
		})
	}
}

func TestCreatorShareFloorsFractionalUnits(t *testing.T) {
	// 33 smallest units at 1% fee: 33*99/100 = 32.67 floors to 32.
	got := CreatorShare(big.NewInt(33), 1)
	assert.Equal(t, big.NewInt(32), got)
}
