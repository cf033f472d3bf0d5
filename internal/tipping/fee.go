package tipping

import "math/big"

// CreatorShare computes the creator's net amount in token smallest units:
// units x (100 - feePercent) / 100, floored. Integer arithmetic only; the
// fee split must never round through floating point.
func CreatorShare(units *big.Int, feePercent int64) *big.Int {
	creatorPercent := big.NewInt(100 - feePercent)
	share := new(big.Int).Mul(units, creatorPercent)
	return share.Div(share, big.NewInt(100))
}
