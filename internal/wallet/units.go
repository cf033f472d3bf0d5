package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var unitFactor = big.NewInt(1_000_000) // 10^UsdcDecimals

var ErrBadAmount = errors.New("amount must be a positive number")

// Units converts whole USD dollars to USDC smallest units.
func Units(dollars int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(dollars), unitFactor)
}

// ParseAmount converts a USD-denominated decimal string ("10", "2.50")
// to smallest units using integer arithmetic only. Fractional digits past
// the token's 6 decimals are truncated. Zero and negative amounts are
// rejected; the send path must never see them.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, ErrBadAmount
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > UsdcDecimals {
		frac = frac[:UsdcDecimals]
	}
	frac += strings.Repeat("0", UsdcDecimals-len(frac))

	units, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok || units.Sign() <= 0 {
		return nil, ErrBadAmount
	}
	return units, nil
}

// FormatAmount renders smallest units as a human dollar string with two
// decimal places, e.g. 9900000 -> "9.90".
func FormatAmount(units *big.Int) string {
	cents := new(big.Int).Div(units, big.NewInt(10_000))
	whole, rem := new(big.Int).DivMod(cents, big.NewInt(100), new(big.Int))
	return fmt.Sprintf("%s.%02d", whole.String(), rem.Int64())
}
