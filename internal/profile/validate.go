package profile

import (
	"regexp"
	"strings"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/model"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// NormalizeUsername applies the wizard's keystroke filter: lowercase,
// strip anything outside [a-z0-9_], cap at the maximum length. The result
// may still be too short to be a valid username.
func NormalizeUsername(input string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(input) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
		if b.Len() == UsernameMaxLen {
			break
		}
	}
	return b.String()
}

func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// FilterTipAmounts drops zero and negative entries. All-zero input yields
// an empty list, never nil, so the jsonb column stores [].
func FilterTipAmounts(amounts []int64) model.TipAmounts {
	filtered := model.TipAmounts{}
	for _, a := range amounts {
		if a > 0 {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
