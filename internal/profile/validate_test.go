package profile

import (
	"strings"
	"testing"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"alex", "alex"},
		{"Alex", "alex"},
		{"Alex Rivera!", "alexrivera"},
		{"a_b-c.9", "a_bc9"},
		{"ALEX_99", "alex_99"},
		{"émile", "mile"},
		{strings.Repeat("ab", 20), strings.Repeat("ab", 10)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUsername(tt.input))
		})
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"alex", "a_b", "abc", strings.Repeat("a", 20), "user_99"}
	for _, u := range valid {
		assert.True(t, ValidUsername(u), u)
	}

	invalid := []string{"", "ab", "Alex", "alex!", strings.Repeat("a", 21), "a b"}
	for _, u := range invalid {
		assert.False(t, ValidUsername(u), u)
	}
}

func TestFilterTipAmounts(t *testing.T) {
	assert.Equal(t, model.TipAmounts{5, 10, 25}, FilterTipAmounts([]int64{5, 10, 25}))
	assert.Equal(t, model.TipAmounts{10}, FilterTipAmounts([]int64{0, 10, -3}))
	assert.Equal(t, model.TipAmounts{}, FilterTipAmounts([]int64{0, 0, 0}))
	assert.Equal(t, model.TipAmounts{}, FilterTipAmounts(nil))
}
