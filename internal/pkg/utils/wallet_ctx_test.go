package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHexAddress(t *testing.T) {
	valid := []string{
		"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		"0x0000000000000000000000000000000000000000",
		"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
	}
	for _, addr := range valid {
		assert.True(t, IsHexAddress(addr), addr)
	}

	invalid := []string{
		"",
		"0x123",
		"833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA0291",
		"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913ff",
		"0xzz3589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	}
	for _, addr := range invalid {
		assert.False(t, IsHexAddress(addr), addr)
	}
}
