package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackTransfer(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := PackTransfer(to, big.NewInt(9_900_000))
	require.NoError(t, err)

	// 4-byte selector + two 32-byte words
	require.Len(t, data, 68)
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, data[:4])
	assert.Equal(t, to.Bytes(), data[16:36])
	assert.Equal(t, big.NewInt(9_900_000), new(big.Int).SetBytes(data[36:]))
}

func TestPackBalanceOf(t *testing.T) {
	owner := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := PackBalanceOf(owner)
	require.NoError(t, err)

	require.Len(t, data, 36)
	assert.Equal(t, []byte{0x70, 0xa0, 0x82, 0x31}, data[:4])
	assert.Equal(t, owner.Bytes(), data[16:])
}

func TestUnpackBalance(t *testing.T) {
	output := make([]byte, 32)
	big.NewInt(3_000_000).FillBytes(output)

	balance, err := UnpackBalance(output)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3_000_000), balance)
}
