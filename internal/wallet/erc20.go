package wallet

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Subset of the ERC-20 ABI. The tip flow only exercises transfer and
// balanceOf; allowance/approve/decimals are declared for completeness.
const erc20AbiJson = `[
  {"name":"transfer","type":"function","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"type":"bool"}]},
  {"name":"balanceOf","type":"function","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"type":"uint256"}]},
  {"name":"allowance","type":"function","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
   "outputs":[{"type":"uint256"}]},
  {"name":"approve","type":"function","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"type":"bool"}]},
  {"name":"decimals","type":"function","stateMutability":"view",
   "inputs":[],"outputs":[{"type":"uint8"}]}
]`

var erc20Abi = mustParseErc20Abi()

func mustParseErc20Abi() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20AbiJson))
	if err != nil {
		panic("invalid erc20 abi: " + err.Error())
	}
	return parsed
}

// PackTransfer encodes transfer(to, amount) calldata.
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return erc20Abi.Pack("transfer", to, amount)
}

// PackBalanceOf encodes balanceOf(owner) calldata.
func PackBalanceOf(owner common.Address) ([]byte, error) {
	return erc20Abi.Pack("balanceOf", owner)
}

// UnpackBalance decodes the balanceOf return value.
func UnpackBalance(output []byte) (*big.Int, error) {
	values, err := erc20Abi.Unpack("balanceOf", output)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}
