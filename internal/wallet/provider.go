package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Base mainnet is the only network tips are accepted on.
const BaseChainId uint64 = 8453

// USDC contract on Base mainnet.
var UsdcAddress = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")

const UsdcDecimals = 6

// Receipt is the subset of a transaction receipt the tip flow observes.
type Receipt struct {
	TxHash      common.Hash `json:"txHash"`
	Status      uint64      `json:"status"`
	BlockNumber *big.Int    `json:"blockNumber"`
}

const ReceiptStatusSuccessful uint64 = 1

// Provider wraps the visitor's wallet connection and the chain RPC
// transport. The application only parameterizes it: connection lifecycle,
// signing and timeouts belong to the wallet side of the wire.
type Provider interface {
	// ChainID reports the wallet's currently active network.
	ChainID(ctx context.Context) (uint64, error)

	// SwitchChain asks the wallet to move to the given network. The user
	// can refuse; that surfaces as an error, never as a silent no-op.
	SwitchChain(ctx context.Context, chainId uint64) error

	// TokenBalance reads an ERC-20 balance in smallest units.
	TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)

	// SendTransaction submits a call to the token contract through the
	// wallet. Once submitted it cannot be aborted, only observed.
	SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error)

	// WaitForReceipt blocks until the transaction is mined or ctx ends.
	WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
}
