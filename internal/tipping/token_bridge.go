package tipping

import (
	"context"
	"math/big"

	"github.com/cryptobio/cryptobio-backend/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// usdcContractBridge wraps the token contract surface the tip flow
// touches: a balance read and a single transfer submission through the
// visitor's wallet.
type usdcContractBridge struct {
	provider wallet.Provider
	token    common.Address
}

func (b *usdcContractBridge) balance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return b.provider.TokenBalance(ctx, b.token, owner)
}

func (b *usdcContractBridge) transfer(ctx context.Context, from, to common.Address, amount *big.Int) (common.Hash, error) {
	data, err := wallet.PackTransfer(to, amount)
	if err != nil {
		return common.Hash{}, err
	}
	return b.provider.SendTransaction(ctx, from, b.token, data)
}

func (b *usdcContractBridge) waitForReceipt(ctx context.Context, hash common.Hash) (*wallet.Receipt, error) {
	return b.provider.WaitForReceipt(ctx, hash)
}
