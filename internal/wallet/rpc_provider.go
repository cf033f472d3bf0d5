package wallet

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"
)

// RpcProvider implements Provider over two JSON-RPC endpoints: a node for
// reads and receipt lookups, and the wallet-side transport for anything
// that needs the user's key or consent (sends, network switches).
type RpcProvider struct {
	node   *ethclient.Client
	wallet *rpc.Client
}

func Dial(ctx context.Context, nodeUrl, walletUrl string) (*RpcProvider, error) {
	node, err := ethclient.DialContext(ctx, nodeUrl)
	if err != nil {
		return nil, err
	}

	wallet, err := rpc.DialContext(ctx, walletUrl)
	if err != nil {
		node.Close()
		return nil, err
	}

	return &RpcProvider{node: node, wallet: wallet}, nil
}

func (p *RpcProvider) ChainID(ctx context.Context) (uint64, error) {
	var chainId hexutil.Big
	if err := p.wallet.CallContext(ctx, &chainId, "eth_chainId"); err != nil {
		return 0, err
	}
	return (*big.Int)(&chainId).Uint64(), nil
}

func (p *RpcProvider) SwitchChain(ctx context.Context, chainId uint64) error {
	params := map[string]string{"chainId": hexutil.EncodeUint64(chainId)}
	return p.wallet.CallContext(ctx, nil, "wallet_switchEthereumChain", params)
}

func (p *RpcProvider) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	data, err := PackBalanceOf(owner)
	if err != nil {
		return nil, err
	}

	output, err := p.node.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return UnpackBalance(output)
}

func (p *RpcProvider) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	tx := map[string]string{
		"from": from.Hex(),
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}

	var hash common.Hash
	if err := p.wallet.CallContext(ctx, &hash, "eth_sendTransaction", tx); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// WaitForReceipt polls the node until the transaction is mined. The poll
// interval backs off; cancellation comes only from ctx since a submitted
// transaction cannot be aborted anyway.
func (p *RpcProvider) WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		receipt, err := p.node.TransactionReceipt(ctx, hash)
		if err == nil {
			return &Receipt{
				TxHash:      hash,
				Status:      receipt.Status,
				BlockNumber: receipt.BlockNumber,
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			log.Warn().Err(err).Str("tx", hash.Hex()).Msg("Receipt lookup failed")
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

func (p *RpcProvider) Close() {
	p.node.Close()
	p.wallet.Close()
}
