package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// Client is a connected chain RPC endpoint
type Client struct {
	rpc     *ethclient.Client
	url     string
	chainID uint64
}

var _ ports.Chain = (*Client)(nil)

// Dial connects to url and probes it for a chain id.
// An endpoint that accepts the connection but cannot answer is rejected.
func Dial(ctx context.Context, url string) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	id, err := rpc.ChainID(ctx)
	if err != nil {
		rpc.Close()
		return nil, fmt.Errorf("failed to query chain id from %s: %w", url, err)
	}

	return &Client{
		rpc:     rpc,
		url:     url,
		chainID: id.Uint64(),
	}, nil
}

// URL returns the endpoint the client is connected to
func (c *Client) URL() string {
	return c.url
}

// ChainID returns the chain id reported at dial time
func (c *Client) ChainID() uint64 {
	return c.chainID
}

// Receipt returns the mined receipt of txHash or core.ErrNotFound while pending
func (c *Client) Receipt(ctx context.Context, txHash string) (*core.TxReceipt, error) {
	if len(common.FromHex(txHash)) != common.HashLength {
		return nil, fmt.Errorf("malformed tx hash %q: %w", txHash, core.ErrNotFound)
	}

	receipt, err := c.rpc.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch receipt: %v: %w", err, core.ErrNetworkFailure)
	}

	return &core.TxReceipt{
		TxHash:      receipt.TxHash.Hex(),
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// Close releases the RPC connection
func (c *Client) Close() {
	c.rpc.Close()
}
