package ports

import (
	"context"

	"github.com/layer-3/faucet/core"
)

// FaucetAPI is the remote faucet backend.
// Non-2xx responses are returned as *core.ServerError, transport failures wrap core.ErrNetworkFailure.
type FaucetAPI interface {
	Balance(ctx context.Context, address string) (core.Balances, error)
	Claim(ctx context.Context, address string) (core.ClaimReceipt, error)
}

// Chain reads transaction state from the loaded chain RPC
type Chain interface {
	ChainID() uint64
	Receipt(ctx context.Context, txHash string) (*core.TxReceipt, error)
}
