package faucet

import (
	"context"

	"github.com/layer-3/faucet/adapters/view"
	"github.com/layer-3/faucet/core"
)

// Client represents the public interface of the faucet client
type Client interface {
	// Start loads the chain connection, restores the saved session and starts the countdown
	Start(ctx context.Context) error

	// Connect validates a private key, saves it and starts refreshing balances
	Connect(ctx context.Context, key string) (*core.Session, error)

	// Logout forgets the saved key, keeping recorded claim times
	Logout(ctx context.Context) error

	// Claim requests tokens for the connected address
	Claim(ctx context.Context) (*core.ClaimReceipt, error)

	// Address returns the connected address, or "" when disconnected
	Address() string

	// ClaimState returns the cooldown state of the connected address
	ClaimState(ctx context.Context) core.ClaimState

	// AcceptConsent records that the storage notice was accepted
	AcceptConsent(ctx context.Context) error

	// HasConsent reports whether the storage notice was accepted
	HasConsent(ctx context.Context) (bool, error)

	// Receipt looks up a transaction on the loaded chain
	Receipt(ctx context.Context, txHash string) (*core.TxReceipt, error)

	// Snapshot returns the rendered dashboard state
	Snapshot() view.Snapshot

	// Close stops the timers and releases the store and connections
	Close() error
}
