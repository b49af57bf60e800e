package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
	"github.com/shopspring/decimal"
)

// FormatBalance renders amount with four decimals followed by symbol
func FormatBalance(amount decimal.Decimal, symbol string) string {
	return amount.StringFixed(4) + " " + symbol
}

// WalletSession connects a private key, keeps its balances on display and
// tears the session down on logout
type WalletSession struct {
	deriver      ports.KeyDeriver
	api          ports.FaucetAPI
	sessions     *SessionStore
	view         ports.View
	eventPub     ports.EventPublisher
	logger       watermill.LoggerAdapter
	refresh      *Interval
	refreshEvery time.Duration

	// mu serializes session changes with view writes from balance responses
	mu         sync.Mutex
	session    *core.Session
	generation uint64
}

// NewWalletSession creates a disconnected wallet session
func NewWalletSession(
	deriver ports.KeyDeriver,
	api ports.FaucetAPI,
	sessions *SessionStore,
	view ports.View,
	eventPub ports.EventPublisher,
	logger watermill.LoggerAdapter,
	refresh *Interval,
	refreshEvery time.Duration,
) *WalletSession {
	return &WalletSession{
		deriver:      deriver,
		api:          api,
		sessions:     sessions,
		view:         view,
		eventPub:     eventPub,
		logger:       logger,
		refresh:      refresh,
		refreshEvery: refreshEvery,
	}
}

// Connect validates key, persists it and starts the balance refresh.
// An invalid key leaves the store and the current session untouched.
func (w *WalletSession) Connect(ctx context.Context, key string) (*core.Session, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		w.view.Alert(MsgEnterKey)
		return nil, fmt.Errorf("empty key: %w", core.ErrInvalidKeyFormat)
	}

	address, err := w.deriver.Derive(key)
	if err != nil {
		w.view.Alert(MsgInvalidKey)
		return nil, err
	}

	if err := w.sessions.SaveKey(ctx, key); err != nil {
		return nil, err
	}

	session := &core.Session{PrivateKey: key, Address: address}

	w.mu.Lock()
	w.session = session
	w.generation++
	gen := w.generation
	w.view.ShowDashboard(address)
	w.view.ShowBalances(MsgLoading, MsgLoading)
	w.mu.Unlock()

	w.logger.Info("Wallet connected", watermill.LogFields{"address": address})

	w.refresh.Start(w.refreshEvery, func(ctx context.Context) {
		w.fetchBalances(ctx, gen, address)
	})

	return &core.Session{PrivateKey: key, Address: address}, nil
}

// RefreshBalances fetches balances of the current session once
func (w *WalletSession) RefreshBalances(ctx context.Context) {
	w.mu.Lock()
	gen := w.generation
	session := w.session
	w.mu.Unlock()

	if session == nil {
		return
	}
	w.fetchBalances(ctx, gen, session.Address)
}

// Logout stops the refresh, forgets the key and shows the login view.
// Recorded claim times are kept so the cooldown survives a logout.
func (w *WalletSession) Logout(ctx context.Context) error {
	w.refresh.Stop()

	w.mu.Lock()
	var address string
	if w.session != nil {
		address = w.session.Address
	}
	w.session = nil
	w.generation++
	w.view.ShowLogin()
	w.mu.Unlock()

	if err := w.sessions.ClearKey(ctx); err != nil {
		return err
	}

	if address != "" {
		w.logger.Info("Wallet disconnected", watermill.LogFields{"address": address})
		if err := w.eventPub.PublishLogout(ctx, address); err != nil {
			// The key is already cleared, which is the critical part
			w.logger.Error("Failed to publish logout event", err, watermill.LogFields{"address": address})
		}
	}
	return nil
}

// Restore connects the saved key, if there is one
func (w *WalletSession) Restore(ctx context.Context) (*core.Session, bool, error) {
	key, found, err := w.sessions.LoadKey(ctx)
	if err != nil || !found {
		return nil, false, err
	}

	session, err := w.Connect(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// Address returns the address of the current session, or "" when disconnected
func (w *WalletSession) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == nil {
		return ""
	}
	return w.session.Address
}

func (w *WalletSession) fetchBalances(ctx context.Context, gen uint64, address string) {
	balances, err := w.api.Balance(ctx, address)

	w.mu.Lock()
	defer w.mu.Unlock()

	// The session changed while the request was in flight
	if gen != w.generation {
		return
	}

	if err != nil {
		w.logger.Error("Failed to fetch balances", err, watermill.LogFields{"address": address})
		w.view.ShowBalances(MsgBalanceError, MsgBalanceError)
		return
	}

	w.view.ShowBalances(FormatBalance(balances.BALBI, "BALBI"), FormatBalance(balances.USDC, "USDC"))
}
