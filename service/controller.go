package service

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// Options tune the controller timing. Zero values fall back to the faucet defaults.
type Options struct {
	Cooldown       time.Duration
	BalanceRefresh time.Duration
	TimerTick      time.Duration
	Now            func() time.Time
	NewTicker      TickerFunc
}

func (o Options) withDefaults() Options {
	if o.Cooldown <= 0 {
		o.Cooldown = core.CooldownPeriod
	}
	if o.BalanceRefresh <= 0 {
		o.BalanceRefresh = core.BalanceRefreshInterval
	}
	if o.TimerTick <= 0 {
		o.TimerTick = core.TimerTick
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewTicker == nil {
		o.NewTicker = NewTimeTicker
	}
	return o
}

// Controller owns the wallet session, the claim timer and the claim action,
// together with the two intervals they run on
type Controller struct {
	sessions *SessionStore
	wallet   *WalletSession
	timer    *ClaimTimer
	claim    *ClaimAction
	logger   watermill.LoggerAdapter
}

// NewController wires a controller over the given ports
func NewController(
	store ports.Store,
	deriver ports.KeyDeriver,
	api ports.FaucetAPI,
	view ports.View,
	eventPub ports.EventPublisher,
	logger watermill.LoggerAdapter,
	opts Options,
) *Controller {
	opts = opts.withDefaults()
	sessions := NewSessionStore(store)

	wallet := NewWalletSession(deriver, api, sessions, view, eventPub, logger,
		NewInterval(opts.NewTicker), opts.BalanceRefresh)

	timer := NewClaimTimer(sessions, view, logger, NewInterval(opts.NewTicker),
		wallet.Address, opts.Now, opts.Cooldown, opts.TimerTick)

	claim := NewClaimAction(api, sessions, wallet, timer, view, eventPub, logger, opts.Now, opts.Cooldown)

	return &Controller{
		sessions: sessions,
		wallet:   wallet,
		timer:    timer,
		claim:    claim,
		logger:   logger,
	}
}

// Start restores a saved session and starts the countdown
func (c *Controller) Start(ctx context.Context) error {
	if _, found, err := c.wallet.Restore(ctx); err != nil {
		// A broken saved key must not keep the client from starting
		c.logger.Error("Failed to restore saved session", err, nil)
	} else if !found {
		c.logger.Debug("No saved session", nil)
	}

	c.timer.Start()
	return nil
}

// Connect connects key and restarts the countdown for its address
func (c *Controller) Connect(ctx context.Context, key string) (*core.Session, error) {
	session, err := c.wallet.Connect(ctx, key)
	if err != nil {
		return nil, err
	}
	c.timer.Start()
	return session, nil
}

// Claim claims for the connected address
func (c *Controller) Claim(ctx context.Context) (*core.ClaimReceipt, error) {
	return c.claim.Claim(ctx, c.wallet.Address())
}

// Logout disconnects the wallet. The countdown keeps running and shows ready.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.wallet.Logout(ctx); err != nil {
		return err
	}
	c.timer.Refresh(ctx)
	return nil
}

// Address returns the connected address, or "" when disconnected
func (c *Controller) Address() string {
	return c.wallet.Address()
}

// ClaimState returns the claim state of the connected address
func (c *Controller) ClaimState(ctx context.Context) core.ClaimState {
	return c.timer.State(ctx)
}

// AcceptConsent records that the storage notice was accepted
func (c *Controller) AcceptConsent(ctx context.Context) error {
	return c.sessions.AcceptConsent(ctx)
}

// HasConsent reports whether the storage notice was accepted
func (c *Controller) HasConsent(ctx context.Context) (bool, error) {
	return c.sessions.HasConsent(ctx)
}

// Close stops both intervals
func (c *Controller) Close() {
	c.wallet.refresh.Stop()
	c.timer.Stop()
}
