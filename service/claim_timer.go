package service

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// ClaimTimer derives the claim state from the last recorded claim and keeps
// the claim control in sync with it
type ClaimTimer struct {
	sessions *SessionStore
	view     ports.View
	logger   watermill.LoggerAdapter
	interval *Interval
	address  func() string
	now      func() time.Time
	cooldown time.Duration
	tick     time.Duration

	mu    sync.Mutex
	busy  bool
	hints map[string]time.Time // server-reported cooldown ends, never persisted
}

// NewClaimTimer creates a timer reading the address of the current session from address
func NewClaimTimer(
	sessions *SessionStore,
	view ports.View,
	logger watermill.LoggerAdapter,
	interval *Interval,
	address func() string,
	now func() time.Time,
	cooldown, tick time.Duration,
) *ClaimTimer {
	return &ClaimTimer{
		sessions: sessions,
		view:     view,
		logger:   logger,
		interval: interval,
		address:  address,
		now:      now,
		cooldown: cooldown,
		tick:     tick,
		hints:    make(map[string]time.Time),
	}
}

// Start re-evaluates now and every tick, replacing any running schedule
func (t *ClaimTimer) Start() {
	t.mu.Lock()
	busy := t.busy
	t.mu.Unlock()
	if !busy {
		t.view.ShowClaimControl(false, MsgClaimLabel)
	}

	t.interval.Start(t.tick, func(ctx context.Context) {
		t.Refresh(ctx)
	})
}

// Stop cancels the periodic re-evaluation
func (t *ClaimTimer) Stop() {
	t.interval.Stop()
}

// State computes the claim state of the current address
func (t *ClaimTimer) State(ctx context.Context) core.ClaimState {
	address := t.address()
	if address == "" {
		return core.ClaimState{}
	}

	now := t.now()
	last, found, err := t.sessions.LastClaim(ctx, address)
	if err != nil {
		t.logger.Error("Failed to read last claim", err, watermill.LogFields{"address": address})
	}
	state := core.Evaluate(last, found, now, t.cooldown)

	t.mu.Lock()
	until, hinted := t.hints[address]
	if hinted && !until.After(now) {
		delete(t.hints, address)
		hinted = false
	}
	t.mu.Unlock()

	if hinted {
		if hint := core.StateFor(until.Sub(now)); hint.Remaining > state.Remaining {
			state = hint
		}
	}
	return state
}

// Refresh re-evaluates the state and renders it
func (t *ClaimTimer) Refresh(ctx context.Context) core.ClaimState {
	state := t.State(ctx)
	t.Show(state)
	return state
}

// Show renders state. While a claim is in flight the control stays disabled.
func (t *ClaimTimer) Show(state core.ClaimState) {
	t.mu.Lock()
	busy := t.busy
	t.mu.Unlock()

	if state.Ready() {
		t.view.ShowClaimControl(!busy, "")
		t.view.ShowTimer(MsgClaimReady)
		return
	}
	t.view.ShowClaimControl(false, "")
	t.view.ShowTimer(MsgClaimCountdown + core.FormatRemaining(state.Remaining))
}

// Hint records a remaining cooldown reported by the server for address.
// It only affects this process and is dropped once it runs out.
func (t *ClaimTimer) Hint(address string, remaining time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if remaining <= 0 {
		delete(t.hints, address)
		return
	}
	t.hints[address] = t.now().Add(remaining)
}

func (t *ClaimTimer) setBusy(busy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = busy
}
