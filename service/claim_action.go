package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// ErrClaimInProgress is returned when a claim is requested while another is in flight
var ErrClaimInProgress = errors.New("claim already in progress")

// ClaimAction requests tokens from the faucet and records the cooldown
type ClaimAction struct {
	api      ports.FaucetAPI
	sessions *SessionStore
	wallet   *WalletSession
	timer    *ClaimTimer
	view     ports.View
	eventPub ports.EventPublisher
	logger   watermill.LoggerAdapter
	now      func() time.Time
	cooldown time.Duration

	inFlight atomic.Bool
}

// NewClaimAction creates a claim action
func NewClaimAction(
	api ports.FaucetAPI,
	sessions *SessionStore,
	wallet *WalletSession,
	timer *ClaimTimer,
	view ports.View,
	eventPub ports.EventPublisher,
	logger watermill.LoggerAdapter,
	now func() time.Time,
	cooldown time.Duration,
) *ClaimAction {
	return &ClaimAction{
		api:      api,
		sessions: sessions,
		wallet:   wallet,
		timer:    timer,
		view:     view,
		eventPub: eventPub,
		logger:   logger,
		now:      now,
		cooldown: cooldown,
	}
}

// Claim requests tokens for address. A claim during the cooldown is rejected
// without contacting the backend. The claim control is disabled while the
// request is in flight and re-evaluated from the stored state afterwards.
func (a *ClaimAction) Claim(ctx context.Context, address string) (*core.ClaimReceipt, error) {
	if address == "" {
		a.view.Alert(MsgConnectFirst)
		return nil, core.ErrNoSession
	}

	if !a.inFlight.CompareAndSwap(false, true) {
		return nil, ErrClaimInProgress
	}
	defer a.inFlight.Store(false)

	if state := a.timer.State(ctx); !state.Ready() {
		a.timer.Show(state)
		return nil, &core.CooldownError{Remaining: state.Remaining}
	}

	a.timer.setBusy(true)
	a.view.ShowClaimControl(false, MsgClaimBusy)
	a.view.HideClaimResult()

	defer func() {
		a.timer.setBusy(false)
		a.view.ShowClaimControl(false, MsgClaimLabel)
		a.timer.Refresh(ctx)
	}()

	receipt, err := a.api.Claim(ctx, address)
	if err != nil {
		var serverErr *core.ServerError
		if errors.As(err, &serverErr) {
			a.logger.Info("Claim rejected", watermill.LogFields{
				"address":   address,
				"status":    serverErr.Status,
				"error":     serverErr.Message,
				"time_left": serverErr.TimeLeft.String(),
			})
			a.view.ShowClaimResult(fmt.Sprintf(MsgClaimErrorFmt, serverErr.Message), "")
			a.timer.Hint(address, serverErr.TimeLeft)
			a.timer.Show(core.StateFor(serverErr.TimeLeft))
			return nil, err
		}

		a.logger.Error("Claim request failed", err, watermill.LogFields{"address": address})
		a.view.Alert(MsgClaimRetry)
		return nil, err
	}

	claimedAt := a.now()
	a.logger.Info("Claim succeeded", watermill.LogFields{"address": address, "tx_hash": receipt.TxHash})

	a.view.ShowClaimResult(MsgClaimSuccess, receipt.TxHash)
	a.wallet.RefreshBalances(ctx)

	if err := a.sessions.RecordClaim(ctx, address, claimedAt); err != nil {
		a.logger.Error("Failed to record claim", err, watermill.LogFields{"address": address})
	}
	a.timer.Show(core.StateFor(a.cooldown))

	if err := a.eventPub.PublishClaimed(ctx, address, receipt.TxHash, claimedAt); err != nil {
		a.logger.Error("Failed to publish claim event", err, watermill.LogFields{"address": address})
	}

	return &receipt, nil
}

// InFlight reports whether a claim request is pending
func (a *ClaimAction) InFlight() bool {
	return a.inFlight.Load()
}
