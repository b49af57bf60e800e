package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/layer-3/faucet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, h *harness) {
	t.Helper()
	_, err := h.controller.Connect(context.Background(), testKey)
	require.NoError(t, err)
}

func TestClaim_WithoutSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.controller.Claim(context.Background())
	require.ErrorIs(t, err, core.ErrNoSession)
	assert.Equal(t, MsgConnectFirst, h.dash.Snapshot().Alert)
	assert.Zero(t, h.api.claimCalls.Load())
}

func TestClaim_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	connect(t, h)

	release := make(chan struct{})
	h.api.mu.Lock()
	h.api.claimBlock = release
	h.api.mu.Unlock()

	type result struct {
		receipt *core.ClaimReceipt
		err     error
	}
	done := make(chan result, 1)
	go func() {
		r, err := h.controller.Claim(ctx)
		done <- result{r, err}
	}()

	// The request goes out right away with the control disabled
	require.Eventually(t, func() bool { return h.api.claimCalls.Load() == 1 }, time.Second, time.Millisecond)
	s := h.dash.Snapshot()
	assert.False(t, s.ClaimEnabled)
	assert.Equal(t, MsgClaimBusy, s.ClaimLabel)

	// A tick during the flight must not re-enable the control
	h.controller.timer.Refresh(ctx)
	assert.False(t, h.dash.Snapshot().ClaimEnabled)

	_, err := h.controller.Claim(ctx)
	assert.ErrorIs(t, err, ErrClaimInProgress)

	balanceCalls := h.api.balanceCalls.Load()
	close(release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "0xfeed", res.receipt.TxHash)

	last, found, err := h.controller.sessions.LastClaim(ctx, testAddress)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, last.Equal(testEpoch))

	assert.Equal(t, core.ClaimState{Remaining: core.CooldownPeriod}, h.controller.ClaimState(ctx))

	s = h.dash.Snapshot()
	assert.False(t, s.ClaimEnabled)
	assert.Equal(t, MsgClaimLabel, s.ClaimLabel)
	assert.Equal(t, MsgClaimSuccess, s.ClaimMessage)
	assert.Equal(t, "0xfeed", s.TxHash)
	assert.Equal(t, MsgClaimCountdown+"4h 0m 0s", s.Timer)

	assert.Greater(t, h.api.balanceCalls.Load(), balanceCalls)
	assert.Equal(t, []string{testAddress + "@0xfeed"}, h.pub.Claimed())
}

func TestClaim_ServerErrorWithTimeLeft(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	connect(t, h)
	h.api.mu.Lock()
	h.api.claimErr = &core.ServerError{Status: 429, Message: "aguarde", TimeLeft: 90 * time.Minute}
	h.api.mu.Unlock()

	_, err := h.controller.Claim(ctx)
	require.ErrorIs(t, err, core.ErrServer)

	s := h.dash.Snapshot()
	assert.Equal(t, fmt.Sprintf(MsgClaimErrorFmt, "aguarde"), s.ClaimMessage)
	assert.Empty(t, s.TxHash)
	assert.False(t, s.ClaimEnabled)
	assert.Equal(t, MsgClaimLabel, s.ClaimLabel)
	assert.Equal(t, MsgClaimCountdown+"1h 30m 0s", s.Timer)

	_, found, err := h.controller.sessions.LastClaim(ctx, testAddress)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, h.pub.Claimed())
}

func TestClaim_ServerErrorWithoutTimeLeft(t *testing.T) {
	h := newHarness(t)
	connect(t, h)
	h.api.mu.Lock()
	h.api.claimErr = &core.ServerError{Status: 500, Message: "falhou"}
	h.api.mu.Unlock()

	_, err := h.controller.Claim(context.Background())
	require.ErrorIs(t, err, core.ErrServer)

	s := h.dash.Snapshot()
	assert.True(t, s.ClaimEnabled)
	assert.Equal(t, MsgClaimReady, s.Timer)
}

func TestClaim_NetworkFailure(t *testing.T) {
	h := newHarness(t)
	connect(t, h)
	h.api.mu.Lock()
	h.api.claimErr = fmt.Errorf("dial: %w", core.ErrNetworkFailure)
	h.api.mu.Unlock()

	_, err := h.controller.Claim(context.Background())
	require.ErrorIs(t, err, core.ErrNetworkFailure)

	s := h.dash.Snapshot()
	assert.Equal(t, MsgClaimRetry, s.Alert)
	assert.True(t, s.ClaimEnabled)
	assert.Equal(t, MsgClaimLabel, s.ClaimLabel)
	assert.False(t, h.controller.claim.InFlight())
}

func TestClaim_PublishFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	connect(t, h)
	h.pub.mu.Lock()
	h.pub.err = errors.New("broker down")
	h.pub.mu.Unlock()

	receipt, err := h.controller.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", receipt.TxHash)
}

func TestClaim_RejectedDuringCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	connect(t, h)
	require.NoError(t, h.controller.sessions.RecordClaim(ctx, testAddress, testEpoch.Add(-time.Hour)))

	_, err := h.controller.Claim(ctx)
	require.ErrorIs(t, err, core.ErrCooldownActive)

	var cooldownErr *core.CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 3*time.Hour, cooldownErr.Remaining)
	assert.Zero(t, h.api.claimCalls.Load())

	last, found, err := h.controller.sessions.LastClaim(ctx, testAddress)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, last.Equal(testEpoch.Add(-time.Hour)))

	s := h.dash.Snapshot()
	assert.False(t, s.ClaimEnabled)
	assert.Equal(t, MsgClaimCountdown+"3h 0m 0s", s.Timer)
	assert.False(t, h.controller.claim.InFlight())
}

func TestClaim_RejectedDuringServerCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	connect(t, h)
	h.api.mu.Lock()
	h.api.claimErr = &core.ServerError{Status: 429, Message: "aguarde", TimeLeft: time.Minute}
	h.api.mu.Unlock()

	_, err := h.controller.Claim(ctx)
	require.ErrorIs(t, err, core.ErrServer)

	_, err = h.controller.Claim(ctx)
	require.ErrorIs(t, err, core.ErrCooldownActive)
	assert.Equal(t, int32(1), h.api.claimCalls.Load())
}

func TestClaim_AllowedWhenCooldownEnds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	connect(t, h)
	require.NoError(t, h.controller.sessions.RecordClaim(ctx, testAddress, testEpoch))

	h.clock.Set(testEpoch.Add(core.CooldownPeriod - time.Millisecond))
	_, err := h.controller.Claim(ctx)
	require.ErrorIs(t, err, core.ErrCooldownActive)

	h.clock.Set(testEpoch.Add(core.CooldownPeriod))
	receipt, err := h.controller.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", receipt.TxHash)
	assert.Equal(t, int32(1), h.api.claimCalls.Load())

	last, _, err := h.controller.sessions.LastClaim(ctx, testAddress)
	require.NoError(t, err)
	assert.True(t, last.Equal(testEpoch.Add(core.CooldownPeriod)))
}
