package service

import (
	"context"
	"testing"
	"time"

	"github.com/layer-3/faucet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StartWithoutSavedKey(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.controller.Start(context.Background()))

	assert.Empty(t, h.controller.Address())
	require.Eventually(t, func() bool { return h.dash.Snapshot().Timer == MsgClaimReady }, time.Second, time.Millisecond)
	assert.False(t, h.dash.Snapshot().LoggedIn)
	assert.Equal(t, 1, h.tickers.Active())
}

func TestController_StartRestoresSavedKey(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, PrivateKeySlot, testKey))
	require.NoError(t, h.controller.sessions.RecordClaim(ctx, testAddress, testEpoch.Add(-time.Hour)))

	require.NoError(t, h.controller.Start(ctx))

	assert.Equal(t, testAddress, h.controller.Address())
	require.Eventually(t, func() bool {
		return h.dash.Snapshot().Timer == MsgClaimCountdown+"3h 0m 0s"
	}, time.Second, time.Millisecond)

	s := h.dash.Snapshot()
	assert.True(t, s.LoggedIn)
	assert.False(t, s.ClaimEnabled)
	// balance refresh and countdown
	assert.Equal(t, 2, h.tickers.Active())
}

func TestController_StartWithBrokenSavedKey(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, PrivateKeySlot, "0x1234"))

	require.NoError(t, h.controller.Start(ctx))

	assert.Empty(t, h.controller.Address())
	key, found := h.storedKey(t)
	assert.True(t, found)
	assert.Equal(t, "0x1234", key)
}

func TestController_LogoutKeepsCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	connect(t, h)

	_, err := h.controller.Claim(ctx)
	require.NoError(t, err)
	require.NoError(t, h.controller.Logout(ctx))

	_, found := h.storedKey(t)
	assert.False(t, found)
	assert.True(t, h.controller.ClaimState(ctx).Ready())
	assert.Equal(t, MsgClaimReady, h.dash.Snapshot().Timer)

	// Reconnecting the same key brings the cooldown back
	h.clock.Set(testEpoch.Add(time.Hour))
	connect(t, h)
	assert.Equal(t, 3*time.Hour, h.controller.ClaimState(ctx).Remaining)

	_, err = h.controller.Claim(ctx)
	require.ErrorIs(t, err, core.ErrCooldownActive)
	assert.Equal(t, int32(1), h.api.claimCalls.Load())

	h.clock.Set(testEpoch.Add(core.CooldownPeriod))
	_, err = h.controller.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.ClaimState{Remaining: core.CooldownPeriod}, h.controller.ClaimState(ctx))
}

func TestController_Consent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ok, err := h.controller.HasConsent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.controller.AcceptConsent(ctx))

	ok, err = h.controller.HasConsent(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestController_CloseStopsIntervals(t *testing.T) {
	h := newHarness(t)
	connect(t, h)
	require.Equal(t, 2, h.tickers.Active())

	h.controller.Close()
	assert.Zero(t, h.tickers.Active())
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, 4*time.Hour, opts.Cooldown)
	assert.Equal(t, 10*time.Second, opts.BalanceRefresh)
	assert.Equal(t, time.Second, opts.TimerTick)
	assert.NotNil(t, opts.Now)
	assert.NotNil(t, opts.NewTicker)

	custom := Options{Cooldown: time.Minute}.withDefaults()
	assert.Equal(t, time.Minute, custom.Cooldown)
}
