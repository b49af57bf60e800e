package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet/adapters/store"
	"github.com/layer-3/faucet/adapters/view"
	"github.com/layer-3/faucet/adapters/wallet"
	"github.com/layer-3/faucet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type walletHarness struct {
	store   *store.MemoryStore
	api     *fakeAPI
	dash    *view.Dashboard
	pub     *fakePublisher
	tickers *manualTickers
	wallet  *WalletSession
}

func newWalletHarness(t *testing.T) *walletHarness {
	t.Helper()

	h := &walletHarness{
		store:   store.NewMemoryStore(),
		api:     newFakeAPI(),
		dash:    view.NewDashboard(),
		pub:     &fakePublisher{},
		tickers: &manualTickers{},
	}
	h.wallet = NewWalletSession(wallet.NewEthDeriver(), h.api, NewSessionStore(h.store), h.dash, h.pub,
		watermill.NopLogger{}, NewInterval(h.tickers.New), core.BalanceRefreshInterval)
	t.Cleanup(h.wallet.refresh.Stop)
	return h
}

func (h *walletHarness) waitBalances(t *testing.T, balbi, usdc string) {
	t.Helper()
	require.Eventually(t, func() bool {
		s := h.dash.Snapshot()
		return s.BALBI == balbi && s.USDC == usdc
	}, time.Second, time.Millisecond, "balances never became %q / %q", balbi, usdc)
}

func TestConnect(t *testing.T) {
	h := newWalletHarness(t)

	session, err := h.wallet.Connect(context.Background(), "  "+testKey+"  ")
	require.NoError(t, err)
	assert.Equal(t, testAddress, session.Address)
	assert.Equal(t, testAddress, h.wallet.Address())

	stored, err := h.store.Get(context.Background(), PrivateKeySlot)
	require.NoError(t, err)
	assert.Equal(t, testKey, stored)

	s := h.dash.Snapshot()
	assert.True(t, s.LoggedIn)
	assert.Equal(t, testAddress, s.Address)

	h.waitBalances(t, "12.3457 BALBI", "0.0000 USDC")
}

func TestConnect_WithoutPrefixStoresRawKey(t *testing.T) {
	h := newWalletHarness(t)
	bare := strings.TrimPrefix(testKey, "0x")

	session, err := h.wallet.Connect(context.Background(), bare)
	require.NoError(t, err)
	assert.Equal(t, testAddress, session.Address)

	stored, err := h.store.Get(context.Background(), PrivateKeySlot)
	require.NoError(t, err)
	assert.Equal(t, bare, stored)
}

func TestConnect_InvalidKeyLeavesStateUntouched(t *testing.T) {
	h := newWalletHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, PrivateKeySlot, "previous"))

	for _, key := range []string{"0x1234", strings.Repeat("g", 64), strings.Repeat("aa", 33)} {
		_, err := h.wallet.Connect(ctx, key)
		require.ErrorIs(t, err, core.ErrInvalidKeyFormat)
	}

	stored, err := h.store.Get(ctx, PrivateKeySlot)
	require.NoError(t, err)
	assert.Equal(t, "previous", stored)
	assert.Empty(t, h.wallet.Address())
	assert.Equal(t, MsgInvalidKey, h.dash.Snapshot().Alert)
	assert.Zero(t, h.api.balanceCalls.Load())
	assert.Zero(t, h.tickers.Active())
}

func TestConnect_EmptyKey(t *testing.T) {
	h := newWalletHarness(t)

	_, err := h.wallet.Connect(context.Background(), "   ")
	require.ErrorIs(t, err, core.ErrInvalidKeyFormat)
	assert.Equal(t, MsgEnterKey, h.dash.Snapshot().Alert)
}

func TestConnect_BalanceFailure(t *testing.T) {
	h := newWalletHarness(t)
	h.api.balanceErr = errors.New("boom")

	_, err := h.wallet.Connect(context.Background(), testKey)
	require.NoError(t, err)

	h.waitBalances(t, MsgBalanceError, MsgBalanceError)
}

func TestConnect_TwiceKeepsSingleRefreshTimer(t *testing.T) {
	h := newWalletHarness(t)
	ctx := context.Background()

	_, err := h.wallet.Connect(ctx, testKey)
	require.NoError(t, err)
	_, err = h.wallet.Connect(ctx, testKey)
	require.NoError(t, err)

	assert.Equal(t, 1, h.tickers.Active())
	require.Eventually(t, func() bool { return h.api.balanceCalls.Load() == 2 }, time.Second, time.Millisecond)

	for n := 0; n < 3; n++ {
		h.tickers.Tick(t)
	}

	require.Eventually(t, func() bool { return h.api.balanceCalls.Load() == 5 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return h.api.balanceCalls.Load() > 5 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestLogout(t *testing.T) {
	h := newWalletHarness(t)
	ctx := context.Background()

	_, err := h.wallet.Connect(ctx, testKey)
	require.NoError(t, err)
	require.NoError(t, h.store.Set(ctx, LastClaimSlot(testAddress), "1700000000000"))

	require.NoError(t, h.wallet.Logout(ctx))

	_, err = h.store.Get(ctx, PrivateKeySlot)
	assert.ErrorIs(t, err, core.ErrNotFound)

	last, err := h.store.Get(ctx, LastClaimSlot(testAddress))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", last)

	assert.Empty(t, h.wallet.Address())
	assert.False(t, h.dash.Snapshot().LoggedIn)
	assert.Zero(t, h.tickers.Active())
	assert.Equal(t, []string{testAddress}, h.pub.Logouts())
}

func TestLogout_PublishFailureIsNotFatal(t *testing.T) {
	h := newWalletHarness(t)
	h.pub.err = errors.New("broker down")
	ctx := context.Background()

	_, err := h.wallet.Connect(ctx, testKey)
	require.NoError(t, err)
	assert.NoError(t, h.wallet.Logout(ctx))
}

func TestStaleBalanceAfterLogoutIsDropped(t *testing.T) {
	h := newWalletHarness(t)
	ctx := context.Background()

	_, err := h.wallet.Connect(ctx, testKey)
	require.NoError(t, err)
	h.waitBalances(t, "12.3457 BALBI", "0.0000 USDC")

	release := make(chan struct{})
	h.api.mu.Lock()
	h.api.balanceBlock = release
	h.api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wallet.RefreshBalances(context.Background())
	}()
	require.Eventually(t, func() bool { return h.api.balanceCalls.Load() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, h.wallet.Logout(ctx))
	close(release)
	<-done

	s := h.dash.Snapshot()
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.BALBI)
	assert.Empty(t, s.USDC)
}

func TestRestore(t *testing.T) {
	h := newWalletHarness(t)
	ctx := context.Background()

	_, found, err := h.wallet.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, h.store.Set(ctx, PrivateKeySlot, testKey))

	session, found, err := h.wallet.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testAddress, session.Address)
	assert.Equal(t, 1, h.tickers.Active())
}
