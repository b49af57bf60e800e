package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet/adapters/store"
	"github.com/layer-3/faucet/adapters/view"
	"github.com/layer-3/faucet/adapters/wallet"
	"github.com/layer-3/faucet/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testKey     = "0x" + strings.Repeat("aa", 32)
	testAddress = "0x8fd379246834eac74B8419FfdA202CF8051F7A03"
	testEpoch   = time.UnixMilli(1_700_000_000_000)
)

// manualTickers hands out tickers that only fire when the test says so
type manualTickers struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

type manualTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

func (m *manualTickers) New(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTicker{c: make(chan time.Time)}
	m.tickers = append(m.tickers, t)
	return t
}

func (m *manualTickers) active() []*manualTicker {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*manualTicker
	for _, t := range m.tickers {
		if !t.stopped.Load() {
			out = append(out, t)
		}
	}
	return out
}

func (m *manualTickers) Active() int {
	return len(m.active())
}

// Tick fires every active ticker once
func (m *manualTickers) Tick(t *testing.T) {
	t.Helper()
	for _, tk := range m.active() {
		select {
		case tk.c <- time.Now():
		case <-time.After(time.Second):
			t.Fatal("ticker was not drained")
		}
	}
}

// fakeClock is a settable clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeAPI is a scripted faucet backend
type fakeAPI struct {
	mu           sync.Mutex
	balances     core.Balances
	balanceErr   error
	receipt      core.ClaimReceipt
	claimErr     error
	balanceBlock chan struct{}
	claimBlock   chan struct{}

	balanceCalls atomic.Int32
	claimCalls   atomic.Int32
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		balances: core.Balances{
			BALBI: decimal.RequireFromString("12.3456789"),
			USDC:  decimal.RequireFromString("0"),
		},
		receipt: core.ClaimReceipt{TxHash: "0xfeed"},
	}
}

func (f *fakeAPI) Balance(ctx context.Context, address string) (core.Balances, error) {
	f.balanceCalls.Add(1)

	f.mu.Lock()
	block := f.balanceBlock
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances, f.balanceErr
}

func (f *fakeAPI) Claim(ctx context.Context, address string) (core.ClaimReceipt, error) {
	f.claimCalls.Add(1)

	f.mu.Lock()
	block := f.claimBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt, f.claimErr
}

// fakePublisher records published events
type fakePublisher struct {
	mu      sync.Mutex
	claimed []string
	logouts []string
	err     error
}

func (p *fakePublisher) PublishClaimed(ctx context.Context, address, txHash string, claimedAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.claimed = append(p.claimed, address+"@"+txHash)
	return p.err
}

func (p *fakePublisher) PublishLogout(ctx context.Context, address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logouts = append(p.logouts, address)
	return p.err
}

func (p *fakePublisher) Claimed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.claimed...)
}

func (p *fakePublisher) Logouts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.logouts...)
}

// harness wires a controller over in-memory fakes
type harness struct {
	store      *store.MemoryStore
	api        *fakeAPI
	dash       *view.Dashboard
	pub        *fakePublisher
	clock      *fakeClock
	tickers    *manualTickers
	controller *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:   store.NewMemoryStore(),
		api:     newFakeAPI(),
		dash:    view.NewDashboard(),
		pub:     &fakePublisher{},
		clock:   &fakeClock{now: testEpoch},
		tickers: &manualTickers{},
	}
	h.controller = NewController(h.store, wallet.NewEthDeriver(), h.api, h.dash, h.pub, watermill.NopLogger{}, Options{
		Now:       h.clock.Now,
		NewTicker: h.tickers.New,
	})
	t.Cleanup(h.controller.Close)
	return h
}

func (h *harness) storedKey(t *testing.T) (string, bool) {
	t.Helper()
	value, err := h.store.Get(context.Background(), PrivateKeySlot)
	if err != nil {
		require.ErrorIs(t, err, core.ErrNotFound)
		return "", false
	}
	return value, true
}
