// Package faucet wires the faucet client: storage, the faucet backend, the
// chain connection, events and the session controller.
package faucet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/faucet/adapters/chain"
	"github.com/layer-3/faucet/adapters/events"
	"github.com/layer-3/faucet/adapters/faucetapi"
	"github.com/layer-3/faucet/adapters/loader"
	"github.com/layer-3/faucet/adapters/store"
	"github.com/layer-3/faucet/adapters/view"
	"github.com/layer-3/faucet/adapters/wallet"
	"github.com/layer-3/faucet/config"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
	"github.com/layer-3/faucet/service"
	"github.com/redis/go-redis/v9"
)

// Option customizes a Faucet
type Option func(*options)

type options struct {
	views     []ports.View
	dialChain loader.DialFunc[ports.Chain]
	publisher message.Publisher
}

// WithView adds a view rendered next to the in-memory dashboard
func WithView(v ports.View) Option {
	return func(o *options) { o.views = append(o.views, v) }
}

// WithChainDialer replaces the go-ethereum dialer
func WithChainDialer(dial loader.DialFunc[ports.Chain]) Option {
	return func(o *options) { o.dialChain = dial }
}

// WithPublisher replaces the configured event publisher
func WithPublisher(p message.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func dialEthChain(ctx context.Context, url string) (ports.Chain, error) {
	c, err := chain.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Faucet is the composed faucet client
type Faucet struct {
	cfg        config.Config
	logger     watermill.LoggerAdapter
	dashboard  *view.Dashboard
	controller *service.Controller
	chain      *loader.Loader[ports.Chain]
	closers    []func() error
}

var _ Client = (*Faucet)(nil)

// New builds a faucet client from cfg
func New(cfg config.Config, logger watermill.LoggerAdapter, opts ...Option) (*Faucet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{dialChain: dialEthChain}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Faucet{
		cfg:       cfg,
		logger:    logger,
		dashboard: view.NewDashboard(),
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		f.closers = append(f.closers, redisClient.Close)
	}

	kv, err := f.openStore(redisClient)
	if err != nil {
		f.Close()
		return nil, err
	}

	publisher := o.publisher
	if publisher == nil {
		publisher, err = f.openPublisher(redisClient)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	views := view.Multi(append([]ports.View{f.dashboard}, o.views...))

	f.controller = service.NewController(
		kv,
		wallet.NewEthDeriver(),
		faucetapi.NewClient(cfg.APIURL, cfg.HTTPTimeout),
		views,
		events.NewWatermillPublisher(publisher),
		logger,
		service.Options{
			Cooldown:       cfg.Cooldown,
			BalanceRefresh: cfg.BalanceRefresh,
			TimerTick:      cfg.TimerTick,
		},
	)
	f.chain = loader.New(o.dialChain, views, logger)

	return f, nil
}

func (f *Faucet) openStore(redisClient *redis.Client) (ports.Store, error) {
	var kv ports.Store

	switch f.cfg.Store {
	case config.StoreRedis:
		kv = store.NewRedisStore(redisClient)
	case config.StoreMemory:
		kv = store.NewMemoryStore()
	default:
		db, err := store.NewLevelDBStore(f.cfg.StorePath())
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, db.Close)
		kv = db
	}

	if f.cfg.Passphrase != "" {
		kv = store.NewSealedStore(kv, f.cfg.Passphrase, service.PrivateKeySlot)
	}
	return kv, nil
}

func (f *Faucet) openPublisher(redisClient *redis.Client) (message.Publisher, error) {
	if redisClient == nil {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, f.logger)
		f.closers = append(f.closers, pubSub.Close)
		return pubSub, nil
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		f.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis publisher: %w", err)
	}
	f.closers = append(f.closers, publisher.Close)
	return publisher, nil
}

// Start loads the chain connection and, once it is up, restores the saved
// session and starts the countdown. Nothing is started when loading fails.
func (f *Faucet) Start(ctx context.Context) error {
	return f.chain.Load(ctx, f.cfg.RPCURL, f.cfg.RPCFallbackURL, func(c ports.Chain) error {
		f.logger.Info("Chain connection ready", watermill.LogFields{"chain_id": c.ChainID()})
		return f.controller.Start(ctx)
	})
}

func (f *Faucet) Connect(ctx context.Context, key string) (*core.Session, error) {
	return f.controller.Connect(ctx, key)
}

func (f *Faucet) Logout(ctx context.Context) error {
	return f.controller.Logout(ctx)
}

func (f *Faucet) Claim(ctx context.Context) (*core.ClaimReceipt, error) {
	return f.controller.Claim(ctx)
}

func (f *Faucet) Address() string {
	return f.controller.Address()
}

func (f *Faucet) ClaimState(ctx context.Context) core.ClaimState {
	return f.controller.ClaimState(ctx)
}

func (f *Faucet) AcceptConsent(ctx context.Context) error {
	return f.controller.AcceptConsent(ctx)
}

func (f *Faucet) HasConsent(ctx context.Context) (bool, error) {
	return f.controller.HasConsent(ctx)
}

// Receipt looks up txHash on the loaded chain
func (f *Faucet) Receipt(ctx context.Context, txHash string) (*core.TxReceipt, error) {
	c, ok := f.chain.Resource()
	if !ok {
		return nil, fmt.Errorf("chain not loaded: %w", core.ErrLibraryLoadFailure)
	}
	return c.Receipt(ctx, txHash)
}

// Snapshot returns the rendered dashboard state
func (f *Faucet) Snapshot() view.Snapshot {
	return f.dashboard.Snapshot()
}

// Dashboard returns the in-memory dashboard view
func (f *Faucet) Dashboard() *view.Dashboard {
	return f.dashboard
}

// Close stops the controller and releases everything New opened
func (f *Faucet) Close() error {
	if f.controller != nil {
		f.controller.Close()
	}
	if f.chain != nil {
		if c, ok := f.chain.Resource(); ok {
			if closer, ok := c.(interface{ Close() }); ok {
				closer.Close()
			}
		}
	}

	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
