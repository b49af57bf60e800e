package config

import (
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	StoreLevelDB = "leveldb"
	StoreRedis   = "redis"
	StoreMemory  = "memory"
)

// Config holds the faucet client settings
type Config struct {
	APIURL         string        `env:"FAUCET_API_URL"          envDefault:"http://localhost:3000"`
	RPCURL         string        `env:"FAUCET_RPC_URL"          envDefault:"https://polygon-rpc.com"`
	RPCFallbackURL string        `env:"FAUCET_RPC_FALLBACK_URL"`
	Store          string        `env:"FAUCET_STORE"            envDefault:"leveldb"`
	DataDir        string        `env:"FAUCET_DATA_DIR"         envDefault:".faucet"`
	RedisURL       string        `env:"REDIS_URL"`
	Passphrase     string        `env:"FAUCET_PASSPHRASE"`
	HTTPAddr       string        `env:"FAUCET_HTTP_ADDR"        envDefault:"127.0.0.1:9000"`
	Cooldown       time.Duration `env:"FAUCET_COOLDOWN"         envDefault:"4h"`
	BalanceRefresh time.Duration `env:"FAUCET_BALANCE_REFRESH"  envDefault:"10s"`
	TimerTick      time.Duration `env:"FAUCET_TIMER_TICK"       envDefault:"1s"`
	HTTPTimeout    time.Duration `env:"FAUCET_HTTP_TIMEOUT"     envDefault:"15s"`
	TokenTTL       time.Duration `env:"FAUCET_TOKEN_TTL"        envDefault:"15m"`
	Debug          bool          `env:"FAUCET_DEBUG"`
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that env parsing cannot
func (c Config) Validate() error {
	switch c.Store {
	case StoreLevelDB, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("FAUCET_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	if c.APIURL == "" {
		return fmt.Errorf("FAUCET_API_URL is empty")
	}
	if c.Cooldown <= 0 || c.BalanceRefresh <= 0 || c.TimerTick <= 0 {
		return fmt.Errorf("cooldown, balance refresh and timer tick must be positive")
	}
	return nil
}

// StorePath is the leveldb directory inside the data dir
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "store")
}

// LoopbackOnly reports whether the dashboard API binds to a loopback address
func (c Config) LoopbackOnly() bool {
	host, _, err := net.SplitHostPort(c.HTTPAddr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
