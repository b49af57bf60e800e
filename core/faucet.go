package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CooldownPeriod is the wait between two claims by the same address
	CooldownPeriod = 4 * time.Hour

	// BalanceRefreshInterval is how often balances are re-fetched while a session is active
	BalanceRefreshInterval = 10 * time.Second

	// TimerTick is the countdown re-evaluation period
	TimerTick = time.Second
)

// Session represents a connected wallet
type Session struct {
	PrivateKey string // Raw key as entered by the user, never logged
	Address    string // EIP-55 checksummed address derived from PrivateKey
}

// ClaimCooldown is the last successful claim recorded for an address
type ClaimCooldown struct {
	Address     string
	LastClaimAt time.Time
}

// Balances holds the token balances reported by the faucet backend
type Balances struct {
	BALBI decimal.Decimal `json:"balbi"`
	USDC  decimal.Decimal `json:"usdc"`
}

// ClaimReceipt is returned by the faucet backend on a successful claim
type ClaimReceipt struct {
	TxHash string `json:"txHash"`
}

// TxReceipt is the on-chain outcome of a claim transaction
type TxReceipt struct {
	TxHash      string `json:"tx_hash"`
	Status      uint64 `json:"status"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

// DashboardGrant represents an authorization to drive the local dashboard API
type DashboardGrant struct {
	ID        string    // Unique identifier for the grant
	Subject   string    // Who the grant was issued to
	IssuedAt  time.Time // When the grant was created
	ExpiresAt time.Time // When the grant expires
}
