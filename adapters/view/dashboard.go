package view

import (
	"sync"

	"github.com/layer-3/faucet/ports"
)

// Snapshot is the rendered state of the dashboard
type Snapshot struct {
	LoggedIn     bool   `json:"logged_in"`
	Address      string `json:"address,omitempty"`
	BALBI        string `json:"balbi,omitempty"`
	USDC         string `json:"usdc,omitempty"`
	ClaimEnabled bool   `json:"claim_enabled"`
	ClaimLabel   string `json:"claim_label"`
	Timer        string `json:"timer"`
	ClaimMessage string `json:"claim_message,omitempty"`
	TxHash       string `json:"tx_hash,omitempty"`
	Alert        string `json:"alert,omitempty"`
}

// Dashboard keeps the latest rendered state in memory
type Dashboard struct {
	mu    sync.RWMutex
	state Snapshot
}

// NewDashboard creates a dashboard showing the login view
func NewDashboard() *Dashboard {
	return &Dashboard{}
}

var _ ports.View = (*Dashboard)(nil)

// Snapshot returns a copy of the current state
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Dashboard) update(fn func(s *Snapshot)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.state)
}

func (d *Dashboard) ShowLogin() {
	d.update(func(s *Snapshot) {
		s.LoggedIn = false
		s.Address = ""
		s.BALBI = ""
		s.USDC = ""
	})
}

func (d *Dashboard) ShowDashboard(address string) {
	d.update(func(s *Snapshot) {
		s.LoggedIn = true
		s.Address = address
	})
}

func (d *Dashboard) ShowBalances(balbi, usdc string) {
	d.update(func(s *Snapshot) {
		s.BALBI = balbi
		s.USDC = usdc
	})
}

func (d *Dashboard) ShowClaimControl(enabled bool, label string) {
	d.update(func(s *Snapshot) {
		s.ClaimEnabled = enabled
		if label != "" {
			s.ClaimLabel = label
		}
	})
}

func (d *Dashboard) ShowTimer(text string) {
	d.update(func(s *Snapshot) { s.Timer = text })
}

func (d *Dashboard) ShowClaimResult(message, txHash string) {
	d.update(func(s *Snapshot) {
		s.ClaimMessage = message
		s.TxHash = txHash
	})
}

func (d *Dashboard) HideClaimResult() {
	d.update(func(s *Snapshot) {
		s.ClaimMessage = ""
		s.TxHash = ""
	})
}

func (d *Dashboard) Alert(message string) {
	d.update(func(s *Snapshot) { s.Alert = message })
}
