package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/layer-3/faucet/ports"
)

// Terminal prints view changes as lines. Repeated timer text is printed once.
type Terminal struct {
	mu        sync.Mutex
	out       io.Writer
	lastTimer string
}

// NewTerminal creates a terminal view writing to out
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

var _ ports.View = (*Terminal)(nil)

func (t *Terminal) printf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Terminal) ShowLogin() {
	t.printf("Carteira desconectada")
}

func (t *Terminal) ShowDashboard(address string) {
	t.printf("Carteira: %s", address)
}

func (t *Terminal) ShowBalances(balbi, usdc string) {
	t.printf("Saldo: %s | %s", balbi, usdc)
}

// ShowClaimControl is not printed, the timer line carries the same information
func (t *Terminal) ShowClaimControl(enabled bool, label string) {}

func (t *Terminal) ShowTimer(text string) {
	t.mu.Lock()
	if text == t.lastTimer {
		t.mu.Unlock()
		return
	}
	t.lastTimer = text
	t.mu.Unlock()

	t.printf("%s", text)
}

func (t *Terminal) ShowClaimResult(message, txHash string) {
	if txHash == "" {
		t.printf("%s", message)
		return
	}
	t.printf("%s\nTx Hash: %s", message, txHash)
}

func (t *Terminal) HideClaimResult() {}

func (t *Terminal) Alert(message string) {
	t.printf("! %s", message)
}

// Multi fans every call out to all views in order
type Multi []ports.View

var _ ports.View = Multi(nil)

func (m Multi) ShowLogin() {
	for _, v := range m {
		v.ShowLogin()
	}
}

func (m Multi) ShowDashboard(address string) {
	for _, v := range m {
		v.ShowDashboard(address)
	}
}

func (m Multi) ShowBalances(balbi, usdc string) {
	for _, v := range m {
		v.ShowBalances(balbi, usdc)
	}
}

func (m Multi) ShowClaimControl(enabled bool, label string) {
	for _, v := range m {
		v.ShowClaimControl(enabled, label)
	}
}

func (m Multi) ShowTimer(text string) {
	for _, v := range m {
		v.ShowTimer(text)
	}
}

func (m Multi) ShowClaimResult(message, txHash string) {
	for _, v := range m {
		v.ShowClaimResult(message, txHash)
	}
}

func (m Multi) HideClaimResult() {
	for _, v := range m {
		v.HideClaimResult()
	}
}

func (m Multi) Alert(message string) {
	for _, v := range m {
		v.Alert(message)
	}
}
