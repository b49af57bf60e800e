package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet"
	"github.com/layer-3/faucet/adapters/store"
	"github.com/layer-3/faucet/adapters/view"
	"github.com/layer-3/faucet/config"
	"github.com/layer-3/faucet/service"
	"github.com/spf13/cobra"
)

const consentNotice = "Este cliente armazena sua chave privada e o horário do último cultivo localmente. Execute `faucet consent` para aceitar."

var rootCmd = &cobra.Command{
	Use:           "faucet",
	Short:         "BALBI faucet client",
	Long:          "Connects a wallet to the BALBI faucet, shows balances and claims tokens once per cooldown.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app is what a command runs against
type app struct {
	cfg    config.Config
	logger watermill.LoggerAdapter
	faucet *faucet.Faucet
}

// withFaucet builds a client for one command. With start set the chain is
// loaded and the saved session restored before fn runs.
func withFaucet(cmd *cobra.Command, start bool, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := watermill.NewStdLogger(cfg.Debug, false)
	f, err := faucet.New(cfg, logger, faucet.WithView(view.NewTerminal(cmd.OutOrStdout())))
	if err != nil {
		if errors.Is(err, store.ErrStoreLocked) {
			return fmt.Errorf("%w: while `faucet serve` runs, use the dashboard API at http://%s", err, cfg.HTTPAddr)
		}
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("Failed to close faucet client", err, nil)
		}
	}()

	if start {
		if err := f.Start(ctx); err != nil {
			return err
		}
	}

	return fn(ctx, &app{cfg: cfg, logger: logger, faucet: f})
}

// noticeConsent prints the storage notice until it is accepted
func noticeConsent(ctx context.Context, cmd *cobra.Command, f *faucet.Faucet) {
	ok, err := f.HasConsent(ctx)
	if err == nil && !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), consentNotice)
	}
}

// waitBalances blocks until the first balance response is rendered
func waitBalances(ctx context.Context, f *faucet.Faucet, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if s := f.Snapshot(); s.BALBI != "" && s.BALBI != service.MsgLoading {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
