package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/faucet"
	"github.com/layer-3/faucet/adapters/tokenizer"
	"github.com/layer-3/faucet/config"
	"github.com/layer-3/faucet/service"
	transport "github.com/layer-3/faucet/transport/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the client with the local dashboard API",
	Long:  `Run the client with the local dashboard API.

The serve process holds the local store open. While it runs, the other
commands cannot open the same FAUCET_DATA_DIR. Drive the client through the
dashboard API instead (POST /auth/token, then the /api routes).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFaucet(cmd, true, func(ctx context.Context, a *app) error {
			noticeConsent(ctx, cmd, a.faucet)
			return serve(ctx, a.cfg, a.faucet, a.logger)
		})
	},
}

func serve(ctx context.Context, cfg config.Config, f *faucet.Faucet, logger watermill.LoggerAdapter) error {
	// Tokens only live as long as the process
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}
	auth := service.NewDashboardAuth(tokenizer.NewJWTTokenizer(privateKey), cfg.TokenTTL)

	if !cfg.LoopbackOnly() {
		logger.Info("Dashboard API is not bound to loopback, tokens are only issued to local callers", watermill.LogFields{
			"addr": cfg.HTTPAddr,
		})
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           transport.SetupRouter(f, f.Dashboard(), auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard API listening", watermill.LogFields{"addr": cfg.HTTPAddr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
