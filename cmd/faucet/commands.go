package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:     "connect <private-key>",
	Short:   "Save a wallet key and show its balances",
	Example: "  faucet connect 0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFaucet(cmd, true, func(ctx context.Context, a *app) error {
			f := a.faucet
			noticeConsent(ctx, cmd, f)
			if _, err := f.Connect(ctx, args[0]); err != nil {
				return err
			}
			waitBalances(ctx, f, a.cfg.HTTPTimeout)
			return nil
		})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim tokens for the connected wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFaucet(cmd, true, func(ctx context.Context, a *app) error {
			_, err := a.faucet.Claim(ctx)
			return err
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connected wallet, its balances and the claim countdown",
	Example: `  faucet status
  faucet status --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return withFaucet(cmd, true, func(ctx context.Context, a *app) error {
			f := a.faucet
			if f.Address() != "" {
				waitBalances(ctx, f, a.cfg.HTTPTimeout)
			}
			if output != "json" {
				return nil
			}

			state := f.ClaimState(ctx)
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
				"view":            f.Snapshot(),
				"claim_ready":     state.Ready(),
				"claim_remaining": int64(state.Remaining.Seconds()),
			})
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved wallet key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFaucet(cmd, false, func(ctx context.Context, a *app) error {
			return a.faucet.Logout(ctx)
		})
	},
}

var receiptCmd = &cobra.Command{
	Use:   "receipt <tx-hash>",
	Short: "Look up a claim transaction on chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFaucet(cmd, true, func(ctx context.Context, a *app) error {
			receipt, err := a.faucet.Receipt(ctx, args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(receipt, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		})
	},
}

var consentCmd = &cobra.Command{
	Use:   "consent",
	Short: "Accept that keys and claim times are stored locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFaucet(cmd, false, func(ctx context.Context, a *app) error {
			return a.faucet.AcceptConsent(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(connectCmd, claimCmd, statusCmd, logoutCmd, receiptCmd, consentCmd, serveCmd)
	statusCmd.Flags().StringP("output", "o", "plain", "Output format: plain|json")
}
