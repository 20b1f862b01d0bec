package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vilakshan/pli-leaderboard/bootstrap"
	"github.com/vilakshan/pli-leaderboard/config"
)

var (
	configModule string
	configLimit  int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or reset a scorer's runtime configuration (C1)",
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace a metric's active config with its built-in default",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		ctx := cmd.Context()

		switch config.Metric(configModule) {
		case config.MetricLumpsum:
			_, err = app.Config.ResetLumpsum(ctx, "cli", "manual reset via pli config reset")
		case config.MetricSip:
			_, err = app.Config.ResetSip(ctx, "cli", "manual reset via pli config reset")
		case config.MetricInsurance:
			_, err = app.Config.ResetInsurance(ctx, "cli", "manual reset via pli config reset")
		case config.MetricReferral:
			_, err = app.Config.ResetReferral(ctx, "cli", "manual reset via pli config reset")
		default:
			return fmt.Errorf("unknown --module %q (want lumpsum|sip|insurance|referral)", configModule)
		}
		if err != nil {
			return err
		}
		fmt.Printf("reset %s config to built-in default\n", configModule)
		return nil
	},
}

var configAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List the N most recent archived config versions for a metric",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		entries, err := app.Config.Audit(cmd.Context(), config.Metric(configModule), configLimit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

func init() {
	for _, c := range []*cobra.Command{configResetCmd, configAuditCmd} {
		c.Flags().StringVar(&configModule, "module", "", "lumpsum|sip|insurance|referral")
		_ = c.MarkFlagRequired("module")
	}
	configAuditCmd.Flags().IntVar(&configLimit, "limit", 20, "number of archived versions to list")
	configCmd.AddCommand(configResetCmd, configAuditCmd)
}

func newApp() (*bootstrap.App, error) {
	settings, err := bootstrap.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(settings)
}
