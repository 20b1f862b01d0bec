/*
main.go - pli CLI entry point

PURPOSE:
  Boots the PLI Leaderboard Engine: either as a long-running HTTP server
  (`pli serve`) or as a one-shot re-aggregation / config maintenance run
  (`pli reaggregate`, `pli config reset|audit`) that a cron job can invoke
  without going through the admin HTTP API.

STARTUP SEQUENCE (shared by every subcommand via bootstrap.New):
  1. Read PLI_* environment / ./config.yaml (bootstrap.Load)
  2. Open the SQLite store and Redis client
  3. Wire the four scorers, the orchestrator, and the API handler
  4. Run the requested subcommand

SEE ALSO:
  - bootstrap/wire.go: dependency wiring shared by every subcommand
  - api/router.go: HTTP route configuration for `pli serve`
  - orchestrator/orchestrator.go: what `pli reaggregate` drives
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pli",
	Short: "Performance-Linked Incentive leaderboard engine",
	Long:  "Scores Lumpsum, SIP, Insurance and Referral activity per Relationship Manager per month, and serves the resulting public leaderboard.",
}

func main() {
	rootCmd.AddCommand(serveCmd, reaggregateCmd, configCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
