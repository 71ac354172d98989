// Package main provides the outreach_agent CLI: exhibitor research, invitation letters and
// maintenance of the organization registry and blacklist.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-scout/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Outreach research agent for Maker Faire exhibitors",
	Long: `outreach_agent searches the web for makerspaces, FabLabs, repair cafés and similar groups,
judges each candidate, and drafts personalized invitation letters for the accepted ones.

Run state lives in a staging directory: organization registry, blacklist, snapshot and notes.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.Init(logger.FromEnv())
	},
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
