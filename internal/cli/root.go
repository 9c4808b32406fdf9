// Package cli defines the platewise command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "platewise",
	Short: "Weekly meal subscription backend",
	Long: `Platewise is the backend for a credit-based weekly meal subscription:
customers pick their delivery days from the weekly menu, orders debit a
prepaid credit balance, and every credit movement is recorded in an
append-only ledger.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.toml (default ~/.platewise/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
