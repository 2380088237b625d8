// Package cmd implements the chargefeed CLI commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "chargefeed",
		Short: "Canonical fast-charger feed builder",
		Long: "chargefeed aggregates charging-station records from public data\n" +
			"sources, normalizes them into a canonical station model, and\n" +
			"publishes the result as a GeoJSON feed.",
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(serveCmd())
}
