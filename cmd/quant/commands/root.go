package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	engineConfigFile string
	verbose          bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Quant analytics engine",
	Long: `Quant analytics engine CLI

Values instruments, scores them per risk profile, drafts the per-profile
rankings, scans for tactical signals, audits past signals and tracks the
portfolio quota series.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant rank --assets data/assets.csv
  go run ./cmd/quant scan --assets data/assets.csv --prices data/prices.csv
  go run ./cmd/quant audit --prices data/prices.csv
  go run ./cmd/quant perf --days data/equity.csv
  go run ./cmd/quant scheduler start --assets data/assets.csv --prices data/prices.csv
  go run ./cmd/quant config show`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineConfigFile, "engine-config", "", "engine YAML config (default: $ENGINE_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
