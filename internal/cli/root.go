// Package cli implements the ordersync command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "ordersync",
	Short: "Ingest shop order exports into the order store",
	Long: `ordersync watches a drop directory for shop order exports (CSV), upserts
their customers, orders and line items, and consolidates duplicate shops
created by timestamp-prefixed uploads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envFile)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Dotenv file to load before reading config (default: ./.env if present)")

	rootCmd.AddCommand(watchCmd, ingestCmd, mergeCmd, summaryCmd)
}

// loadEnv loads path, or ./.env when path is empty. Variables already set in
// the environment win.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
