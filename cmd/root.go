// Package cmd implements the leverage command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/yelinaung/leverage/internal/config"
	"gitlab.com/yelinaung/leverage/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "leverage",
	Short: "Bio-financial solvency coach",
	Long: "Turns balance, bills, income and habits into a safe daily spend and a calorie budget.\n" +
		"Run `leverage serve` to start the HTTP API and the Telegram bot.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and prepares the logger for commands
// that talk to the database.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}
