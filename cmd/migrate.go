package cmd

import (
	"github.com/spf13/cobra"
	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.RunMigrations(ctx, pool); err != nil {
			return err
		}
		logger.Log.Info().Msg("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
