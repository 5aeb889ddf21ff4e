package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/yelinaung/leverage/internal/api"
	"gitlab.com/yelinaung/leverage/internal/config"
)

var (
	flagTokenUser int64
	flagTokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API bearer token for one user",
	Long:  "Signs a token with API_JWT_SECRET. The token only grants access to /v1/users/<user>/ routes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.AuthEnabled() {
			return errors.New("API_JWT_SECRET is not set")
		}
		if flagTokenUser <= 0 {
			return errors.New("--user must be a positive Telegram user id")
		}

		token, err := api.IssueToken(cfg.APIJWTSecret, flagTokenUser, flagTokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&flagTokenUser, "user", 0, "User id the token is issued for")
	tokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", 30*24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
