package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, "leverage dev (commit: none, built: unknown)\n", out)
}

func TestProjectCommand(t *testing.T) {
	out, err := run(t, "project",
		"--age", "30", "--weight", "80", "--height", "180",
		"--habit", "birra", "--cost", "2", "--quantity", "5", "--rate", "0.07")
	require.NoError(t, err)

	var res map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "10", res["wealth_projection"]["daily_saving"])
	require.Equal(t, "3650", res["wealth_projection"]["annual_saving"])
	require.Contains(t, res, "health_projection")
	require.Contains(t, res, "user_analysis")
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("API_JWT_SECRET", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := run(t, "token", "--user", "42")
	require.ErrorContains(t, err, "API_JWT_SECRET is not set")
}
