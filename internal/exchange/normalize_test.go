package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/leverage/internal/models"
)

func TestNormalizeLogs(t *testing.T) {
	t.Parallel()

	logs := []models.ActivityLog{
		{ID: 1, Kind: models.LogKindExpense, Amount: decimal.NewFromInt(10), Currency: "USD"},
		{ID: 2, Kind: models.LogKindExpense, Amount: decimal.NewFromInt(5), Currency: "EUR"},
		{ID: 3, Kind: models.LogKindExpense, Amount: decimal.NewFromInt(4)},
		{ID: 4, Kind: models.LogKindFood, Calories: 500, Currency: "GBP"},
	}

	t.Run("converts foreign amounts", func(t *testing.T) {
		t.Parallel()

		conv := &countingConverter{rate: decimal.RequireFromString("0.9")}
		got, err := NormalizeLogs(context.Background(), conv, logs, "eur")
		require.NoError(t, err)
		require.Len(t, got, 4)

		require.True(t, decimal.NewFromInt(9).Equal(got[0].Amount))
		require.True(t, decimal.NewFromInt(5).Equal(got[1].Amount))
		require.True(t, decimal.NewFromInt(4).Equal(got[2].Amount))
		for _, l := range got {
			require.Equal(t, "EUR", l.Currency)
		}
		require.Equal(t, int32(1), conv.calls.Load())

		// Input is untouched.
		require.Equal(t, "USD", logs[0].Currency)
	})

	t.Run("any failure fails the batch", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("no rate")
		_, err := NormalizeLogs(context.Background(), &countingConverter{err: boom}, logs, "EUR")
		require.ErrorIs(t, err, boom)
	})

	t.Run("nil converter only works for same currency", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeLogs(context.Background(), nil, logs, "EUR")
		require.Error(t, err)

		got, err := NormalizeLogs(context.Background(), nil, logs[1:], "")
		require.NoError(t, err)
		require.Len(t, got, 3)
	})
}
