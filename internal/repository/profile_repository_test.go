package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/models"
)

func TestProfileRepository(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	require.NoError(t, NewUserRepository(tx).UpsertUser(ctx, &models.User{ID: 2001, Username: "saver"}))
	repo := NewProfileRepository(tx)

	t.Run("missing profile wraps ErrNoRows", func(t *testing.T) {
		_, err := repo.GetByUserID(ctx, 2001)
		require.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("round trips every field", func(t *testing.T) {
		bodyFat := 18.5
		steps := 9000
		p := &models.Profile{
			UserID:          2001,
			LiquidBalance:   decimal.RequireFromString("1234.56"),
			MonthlyIncome:   decimal.NewFromInt(3000),
			PaydayDay:       27,
			EmergencyTarget: decimal.NewFromInt(9000),
			WeightKg:        80,
			HeightCm:        180,
			Age:             30,
			Sex:             "M",
			ActivityLevel:   "moderate",
			BodyFatPercent:  &bodyFat,
			AvgDailySteps:   &steps,
			Preferences: models.Preferences{
				WeekendMultiplier: 1.5,
				MinViableSDS:      decimal.NewFromInt(10),
				StrategyMode:      "aggressive",
				EnableWindfall:    false,
			},
		}
		require.NoError(t, repo.Upsert(ctx, p))
		require.Equal(t, models.DefaultCurrency, p.Currency)

		got, err := repo.GetByUserID(ctx, 2001)
		require.NoError(t, err)
		require.True(t, got.LiquidBalance.Equal(p.LiquidBalance))
		require.Equal(t, 27, got.PaydayDay)
		require.Equal(t, "moderate", got.ActivityLevel)
		require.NotNil(t, got.BodyFatPercent)
		require.InDelta(t, 18.5, *got.BodyFatPercent, 1e-9)
		require.NotNil(t, got.AvgDailySteps)
		require.Equal(t, 9000, *got.AvgDailySteps)
		require.InDelta(t, 1.5, got.Preferences.WeekendMultiplier, 1e-9)
		require.True(t, got.Preferences.MinViableSDS.Equal(decimal.NewFromInt(10)))
		require.Equal(t, "aggressive", got.Preferences.StrategyMode)
		require.False(t, got.Preferences.EnableWindfall)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		p := &models.Profile{
			UserID:        2001,
			LiquidBalance: decimal.NewFromInt(50),
			PaydayDay:     1,
			Currency:      "USD",
			Preferences:   models.DefaultPreferences(),
		}
		require.NoError(t, repo.Upsert(ctx, p))

		got, err := repo.GetByUserID(ctx, 2001)
		require.NoError(t, err)
		require.Equal(t, 1, got.PaydayDay)
		require.Equal(t, "USD", got.Currency)
		require.Nil(t, got.BodyFatPercent)
		require.Nil(t, got.AvgDailySteps)
	})
}
