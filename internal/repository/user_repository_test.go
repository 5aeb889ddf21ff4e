package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/models"
)

func TestUserRepository_UpsertUser(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	repo := NewUserRepository(tx)

	t.Run("creates new user", func(t *testing.T) {
		user := &models.User{ID: 12345, Username: "testuser", FirstName: "Test", LastName: "User"}
		require.NoError(t, repo.UpsertUser(ctx, user))
		require.False(t, user.CreatedAt.IsZero())

		fetched, err := repo.GetUserByID(ctx, 12345)
		require.NoError(t, err)
		require.Equal(t, "testuser", fetched.Username)
		require.Equal(t, "Test", fetched.FirstName)
		require.Equal(t, "User", fetched.LastName)
	})

	t.Run("updates existing user", func(t *testing.T) {
		user := &models.User{ID: 12345, Username: "updateduser", FirstName: "Updated", LastName: "Name"}
		require.NoError(t, repo.UpsertUser(ctx, user))

		fetched, err := repo.GetUserByID(ctx, 12345)
		require.NoError(t, err)
		require.Equal(t, "updateduser", fetched.Username)
		require.Equal(t, "Updated", fetched.FirstName)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.GetUserByID(ctx, 99999)
		require.Error(t, err)
	})
}

func TestUserRepository_ListUsers(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	users := NewUserRepository(tx)
	profiles := NewProfileRepository(tx)

	t.Run("returns empty when no profiles exist", func(t *testing.T) {
		require.NoError(t, users.UpsertUser(ctx, &models.User{ID: 1000, Username: "ghost"}))

		list, err := users.ListUsers(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("returns users with profiles", func(t *testing.T) {
		for _, id := range []int64{1002, 1001} {
			require.NoError(t, users.UpsertUser(ctx, &models.User{ID: id}))
			require.NoError(t, profiles.Upsert(ctx, &models.Profile{
				UserID:        id,
				PaydayDay:     27,
				MonthlyIncome: decimal.NewFromInt(3000),
				Preferences:   models.DefaultPreferences(),
			}))
		}

		list, err := users.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, int64(1001), list[0].ID)
		require.Equal(t, int64(1002), list[1].ID)
	})
}
