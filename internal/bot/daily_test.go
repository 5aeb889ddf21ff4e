package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/leverage/internal/bot/mocks"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

func TestDailySchedule(t *testing.T) {
	t.Parallel()
	require.Equal(t, "0 8 * * *", dailySchedule(8))
	require.Equal(t, "0 0 * * *", dailySchedule(0))
}

func dailyCoach() *fakeCoach {
	return &fakeCoach{
		users: func(context.Context) ([]models.User, error) {
			return []models.User{
				{ID: 42, FirstName: "Ann"},
				{ID: 43},
				{ID: 999, FirstName: "Stranger"},
			}, nil
		},
		budget: func(context.Context, int64) (solvency.SolvencyResult, error) { return sampleResult(), nil },
	}
}

func TestSendDailyBudgets(t *testing.T) {
	t.Parallel()

	morning := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("sends once per day to whitelisted users", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(dailyCoach())
		mockBot := mocks.NewMockBot()
		b.messageSender = mockBot

		b.sendDailyBudgets(context.Background(), morning)

		require.Equal(t, 2, mockBot.SentMessageCount())
		ann := mockBot.MessagesTo(42)
		require.Len(t, ann, 1)
		require.Contains(t, ann[0], "Good morning, Ann! ☀️")
		require.Contains(t, ann[0], "Today you can spend €31.30")
		require.Contains(t, mockBot.MessagesTo(43)[0], "Good morning! ☀️")
		require.Empty(t, mockBot.MessagesTo(999))

		b.sendDailyBudgets(context.Background(), morning.Add(time.Hour))
		require.Equal(t, 2, mockBot.SentMessageCount())
	})

	t.Run("sends again the next day", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(dailyCoach())
		mockBot := mocks.NewMockBot()
		b.messageSender = mockBot

		b.sendDailyBudgets(context.Background(), morning)
		b.sendDailyBudgets(context.Background(), morning.AddDate(0, 0, 1))

		require.Len(t, mockBot.MessagesTo(42), 2)
		require.Len(t, b.reminded, 2)
		require.Equal(t, "2024-03-11", b.reminded[42])
	})

	t.Run("skips users without a profile", func(t *testing.T) {
		t.Parallel()
		fc := dailyCoach()
		fc.profile = func(_ context.Context, userID int64) (*models.Profile, error) {
			if userID == 43 {
				return nil, coach.ErrProfileNotFound
			}
			return &models.Profile{UserID: userID, Currency: "EUR"}, nil
		}
		b := newTestBot(fc)
		mockBot := mocks.NewMockBot()
		b.messageSender = mockBot

		b.sendDailyBudgets(context.Background(), morning)

		require.Len(t, mockBot.MessagesTo(42), 1)
		require.Empty(t, mockBot.MessagesTo(43))
		require.NotContains(t, b.reminded, int64(43))
	})

	t.Run("failed delivery is retried on the next run", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(dailyCoach())
		mockBot := mocks.NewMockBot()
		mockBot.FailChatIDs = map[int64]error{43: errors.New("blocked by user")}
		b.messageSender = mockBot

		b.sendDailyBudgets(context.Background(), morning)
		require.Len(t, mockBot.MessagesTo(42), 1)
		require.NotContains(t, b.reminded, int64(43))

		mockBot.FailChatIDs = nil
		b.sendDailyBudgets(context.Background(), morning.Add(time.Minute))
		require.Len(t, mockBot.MessagesTo(42), 1)
		require.Len(t, mockBot.MessagesTo(43), 1)
	})

	t.Run("lock is free while fetching a budget", func(t *testing.T) {
		t.Parallel()
		fc := dailyCoach()
		b := newTestBot(fc)
		b.messageSender = mocks.NewMockBot()

		var blocked bool
		fc.budget = func(context.Context, int64) (solvency.SolvencyResult, error) {
			if b.mu.TryLock() {
				b.mu.Unlock()
			} else {
				blocked = true
			}
			return sampleResult(), nil
		}

		b.sendDailyBudgets(context.Background(), morning)
		require.False(t, blocked)
		require.Equal(t, "2024-03-10", b.reminded[42])
	})

	t.Run("user lookup failure sends nothing", func(t *testing.T) {
		t.Parallel()
		fc := dailyCoach()
		fc.users = func(context.Context) ([]models.User, error) { return nil, errors.New("db down") }
		b := newTestBot(fc)
		mockBot := mocks.NewMockBot()
		b.messageSender = mockBot

		b.sendDailyBudgets(context.Background(), morning)
		require.Zero(t, mockBot.SentMessageCount())
	})
}

func TestDailyJobRecoversFromPanic(t *testing.T) {
	t.Parallel()

	fc := dailyCoach()
	fc.budget = func(context.Context, int64) (solvency.SolvencyResult, error) {
		panic("decimal overflow")
	}
	b := newTestBot(fc)
	mockBot := mocks.NewMockBot()
	b.messageSender = mockBot

	require.NotPanics(t, func() {
		b.dailyJob(context.Background(), time.UTC).Run()
	})
	require.Zero(t, mockBot.SentMessageCount())
}

func TestStartDailyBudget(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(&fakeCoach{})
		require.NoError(t, b.startDailyBudget(context.Background()))
		require.Nil(t, b.scheduler)
		b.stopDailyBudget()
	})

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.DailyBudgetEnabled = true
		cfg.BudgetHour = 7
		b := newBot(cfg, &fakeCoach{}, &fakeUserStore{})

		require.NoError(t, b.startDailyBudget(context.Background()))
		require.NotNil(t, b.scheduler)

		entries := b.scheduler.Entries()
		require.Len(t, entries, 1)
		next := entries[0].Schedule.Next(time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC))
		require.True(t, next.Equal(time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)), "next run %s", next)

		b.stopDailyBudget()
	})
}
