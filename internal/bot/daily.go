package bot

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/robfig/cron/v3"
	"gitlab.com/yelinaung/leverage/internal/logger"
)

// DailyBudgetTimeout bounds a single run of the daily budget push.
const DailyBudgetTimeout = 2 * time.Minute

// dailySchedule is the cron schedule for the configured hour.
func dailySchedule(hour int) string {
	return fmt.Sprintf("0 %d * * *", hour)
}

// startDailyBudget schedules the morning budget message. It is a no-op when
// the push is disabled.
func (b *Bot) startDailyBudget(ctx context.Context) error {
	if !b.cfg.DailyBudgetEnabled {
		logger.Log.Info().Msg("Daily budget push is disabled")
		return nil
	}

	loc := b.cfg.Location()
	b.scheduler = cron.New(cron.WithLocation(loc), cron.WithLogger(cronLogger{}))
	if _, err := b.scheduler.AddJob(dailySchedule(b.cfg.BudgetHour), b.dailyJob(ctx, loc)); err != nil {
		return fmt.Errorf("failed to schedule daily budget: %w", err)
	}
	b.scheduler.Start()

	logger.Log.Info().
		Int("hour", b.cfg.BudgetHour).
		Str("timezone", loc.String()).
		Msg("Daily budget push scheduled")
	return nil
}

// dailyJob wraps the push so a panic is logged instead of killing the
// process, and a slow run is never overlapped by the next one.
func (b *Bot) dailyJob(ctx context.Context, loc *time.Location) cron.Job {
	return cron.NewChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	).Then(cron.FuncJob(func() {
		b.sendDailyBudgets(ctx, time.Now().In(loc))
	}))
}

func (b *Bot) stopDailyBudget() {
	if b.scheduler == nil {
		return
	}
	<-b.scheduler.Stop().Done()
	logger.Log.Info().Msg("Daily budget push stopped")
}

// sendDailyBudgets sends today's budget to every user with a profile who
// has not received it yet today.
func (b *Bot) sendDailyBudgets(ctx context.Context, now time.Time) {
	runCtx, cancel := context.WithTimeout(ctx, DailyBudgetTimeout)
	defer cancel()

	todayStr := now.Format(time.DateOnly)

	b.mu.Lock()
	// Prune entries from previous days so the map doesn't grow unbounded.
	for uid, dateStr := range b.reminded {
		if dateStr != todayStr {
			delete(b.reminded, uid)
		}
	}
	b.mu.Unlock()

	users, err := b.coach.Users(runCtx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch users for daily budget")
		return
	}

	sent := 0
	for _, user := range users {
		if b.remindedOn(user.ID) == todayStr {
			continue
		}
		if !b.cfg.IsUserWhitelisted(user.ID, user.Username) {
			continue
		}

		text, err := b.budgetMessage(runCtx, user.ID)
		if err != nil {
			logger.Log.Warn().Err(err).Str("user", logger.HashUserID(user.ID)).Msg("Skipping daily budget")
			continue
		}

		greeting := "Good morning"
		if user.FirstName != "" {
			greeting += ", " + escapeHTML(user.FirstName)
		}
		if err := b.sendHTML(runCtx, user.ID, greeting+"! ☀️\n\n"+text); err != nil {
			logger.Log.Warn().Err(err).Str("user", logger.HashUserID(user.ID)).Msg("Failed to send daily budget")
			continue
		}

		b.mu.Lock()
		b.reminded[user.ID] = todayStr
		b.mu.Unlock()
		sent++
	}

	logger.Log.Info().Int("sent", sent).Str("date", todayStr).Msg("Daily budget push finished")
}

func (b *Bot) remindedOn(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reminded[userID]
}

func (b *Bot) sendHTML(ctx context.Context, chatID int64, text string) error {
	_, err := b.messageSender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	return err
}

// cronLogger routes scheduler events to the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
