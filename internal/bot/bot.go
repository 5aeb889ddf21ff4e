// Package bot provides the Telegram front end of the coaching service.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/config"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

// Coach is the part of coach.Service the bot uses.
type Coach interface {
	Today() time.Time
	Users(ctx context.Context) ([]models.User, error)
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
	Budget(ctx context.Context, userID int64) (solvency.SolvencyResult, error)
	LogActivity(ctx context.Context, l *models.ActivityLog) error
	ListRecurringExpenses(ctx context.Context, userID int64) ([]models.RecurringExpense, error)
	PayBill(ctx context.Context, userID int64, expenseID string, amount *decimal.Decimal) (*models.ActivityLog, error)
	CycleLogs(ctx context.Context, userID int64) ([]models.ActivityLog, solvency.PayCycle, error)
}

// UserStore registers Telegram users as they interact.
type UserStore interface {
	UpsertUser(ctx context.Context, user *models.User) error
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot   *bot.Bot
	cfg   *config.Config
	coach Coach
	users UserStore

	// messageSender delivers scheduled messages; the polling bot in production.
	messageSender TelegramAPI
	scheduler     *cron.Cron

	mu       sync.Mutex
	reminded map[int64]string
}

// New creates a Bot connected to Telegram.
func New(cfg *config.Config, c Coach, users UserStore) (*Bot, error) {
	b := newBot(cfg, c, users)

	opts := []bot.Option{
		bot.WithMiddlewares(b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot
	b.registerHandlers()

	return b, nil
}

func newBot(cfg *config.Config, c Coach, users UserStore) *Bot {
	return &Bot{
		cfg:      cfg,
		coach:    c,
		users:    users,
		reminded: make(map[int64]string),
	}
}

// Start schedules the daily budget push and polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	if err := b.startDailyBudget(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to schedule daily budget, continuing without it")
	}
	defer b.stopDailyBudget()

	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

func (b *Bot) registerHandlers() {
	commands := []struct {
		name    string
		handler bot.HandlerFunc
	}{
		{"/start", b.handleStart},
		{"/help", b.handleHelp},
		{"/budget", b.handleBudget},
		{"/spend", b.handleSpend},
		{"/eat", b.handleEat},
		{"/vice", b.handleVice},
		{"/workout", b.handleWorkout},
		{"/bills", b.handleBills},
		{"/paid", b.handlePaid},
		{"/chart", b.handleChart},
		{"/export", b.handleExport},
	}
	for _, c := range commands {
		b.bot.RegisterHandler(bot.HandlerTypeMessageText, c.name, bot.MatchTypePrefix, c.handler)
	}
}

// whitelistMiddleware drops updates from users who are not whitelisted.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		if !b.allow(ctx, tgBot, update) {
			return
		}
		next(ctx, tgBot, update)
	}
}

// allow reports whether an update may be handled, telling blocked users why.
func (b *Bot) allow(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) bool {
	userID := extractUserID(update)
	if userID == 0 {
		return false
	}

	username := extractUsername(update)
	logUserAction(userID, update)

	if !b.cfg.IsUserWhitelisted(userID, username) {
		logger.Log.Warn().
			Str("user", logger.HashUserID(userID)).
			Msg("Blocked non-whitelisted user")
		if update.Message != nil {
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "⛔ Sorry, you are not authorized to use this bot.",
			})
		}
		return false
	}

	if err := b.ensureUserRegistered(ctx, update); err != nil {
		logger.Log.Error().
			Str("user", logger.HashUserID(userID)).
			Err(err).
			Msg("Failed to register user")
	}
	return true
}

// logUserAction logs the shape of the input, never its text.
func logUserAction(userID int64, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		logger.Log.Info().
			Str("user", logger.HashUserID(userID)).
			Str("chat", logger.HashChatID(update.Message.Chat.ID)).
			Str("text", logger.SanitizeText(update.Message.Text)).
			Msg("User input")
	case update.EditedMessage != nil:
		logger.Log.Info().
			Str("user", logger.HashUserID(userID)).
			Msg("Edited message ignored")
	}
}

func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.Username
	}
	return ""
}

func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.ID
	}
	return 0
}

// ensureUserRegistered creates or updates the user record.
func (b *Bot) ensureUserRegistered(ctx context.Context, update *tgmodels.Update) error {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	from := update.Message.From
	user := &models.User{
		ID:        from.ID,
		Username:  from.Username,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}
	if err := b.users.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	b.reply(ctx, tg, update.Message.Chat.ID,
		"I didn't understand that. Use /help to see what I can do, or /budget to see today's budget.")
}
