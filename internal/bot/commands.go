package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/report"
)

// command holds what every command handler needs from an update.
type command struct {
	chatID int64
	userID int64
	args   string
}

func parseCommand(update *tgmodels.Update, name string) (command, bool) {
	if update.Message == nil || update.Message.From == nil {
		return command{}, false
	}
	return command{
		chatID: update.Message.Chat.ID,
		userID: update.Message.From.ID,
		args:   extractCommandArgs(update.Message.Text, name),
	}, true
}

func (b *Bot) handleBudget(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleBudgetCore(ctx, tgBot, update)
}

func (b *Bot) handleBudgetCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/budget")
	if !ok {
		return
	}

	text, err := b.budgetMessage(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "compute your budget", err)
		return
	}
	b.reply(ctx, tg, cmd.chatID, text)
}

func (b *Bot) budgetMessage(ctx context.Context, userID int64) (string, error) {
	profile, err := b.coach.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	res, err := b.coach.Budget(ctx, userID)
	if err != nil {
		return "", err
	}
	return formatBudget(res, profile.Currency), nil
}

func (b *Bot) handleSpend(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleSpendCore(ctx, tgBot, update)
}

func (b *Bot) handleSpendCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/spend")
	if !ok {
		return
	}

	parsed, err := ParseSpendArgs(cmd.args)
	if err != nil {
		b.reply(ctx, tg, cmd.chatID, "❌ "+err.Error()+"\nUsage: <code>/spend 12.50 [USD] lunch #food</code>")
		return
	}

	l := &models.ActivityLog{
		UserID:      cmd.userID,
		Kind:        models.LogKindExpense,
		Amount:      parsed.Amount,
		Currency:    parsed.Currency,
		Category:    parsed.Category,
		Description: parsed.Description,
	}
	if err := b.coach.LogActivity(ctx, l); err != nil {
		b.replyError(ctx, tg, cmd.chatID, "save the expense", err)
		return
	}

	b.reply(ctx, tg, cmd.chatID, fmt.Sprintf("✅ Logged %s%s. /budget shows what is left.",
		formatMoney(l.Amount, l.Currency), describe(l.Description)))
}

func (b *Bot) handleEat(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleEatCore(ctx, tgBot, update)
}

func (b *Bot) handleEatCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/eat")
	if !ok {
		return
	}

	parsed, err := ParseEatArgs(cmd.args)
	if err != nil {
		b.reply(ctx, tg, cmd.chatID, "❌ "+err.Error()+"\nUsage: <code>/eat 650 pizza</code> or <code>/eat pizza margherita</code>")
		return
	}

	l := &models.ActivityLog{
		UserID:      cmd.userID,
		Kind:        models.LogKindFood,
		Calories:    parsed.Calories,
		Description: parsed.Description,
	}
	if err := b.coach.LogActivity(ctx, l); err != nil {
		b.replyError(ctx, tg, cmd.chatID, "save the meal", err)
		return
	}

	text := fmt.Sprintf("🍽 Logged %d kcal%s.", l.Calories, describe(l.Description))
	if parsed.Calories == 0 && l.Calories == 0 {
		text = "🍽 Logged the meal, but I couldn't estimate its calories. Send <code>/eat &lt;kcal&gt;</code> to fix it."
	}
	b.reply(ctx, tg, cmd.chatID, text)
}

func (b *Bot) handleVice(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleViceCore(ctx, tgBot, update)
}

func (b *Bot) handleViceCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/vice")
	if !ok {
		return
	}

	parsed, err := ParseViceArgs(cmd.args)
	if err != nil {
		b.reply(ctx, tg, cmd.chatID, "❌ "+err.Error()+"\nUsage: <code>/vice cigarette 3 1.50</code>")
		return
	}

	l := &models.ActivityLog{
		UserID:   cmd.userID,
		Kind:     models.LogKindViceConsumed,
		SubType:  parsed.Label,
		Quantity: parsed.Quantity,
		Amount:   parsed.Cost,
	}
	if err := b.coach.LogActivity(ctx, l); err != nil {
		b.replyError(ctx, tg, cmd.chatID, "save the vice", err)
		return
	}

	b.reply(ctx, tg, cmd.chatID, fmt.Sprintf("📝 Logged %d × %s. Honesty counts.", l.Quantity, escapeHTML(l.SubType)))
}

func (b *Bot) handleWorkout(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleWorkoutCore(ctx, tgBot, update)
}

func (b *Bot) handleWorkoutCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/workout")
	if !ok {
		return
	}

	parsed, err := ParseWorkoutArgs(cmd.args)
	if err != nil {
		b.reply(ctx, tg, cmd.chatID, "❌ "+err.Error()+"\nUsage: <code>/workout 300 running</code>")
		return
	}

	l := &models.ActivityLog{
		UserID:      cmd.userID,
		Kind:        models.LogKindWorkout,
		Calories:    parsed.Calories,
		Description: parsed.Description,
	}
	if err := b.coach.LogActivity(ctx, l); err != nil {
		b.replyError(ctx, tg, cmd.chatID, "save the workout", err)
		return
	}

	b.reply(ctx, tg, cmd.chatID, fmt.Sprintf("🏃 +%d kcal credited to today's budget%s.", l.Calories, describe(l.Description)))
}

func (b *Bot) handleBills(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleBillsCore(ctx, tgBot, update)
}

func (b *Bot) handleBillsCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/bills")
	if !ok {
		return
	}

	profile, err := b.coach.Profile(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "load your bills", err)
		return
	}
	expenses, err := b.coach.ListRecurringExpenses(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "load your bills", err)
		return
	}
	res, err := b.coach.Budget(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "load your bills", err)
		return
	}

	b.reply(ctx, tg, cmd.chatID, formatBills(expenses, res.Financial.PendingBillsBreakdown, profile.Currency))
}

func (b *Bot) handlePaid(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handlePaidCore(ctx, tgBot, update)
}

func (b *Bot) handlePaidCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/paid")
	if !ok {
		return
	}

	parsed, err := ParsePaidArgs(cmd.args)
	if err != nil {
		b.reply(ctx, tg, cmd.chatID, "❌ "+err.Error()+"\nUsage: <code>/paid 2</code> or <code>/paid 2 45.10</code>")
		return
	}

	expenses, err := b.coach.ListRecurringExpenses(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "load your bills", err)
		return
	}
	if parsed.Index > len(expenses) {
		b.reply(ctx, tg, cmd.chatID, fmt.Sprintf("❌ There is no bill %d. Check /bills.", parsed.Index))
		return
	}

	expense := expenses[parsed.Index-1]
	l, err := b.coach.PayBill(ctx, cmd.userID, expense.ID, parsed.Amount)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "record the payment", err)
		return
	}

	b.reply(ctx, tg, cmd.chatID, fmt.Sprintf("✅ %s paid: %s. It no longer counts as pending.",
		escapeHTML(expense.Name), formatMoney(l.Amount, l.Currency)))
}

func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/chart")
	if !ok {
		return
	}

	profile, err := b.coach.Profile(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "draw the chart", err)
		return
	}
	res, err := b.coach.Budget(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "draw the chart", err)
		return
	}

	fin := res.Financial
	png, err := report.BudgetChart(fin, profile.Currency)
	if err != nil {
		if errors.Is(err, report.ErrNothingToChart) {
			b.reply(ctx, tg, cmd.chatID, "📊 Nothing to chart yet for this cycle.")
			return
		}
		b.replyError(ctx, tg, cmd.chatID, "draw the chart", err)
		return
	}

	caption := fmt.Sprintf("📊 <b>Cycle %s → %s</b>\nToday: %s", fin.CycleStart, fin.NextPayday, formatMoney(fin.SDSToday, profile.Currency))
	b.sendDocument(ctx, tg, cmd.chatID, report.ChartFilename(fin.CycleStart), png, caption)
}

func (b *Bot) handleExport(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cmd, ok := parseCommand(update, "/export")
	if !ok {
		return
	}

	logs, cycle, err := b.coach.CycleLogs(ctx, cmd.userID)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "export your activity", err)
		return
	}
	data, err := report.LogsCSV(logs)
	if err != nil {
		b.replyError(ctx, tg, cmd.chatID, "export your activity", err)
		return
	}

	start := cycle.Start.Format(time.DateOnly)
	caption := fmt.Sprintf("📄 %d entries since %s", len(logs), start)
	b.sendDocument(ctx, tg, cmd.chatID, report.CSVFilename(start), data, caption)
}

func (b *Bot) sendDocument(ctx context.Context, tg TelegramAPI, chatID int64, filename string, data []byte, caption string) {
	_, err := tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &tgmodels.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:   caption,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("file", filename).Msg("Failed to send document")
		b.reply(ctx, tg, chatID, "❌ Failed to send the file. Please try again.")
		return
	}

	logger.Log.Info().Str("chat", logger.HashChatID(chatID)).Str("file", filename).Msg("Document sent")
}

func describe(description string) string {
	if description == "" {
		return ""
	}
	return " for " + escapeHTML(description)
}
