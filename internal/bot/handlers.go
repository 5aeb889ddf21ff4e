package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

const helpText = `<b>Money</b>
/budget - today's spendable amount and calorie budget
/spend &lt;amount&gt; [CUR] [description] [#category] - log an expense
/bills - recurring expenses and what is still pending
/paid &lt;n&gt; [amount] - mark bill n of /bills as paid

<b>Body</b>
/eat &lt;kcal | description&gt; - log food (I estimate calories from a description)
/workout &lt;kcal&gt; [description] - log burned calories
/vice &lt;label&gt; [quantity] [cost] - log a vice, e.g. <code>/vice cigarette 3 1.50</code>

<b>Reports</b>
/chart - pie chart of this pay cycle
/export - CSV of this cycle's activity`

func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I turn your balance, bills and habits into one number: how much you can spend today without hurting your future self. I also keep an eye on your calories.

<b>Quick Start:</b>
• <code>/budget</code> to see today's number
• <code>/spend 12.50 lunch #food</code> after you pay for something
• <code>/eat pasta carbonara</code> after a meal

Use /help to see all commands.`, formatGreeting(firstName))

	b.reply(ctx, tg, update.Message.Chat.ID, text)
}

func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.reply(ctx, tg, update.Message.Chat.ID, helpText)
}

// reply sends an HTML message and logs delivery failures.
func (b *Bot) reply(ctx context.Context, tg TelegramAPI, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("chat", logger.HashChatID(chatID)).Msg("Failed to send message")
	}
}

// replyError turns a service error into a user-facing message.
func (b *Bot) replyError(ctx context.Context, tg TelegramAPI, chatID int64, action string, err error) {
	var text string
	switch {
	case errors.Is(err, coach.ErrProfileNotFound):
		text = "❌ You don't have a profile yet. Set up your balance, income and payday first."
	case errors.Is(err, coach.ErrExpenseNotFound):
		text = "❌ That recurring expense no longer exists. Check /bills."
	case errors.Is(err, solvency.ErrInvalidInput):
		text = "❌ " + escapeHTML(err.Error())
	default:
		logger.Log.Error().Err(err).Str("chat", logger.HashChatID(chatID)).Str("action", action).Msg("Command failed")
		text = fmt.Sprintf("❌ Failed to %s. Please try again.", action)
	}
	b.reply(ctx, tg, chatID, text)
}
