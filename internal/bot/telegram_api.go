package bot

import (
	tgbot "github.com/go-telegram/bot"
	"gitlab.com/yelinaung/leverage/internal/bot/mocks"
)

// TelegramAPI is the Telegram client surface used by handlers.
type TelegramAPI = mocks.TelegramAPI

var _ TelegramAPI = (*tgbot.Bot)(nil)
