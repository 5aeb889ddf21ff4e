// Package mocks provides a recording Telegram client for bot handler tests.
package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramAPI is the subset of the Telegram client the bot calls.
// It lives here so the bot and its tests share it without an import cycle.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
}

// SentMessage captures a message sent via MockBot.
type SentMessage struct {
	ChatID    any
	Text      string
	ParseMode models.ParseMode
}

// SentDocument captures a document sent via MockBot, including its bytes.
type SentDocument struct {
	ChatID    any
	Filename  string
	Caption   string
	ParseMode models.ParseMode
	Data      []byte
}

var _ TelegramAPI = (*MockBot)(nil)

// MockBot records outgoing Telegram calls. It is safe for concurrent use.
type MockBot struct {
	mu sync.RWMutex

	SentMessages  []SentMessage
	SentDocuments []SentDocument

	// SendMessageError makes SendMessage fail.
	SendMessageError error
	// SendDocumentError makes SendDocument fail.
	SendDocumentError error
	// FailChatIDs makes SendMessage fail for specific chats only.
	FailChatIDs map[int64]error

	NextMessageID int
}

// NewMockBot creates an empty MockBot.
func NewMockBot() *MockBot {
	return &MockBot{NextMessageID: 1000}
}

// SendMessage records a message.
func (m *MockBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendMessageError != nil {
		return nil, m.SendMessageError
	}
	chatID := chatIDToInt64(params.ChatID)
	if err := m.FailChatIDs[chatID]; err != nil {
		return nil, err
	}

	m.SentMessages = append(m.SentMessages, SentMessage{
		ChatID:    params.ChatID,
		Text:      params.Text,
		ParseMode: params.ParseMode,
	})

	msgID := m.NextMessageID
	m.NextMessageID++

	return &models.Message{ID: msgID, Chat: models.Chat{ID: chatID}, Text: params.Text}, nil
}

// SendDocument records a document upload.
func (m *MockBot) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendDocumentError != nil {
		return nil, m.SendDocumentError
	}

	var filename string
	var data []byte
	if upload, ok := params.Document.(*models.InputFileUpload); ok {
		filename = upload.Filename
		if upload.Data != nil {
			data, _ = io.ReadAll(upload.Data)
		}
	}

	m.SentDocuments = append(m.SentDocuments, SentDocument{
		ChatID:    params.ChatID,
		Filename:  filename,
		Caption:   params.Caption,
		ParseMode: params.ParseMode,
		Data:      data,
	})

	msgID := m.NextMessageID
	m.NextMessageID++

	return &models.Message{
		ID:       msgID,
		Chat:     models.Chat{ID: chatIDToInt64(params.ChatID)},
		Caption:  params.Caption,
		Document: &models.Document{FileID: "mock_file_id", FileName: filename},
	}, nil
}

// Reset clears recorded calls and injected errors.
func (m *MockBot) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentMessages = nil
	m.SentDocuments = nil
	m.SendMessageError = nil
	m.SendDocumentError = nil
	m.FailChatIDs = nil
}

// LastSentMessage returns the most recent message, or nil.
func (m *MockBot) LastSentMessage() *SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.SentMessages) == 0 {
		return nil
	}
	msg := m.SentMessages[len(m.SentMessages)-1]
	return &msg
}

// SentMessageCount returns the number of messages sent.
func (m *MockBot) SentMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentMessages)
}

// MessagesTo returns the texts sent to one chat, in order.
func (m *MockBot) MessagesTo(chatID int64) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var texts []string
	for _, msg := range m.SentMessages {
		if chatIDToInt64(msg.ChatID) == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

// SentDocumentCount returns the number of documents sent.
func (m *MockBot) SentDocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentDocuments)
}

// LastSentDocument returns the most recent document, or nil.
func (m *MockBot) LastSentDocument() *SentDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.SentDocuments) == 0 {
		return nil
	}
	doc := m.SentDocuments[len(m.SentDocuments)-1]
	return &doc
}

func chatIDToInt64(chatID any) int64 {
	switch v := chatID.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
