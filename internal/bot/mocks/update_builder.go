package mocks

import (
	"github.com/go-telegram/bot/models"
)

// UpdateBuilder helps construct test updates.
type UpdateBuilder struct {
	update *models.Update
}

// NewUpdateBuilder creates an empty UpdateBuilder.
func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{update: &models.Update{}}
}

// WithMessage sets a private-chat text message from a default test user.
func (b *UpdateBuilder) WithMessage(chatID, userID int64, text string) *UpdateBuilder {
	b.update.Message = &models.Message{
		ID:   1,
		Chat: models.Chat{ID: chatID, Type: "private"},
		From: &models.User{
			ID:        userID,
			FirstName: "Test",
			LastName:  "User",
			Username:  "testuser",
		},
		Text: text,
	}
	return b
}

// WithFrom replaces the sender of the message.
func (b *UpdateBuilder) WithFrom(userID int64, username, firstName, lastName string) *UpdateBuilder {
	if b.update.Message != nil {
		b.update.Message.From = &models.User{
			ID:        userID,
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
		}
	}
	return b
}

// WithoutSender removes the sender, as for channel posts.
func (b *UpdateBuilder) WithoutSender() *UpdateBuilder {
	if b.update.Message != nil {
		b.update.Message.From = nil
	}
	return b
}

// WithEditedMessage sets an edited message.
func (b *UpdateBuilder) WithEditedMessage(chatID, userID int64, text string) *UpdateBuilder {
	b.update.EditedMessage = &models.Message{
		ID:   1,
		Chat: models.Chat{ID: chatID, Type: "private"},
		From: &models.User{ID: userID, FirstName: "Test", Username: "testuser"},
		Text: text,
	}
	return b
}

// Build returns the constructed update.
func (b *UpdateBuilder) Build() *models.Update {
	return b.update
}

// CommandUpdate creates a private-chat message update, where chat and user share an id.
func CommandUpdate(userID int64, text string) *models.Update {
	return NewUpdateBuilder().WithMessage(userID, userID, text).Build()
}
