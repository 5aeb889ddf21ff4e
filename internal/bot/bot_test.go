package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/leverage/internal/bot/mocks"
)

func TestAllow(t *testing.T) {
	t.Parallel()

	t.Run("whitelisted user is registered", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{}
		b := newBot(testConfig(), &fakeCoach{}, users)
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().
			WithMessage(42, 42, "/budget").
			WithFrom(42, "ann", "Ann", "Lee").
			Build()
		require.True(t, b.allow(context.Background(), mockBot, update))
		require.Zero(t, mockBot.SentMessageCount())

		registered := users.upserted()
		require.Len(t, registered, 1)
		require.Equal(t, int64(42), registered[0].ID)
		require.Equal(t, "ann", registered[0].Username)
		require.Equal(t, "Ann", registered[0].FirstName)
		require.Equal(t, "Lee", registered[0].LastName)
	})

	t.Run("whitelisted by username", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.WhitelistedUsernames = []string{"carol"}
		b := newBot(cfg, &fakeCoach{}, &fakeUserStore{})

		update := mocks.NewUpdateBuilder().WithMessage(7, 7, "/help").WithFrom(7, "Carol", "Carol", "").Build()
		require.True(t, b.allow(context.Background(), mocks.NewMockBot(), update))
	})

	t.Run("blocked user is told", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{}
		b := newBot(testConfig(), &fakeCoach{}, users)
		mockBot := mocks.NewMockBot()

		require.False(t, b.allow(context.Background(), mockBot, mocks.CommandUpdate(999, "/budget")))
		require.Equal(t, "⛔ Sorry, you are not authorized to use this bot.", mockBot.LastSentMessage().Text)
		require.Empty(t, users.upserted())
	})

	t.Run("registration failure does not block", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{err: errors.New("db down")}
		b := newBot(testConfig(), &fakeCoach{}, users)

		require.True(t, b.allow(context.Background(), mocks.NewMockBot(), mocks.CommandUpdate(42, "/budget")))
	})

	t.Run("update without sender", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(&fakeCoach{})
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(1, 42, "hi").WithoutSender().Build()
		require.False(t, b.allow(context.Background(), mockBot, update))
		require.Zero(t, mockBot.SentMessageCount())
	})

	t.Run("edited message from whitelisted user", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{}
		b := newBot(testConfig(), &fakeCoach{}, users)

		update := mocks.NewUpdateBuilder().WithEditedMessage(43, 43, "/spend 5").Build()
		require.True(t, b.allow(context.Background(), mocks.NewMockBot(), update))
		require.Empty(t, users.upserted())
	})
}

func TestExtractUser(t *testing.T) {
	t.Parallel()

	msg := mocks.NewUpdateBuilder().WithMessage(1, 5, "x").WithFrom(5, "eve", "Eve", "").Build()
	require.Equal(t, int64(5), extractUserID(msg))
	require.Equal(t, "eve", extractUsername(msg))

	edited := mocks.NewUpdateBuilder().WithEditedMessage(1, 6, "x").Build()
	require.Equal(t, int64(6), extractUserID(edited))
	require.Equal(t, "testuser", extractUsername(edited))

	empty := &models.Update{}
	require.Zero(t, extractUserID(empty))
	require.Empty(t, extractUsername(empty))
}

func TestHandleStartCore(t *testing.T) {
	t.Parallel()

	b := newTestBot(&fakeCoach{})
	mockBot := mocks.NewMockBot()

	update := mocks.NewUpdateBuilder().WithMessage(42, 42, "/start").WithFrom(42, "ann", "Ann", "").Build()
	b.handleStartCore(context.Background(), mockBot, update)

	msg := mockBot.LastSentMessage()
	require.NotNil(t, msg)
	require.Contains(t, msg.Text, "👋 Welcome, Ann!")
	require.Contains(t, msg.Text, "/help")
	require.Equal(t, models.ParseModeHTML, msg.ParseMode)
}

func TestHandleHelpCore(t *testing.T) {
	t.Parallel()

	b := newTestBot(&fakeCoach{})
	mockBot := mocks.NewMockBot()

	b.handleHelpCore(context.Background(), mockBot, mocks.CommandUpdate(42, "/help"))

	text := mockBot.LastSentMessage().Text
	for _, cmd := range []string{"/budget", "/spend", "/bills", "/paid", "/eat", "/workout", "/vice", "/chart", "/export"} {
		require.Contains(t, text, cmd)
	}
}

func TestDefaultHandlerCore(t *testing.T) {
	t.Parallel()

	b := newTestBot(&fakeCoach{})
	mockBot := mocks.NewMockBot()

	b.defaultHandlerCore(context.Background(), mockBot, mocks.CommandUpdate(42, "hello?"))
	require.Contains(t, mockBot.LastSentMessage().Text, "I didn't understand that")

	b.defaultHandlerCore(context.Background(), mockBot, &models.Update{})
	require.Equal(t, 1, mockBot.SentMessageCount())
}

func TestReplyLogsSendFailure(t *testing.T) {
	t.Parallel()

	b := newTestBot(&fakeCoach{})
	mockBot := mocks.NewMockBot()
	mockBot.SendMessageError = errors.New("network")

	b.reply(context.Background(), mockBot, 42, "hi")
	require.Zero(t, mockBot.SentMessageCount())
}
