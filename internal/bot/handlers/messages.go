package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/platform"
)

// NewMessageHandler classifies non-command messages. Private messages go to
// the contact chat, messages in the greeting topic become the greeting, and
// messages in contact chat topics go back to their users.
func NewMessageHandler(botID int64, settings Settings, contact Contact, greeter Greeter, client platform.Client, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		ctx := Context(c)
		msg := c.Message()
		if msg == nil || msg.Chat == nil {
			return nil
		}

		if msg.Chat.Type == telebot.ChatPrivate {
			return contact.MessageToAdmin(ctx, botID, msg)
		}

		inSettings, err := settings.IsSettingsChatUpdate(ctx, botID, msg.Chat)
		if err != nil {
			return err
		}
		if inSettings && platform.IsTopicMessage(msg) {
			threadID, err := greeter.GetStartSettingsThreadID(ctx, botID)
			switch {
			case err == nil && threadID == msg.ThreadID:
				if err := greeter.SetGreeting(ctx, botID, msg); err != nil {
					return err
				}
				log.Info("greeting updated", slog.Int64("chat_id", msg.Chat.ID), slog.Int("message_id", msg.ID))
				return Reply(ctx, client, msg, "Greeting saved.")
			case err != nil && !apperrors.IsKind(err, apperrors.ErrNoStartSettings):
				return err
			}
		}

		return contact.MessageToUser(ctx, botID, msg)
	}
}
