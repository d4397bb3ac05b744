package contact

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/platform"
	"github.com/Proton-105/relay-bot/pkg/metrics"
)

// MessageToAdmin copies a private user message into that user's topic of the
// contact chat, creating the topic on first contact. Non-private messages and
// messages from banned users are ignored. ErrNoContactChat is returned when
// no contact chat has been designated yet.
func (r *Router) MessageToAdmin(ctx context.Context, botID int64, msg *telebot.Message) error {
	if msg == nil || msg.Chat == nil || msg.Chat.Type != telebot.ChatPrivate {
		return nil
	}
	if msg.Sender != nil && msg.Sender.IsBot {
		return nil
	}
	userChatID := msg.Chat.ID

	banned, err := r.IsUserBanned(ctx, botID, userChatID)
	if err != nil {
		return err
	}
	if banned {
		r.log.Debug("dropping message from banned user", slog.Int64("bot_id", botID), slog.Int64("user_chat_id", userChatID))
		return nil
	}

	contactChatID, err := r.GetContactChatID(ctx, botID)
	if err != nil {
		return err
	}

	topicID, err := r.ResolveTopicForUser(ctx, botID, contactChatID, msg.Chat)
	if err != nil {
		return err
	}

	if _, err := r.client.Copy(ctx, contactChatID, topicID, msg); err != nil {
		r.log.Error("failed to copy message to contact topic",
			slog.Int64("bot_id", botID),
			slog.Int64("user_chat_id", userChatID),
			slog.Int("topic_id", topicID),
			slog.Any("error", err),
		)
		return err
	}

	metrics.RecordRelay(metrics.DirectionToAdmin)
	return nil
}

// MessageToUser copies a staff message posted in a contact chat topic to the
// user owning the topic. Messages outside the contact chat, outside topics,
// or sent before any contact chat exists are ignored; a topic without an
// owner yields ErrNoTopicUser.
func (r *Router) MessageToUser(ctx context.Context, botID int64, msg *telebot.Message) error {
	if !platform.IsTopicMessage(msg) {
		return nil
	}

	isContact, err := r.IsContactChatUpdate(ctx, botID, msg.Chat)
	if err != nil || !isContact {
		return err
	}

	userChatID, err := r.ResolveUserForTopic(ctx, botID, msg.Chat.ID, msg.ThreadID)
	if err != nil {
		return err
	}

	if _, err := r.client.Copy(ctx, userChatID, 0, msg); err != nil {
		r.log.Error("failed to copy message to user",
			slog.Int64("bot_id", botID),
			slog.Int64("user_chat_id", userChatID),
			slog.Int("topic_id", msg.ThreadID),
			slog.Any("error", err),
		)
		return err
	}

	metrics.RecordRelay(metrics.DirectionToUser)
	return nil
}
