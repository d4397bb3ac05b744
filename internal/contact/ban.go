package contact

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/platform"
)

// BanUser sets the ban flag of the user owning the topic msg was posted in,
// and returns that user's chat id.
func (r *Router) BanUser(ctx context.Context, botID int64, msg *telebot.Message) (int64, error) {
	userChatID, err := r.topicOwner(ctx, botID, msg)
	if err != nil {
		return 0, err
	}

	if err := r.store.Set(ctx, bannedKey(botID, userChatID), true); err != nil {
		return 0, err
	}

	r.log.Info("user banned", slog.Int64("bot_id", botID), slog.Int64("user_chat_id", userChatID))
	return userChatID, nil
}

// UnbanUser clears the ban flag of the user owning the topic msg was posted in.
func (r *Router) UnbanUser(ctx context.Context, botID int64, msg *telebot.Message) (int64, error) {
	userChatID, err := r.topicOwner(ctx, botID, msg)
	if err != nil {
		return 0, err
	}

	if err := r.store.Delete(ctx, bannedKey(botID, userChatID)); err != nil {
		return 0, err
	}

	r.log.Info("user unbanned", slog.Int64("bot_id", botID), slog.Int64("user_chat_id", userChatID))
	return userChatID, nil
}

// IsUserBanned reports whether the user's ban flag is set.
func (r *Router) IsUserBanned(ctx context.Context, botID, userChatID int64) (bool, error) {
	var banned bool
	found, err := r.store.Get(ctx, bannedKey(botID, userChatID), &banned)
	if err != nil {
		return false, err
	}

	return found && banned, nil
}

// BannedUsers lists banned user chat ids in ascending order.
func (r *Router) BannedUsers(ctx context.Context, botID int64) ([]int64, error) {
	return sortedIDs(r.store.Scan(ctx, bannedPrefix(botID)))
}

func (r *Router) topicOwner(ctx context.Context, botID int64, msg *telebot.Message) (int64, error) {
	if msg == nil {
		return 0, apperrors.ErrNoMessage
	}

	isContact, err := r.IsContactChatUpdate(ctx, botID, msg.Chat)
	if err != nil {
		return 0, err
	}
	if !isContact {
		return 0, apperrors.ErrNotContactChat
	}
	if !platform.IsTopicMessage(msg) {
		return 0, apperrors.ErrNotTopicMessage
	}

	return r.ResolveUserForTopic(ctx, botID, msg.Chat.ID, msg.ThreadID)
}
