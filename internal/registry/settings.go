// Package registry stores the per-bot settings chat and user list.
package registry

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/kv"
	"github.com/Proton-105/relay-bot/internal/platform"
)

const namespace = "settings"

func chatIDKey(botID int64) kv.Key { return kv.K(namespace, botID, "chat_id") }
func usersKey(botID int64) kv.Key  { return kv.K(namespace, botID, "users") }

// Registry manages the settings chat designation and the user list.
type Registry struct {
	store kv.Store
	log   *slog.Logger
}

// New creates a Registry on top of store.
func New(store kv.Store, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{store: store, log: log}
}

// GetSettingsChatID returns the settings chat, or ErrNoSettingsChat when unset.
func (r *Registry) GetSettingsChatID(ctx context.Context, botID int64) (int64, error) {
	var chatID int64
	found, err := r.store.Get(ctx, chatIDKey(botID), &chatID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperrors.ErrNoSettingsChat
	}

	return chatID, nil
}

// SetSettingsChatID designates chat as the settings chat after checking
// that it is a forum supergroup the bot can manage topics in.
func (r *Registry) SetSettingsChatID(ctx context.Context, botID int64, chat *platform.Chat, member *telebot.ChatMember) error {
	if err := platform.CheckForumChat(chat, member); err != nil {
		return err
	}

	current, err := r.GetSettingsChatID(ctx, botID)
	switch {
	case err == nil:
		if current == chat.ID {
			return apperrors.ErrChatAlreadySettingsChat
		}
	case apperrors.IsKind(err, apperrors.ErrNoSettingsChat):
	default:
		return err
	}

	if err := r.store.Set(ctx, chatIDKey(botID), chat.ID); err != nil {
		return err
	}

	r.log.Info("settings chat set", slog.Int64("bot_id", botID), slog.Int64("chat_id", chat.ID))
	return nil
}

// IsSettingsChatUpdate reports whether chat is the registered settings chat.
func (r *Registry) IsSettingsChatUpdate(ctx context.Context, botID int64, chat *telebot.Chat) (bool, error) {
	if !platform.IsSupergroup(chat) {
		return false, nil
	}

	chatID, err := r.GetSettingsChatID(ctx, botID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.ErrNoSettingsChat) {
			return false, nil
		}
		return false, err
	}

	return chat.ID == chatID, nil
}

// GetUsers returns the recorded users in insertion order.
func (r *Registry) GetUsers(ctx context.Context, botID int64) ([]int64, error) {
	var users []int64
	found, err := r.store.Get(ctx, usersKey(botID), &users)
	if err != nil {
		return nil, err
	}
	if !found || users == nil {
		return []int64{}, nil
	}

	return users, nil
}

// SetUsers replaces the user list. A settings chat must exist.
func (r *Registry) SetUsers(ctx context.Context, botID int64, users []int64) error {
	if _, err := r.GetSettingsChatID(ctx, botID); err != nil {
		return err
	}

	if users == nil {
		users = []int64{}
	}

	return r.store.Set(ctx, usersKey(botID), users)
}
