// Package contact routes private user messages into per-user topics of a
// staff "contact chat" and relays staff replies back to the users.
package contact

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/kv"
	"github.com/Proton-105/relay-bot/internal/platform"
)

const namespace = "contact"

func chatIDKey(botID int64) kv.Key { return kv.K(namespace, botID, "chat_id") }

func topicsPrefix(botID, contactChatID int64) kv.Key {
	return kv.K(namespace, botID, "topics", contactChatID)
}

func userTopicKey(botID, contactChatID, userChatID int64) kv.Key {
	return topicsPrefix(botID, contactChatID).Append("user", userChatID)
}

func topicUserKey(botID, contactChatID int64, topicID int) kv.Key {
	return topicsPrefix(botID, contactChatID).Append("topic", topicID)
}

func bannedPrefix(botID int64) kv.Key { return kv.K(namespace, botID, "banned") }

func bannedKey(botID, userChatID int64) kv.Key {
	return bannedPrefix(botID).Append(userChatID)
}

// Router owns the contact chat designation, the user/topic mapping and ban flags.
type Router struct {
	store  kv.Store
	client platform.Client
	locker Locker
	log    *slog.Logger
}

// New creates a Router. locker may be nil, in which case concurrent first
// messages from the same user are not serialized.
func New(store kv.Store, client platform.Client, locker Locker, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		store:  store,
		client: client,
		locker: locker,
		log:    log,
	}
}

// GetContactChatID returns the contact chat, or ErrNoContactChat when unset.
func (r *Router) GetContactChatID(ctx context.Context, botID int64) (int64, error) {
	var chatID int64
	found, err := r.store.Get(ctx, chatIDKey(botID), &chatID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperrors.ErrNoContactChat
	}

	return chatID, nil
}

// SetContactChatID designates chat as the contact chat after checking that
// it is a forum supergroup the bot can manage topics in.
func (r *Router) SetContactChatID(ctx context.Context, botID int64, chat *platform.Chat, member *telebot.ChatMember) error {
	if err := platform.CheckForumChat(chat, member); err != nil {
		return err
	}

	current, err := r.GetContactChatID(ctx, botID)
	switch {
	case err == nil:
		if current == chat.ID {
			return apperrors.ErrChatAlreadyContactChat
		}
	case apperrors.IsKind(err, apperrors.ErrNoContactChat):
	default:
		return err
	}

	if err := r.store.Set(ctx, chatIDKey(botID), chat.ID); err != nil {
		return err
	}

	r.log.Info("contact chat set", slog.Int64("bot_id", botID), slog.Int64("chat_id", chat.ID))
	return nil
}

// IsContactChatUpdate reports whether chat is the registered contact chat.
// An unset contact chat yields false.
func (r *Router) IsContactChatUpdate(ctx context.Context, botID int64, chat *telebot.Chat) (bool, error) {
	if !platform.IsSupergroup(chat) {
		return false, nil
	}

	chatID, err := r.GetContactChatID(ctx, botID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.ErrNoContactChat) {
			return false, nil
		}
		return false, err
	}

	return chat.ID == chatID, nil
}
