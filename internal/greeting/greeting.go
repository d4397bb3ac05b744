// Package greeting answers /start and manages the configurable greeting.
package greeting

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/kv"
	"github.com/Proton-105/relay-bot/internal/platform"
)

// DefaultGreeting is sent when no greeting message has been configured.
const DefaultGreeting = "Hello! Send your message here and our team will reply as soon as possible."

const namespace = "start"

func greetingKey(botID int64) kv.Key { return kv.K(namespace, botID, "greeting") }

func threadIDKey(botID int64) kv.Key { return kv.K(namespace, botID, "settings_thread_id") }

// Greeting references the message copied to users on /start.
type Greeting struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// Settings is the part of the settings registry the handler relies on.
type Settings interface {
	GetSettingsChatID(ctx context.Context, botID int64) (int64, error)
	GetUsers(ctx context.Context, botID int64) ([]int64, error)
	SetUsers(ctx context.Context, botID int64, users []int64) error
}

// Handler implements the start flow.
type Handler struct {
	store       kv.Store
	settings    Settings
	client      platform.Client
	defaultText string
	log         *slog.Logger
}

// New creates a Handler. An empty defaultText selects DefaultGreeting.
func New(store kv.Store, settings Settings, client platform.Client, defaultText string, log *slog.Logger) *Handler {
	if defaultText == "" {
		defaultText = DefaultGreeting
	}
	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		store:       store,
		settings:    settings,
		client:      client,
		defaultText: defaultText,
		log:         log,
	}
}

// GetGreeting returns the configured greeting, or ErrNoGreetingSet.
func (h *Handler) GetGreeting(ctx context.Context, botID int64) (Greeting, error) {
	var g Greeting
	found, err := h.store.Get(ctx, greetingKey(botID), &g)
	if err != nil {
		return Greeting{}, err
	}
	if !found {
		return Greeting{}, apperrors.ErrNoGreetingSet
	}

	return g, nil
}

// SetGreeting stores msg as the greeting. msg must be posted in the start
// settings topic of the settings chat.
func (h *Handler) SetGreeting(ctx context.Context, botID int64, msg *telebot.Message) error {
	if msg == nil {
		return apperrors.ErrNoMessage
	}
	if err := h.checkSettingsChat(ctx, botID, msg.Chat); err != nil {
		return err
	}

	threadID, err := h.GetStartSettingsThreadID(ctx, botID)
	if err != nil {
		return err
	}
	if !platform.IsTopicMessage(msg) || msg.ThreadID != threadID {
		return apperrors.ErrNotStartSettings
	}

	g := Greeting{ChatID: msg.Chat.ID, MessageID: msg.ID}
	if err := h.store.Set(ctx, greetingKey(botID), g); err != nil {
		return err
	}

	h.log.Info("greeting set", slog.Int64("bot_id", botID), slog.Int64("chat_id", g.ChatID), slog.Int("message_id", g.MessageID))
	return nil
}

// GetStartSettingsThreadID returns the greeting topic, or ErrNoStartSettings.
func (h *Handler) GetStartSettingsThreadID(ctx context.Context, botID int64) (int, error) {
	var threadID int
	found, err := h.store.Get(ctx, threadIDKey(botID), &threadID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperrors.ErrNoStartSettings
	}

	return threadID, nil
}

// SetStartSettingsThreadID makes the settings chat topic msg was posted in
// the greeting topic.
func (h *Handler) SetStartSettingsThreadID(ctx context.Context, botID int64, msg *telebot.Message) (int, error) {
	if msg == nil {
		return 0, apperrors.ErrNoMessage
	}
	if err := h.checkSettingsChat(ctx, botID, msg.Chat); err != nil {
		return 0, err
	}
	if !platform.IsTopicMessage(msg) {
		return 0, apperrors.ErrNotTopicMessage
	}

	if err := h.store.Set(ctx, threadIDKey(botID), msg.ThreadID); err != nil {
		return 0, err
	}

	h.log.Info("start settings topic set", slog.Int64("bot_id", botID), slog.Int("thread_id", msg.ThreadID))
	return msg.ThreadID, nil
}

// Greet replies to a private message with the greeting and records the user.
func (h *Handler) Greet(ctx context.Context, botID int64, msg *telebot.Message) error {
	if msg == nil || msg.Chat == nil || msg.Chat.Type != telebot.ChatPrivate {
		return nil
	}
	userChatID := msg.Chat.ID

	g, err := h.GetGreeting(ctx, botID)
	switch {
	case err == nil:
		_, err = h.client.Copy(ctx, userChatID, 0, platform.StoredMessage(g.ChatID, g.MessageID))
	case apperrors.IsKind(err, apperrors.ErrNoGreetingSet):
		_, err = h.client.Send(ctx, userChatID, 0, h.defaultText)
	}
	if err != nil {
		return err
	}

	users, err := h.settings.GetUsers(ctx, botID)
	if err != nil {
		return err
	}
	if !lo.Contains(users, userChatID) {
		users = append(users, userChatID)
		h.log.Debug("new user", slog.Int64("bot_id", botID), slog.Int64("user_chat_id", userChatID))
	}

	return h.settings.SetUsers(ctx, botID, users)
}

func (h *Handler) checkSettingsChat(ctx context.Context, botID int64, chat *telebot.Chat) error {
	settingsChatID, err := h.settings.GetSettingsChatID(ctx, botID)
	if err != nil {
		return err
	}
	if !platform.IsSupergroup(chat) || chat.ID != settingsChatID {
		return apperrors.ErrNotSettingsChat
	}

	return nil
}
