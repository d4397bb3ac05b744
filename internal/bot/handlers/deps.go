package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/platform"
)

// Settings is the settings registry as seen by the handlers.
type Settings interface {
	SetSettingsChatID(ctx context.Context, botID int64, chat *platform.Chat, member *telebot.ChatMember) error
	IsSettingsChatUpdate(ctx context.Context, botID int64, chat *telebot.Chat) (bool, error)
	GetUsers(ctx context.Context, botID int64) ([]int64, error)
}

// Contact is the contact router as seen by the handlers.
type Contact interface {
	SetContactChatID(ctx context.Context, botID int64, chat *platform.Chat, member *telebot.ChatMember) error
	IsContactChatUpdate(ctx context.Context, botID int64, chat *telebot.Chat) (bool, error)
	MessageToAdmin(ctx context.Context, botID int64, msg *telebot.Message) error
	MessageToUser(ctx context.Context, botID int64, msg *telebot.Message) error
	BanUser(ctx context.Context, botID int64, msg *telebot.Message) (int64, error)
	UnbanUser(ctx context.Context, botID int64, msg *telebot.Message) (int64, error)
	BannedUsers(ctx context.Context, botID int64) ([]int64, error)
	AssignedTopicsCount(ctx context.Context, botID int64) (int, error)
}

// Greeter is the start flow as seen by the handlers.
type Greeter interface {
	Greet(ctx context.Context, botID int64, msg *telebot.Message) error
	SetGreeting(ctx context.Context, botID int64, msg *telebot.Message) error
	SetStartSettingsThreadID(ctx context.Context, botID int64, msg *telebot.Message) (int, error)
	GetStartSettingsThreadID(ctx context.Context, botID int64) (int, error)
}
