// Package platform wraps the messaging platform API the handlers call.
package platform

import (
	"context"

	telebot "gopkg.in/telebot.v3"
)

// Chat is chat metadata from getChat. telebot.v3 does not decode the
// is_forum flag, so it is carried next to the telebot chat.
type Chat struct {
	*telebot.Chat
	IsForum bool
}

// Client is the set of platform calls the handlers depend on.
type Client interface {
	// ChatByID returns chat metadata, including the forum flag.
	ChatByID(ctx context.Context, chatID int64) (*Chat, error)
	// MemberOf returns the membership of userID in chatID.
	MemberOf(ctx context.Context, chatID, userID int64) (*telebot.ChatMember, error)
	// CreateTopic creates a forum topic and returns its thread id.
	CreateTopic(ctx context.Context, chatID int64, name string) (int, error)
	// Copy copies msg into toChatID, inside threadID when it is non-zero.
	Copy(ctx context.Context, toChatID int64, threadID int, msg telebot.Editable) (*telebot.Message, error)
	// Send sends a text message into toChatID, inside threadID when it is non-zero.
	Send(ctx context.Context, toChatID int64, threadID int, text string) (*telebot.Message, error)
}
