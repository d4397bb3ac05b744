// Package platformtest provides a testify mock of platform.Client.
package platformtest

import (
	"context"

	"github.com/stretchr/testify/mock"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/platform"
)

// Client is a mock platform.Client.
type Client struct {
	mock.Mock
}

func (m *Client) ChatByID(ctx context.Context, chatID int64) (*platform.Chat, error) {
	args := m.Called(ctx, chatID)
	chat, _ := args.Get(0).(*platform.Chat)
	return chat, args.Error(1)
}

func (m *Client) MemberOf(ctx context.Context, chatID, userID int64) (*telebot.ChatMember, error) {
	args := m.Called(ctx, chatID, userID)
	member, _ := args.Get(0).(*telebot.ChatMember)
	return member, args.Error(1)
}

func (m *Client) CreateTopic(ctx context.Context, chatID int64, name string) (int, error) {
	args := m.Called(ctx, chatID, name)
	return args.Int(0), args.Error(1)
}

func (m *Client) Copy(ctx context.Context, toChatID int64, threadID int, msg telebot.Editable) (*telebot.Message, error) {
	args := m.Called(ctx, toChatID, threadID, msg)
	out, _ := args.Get(0).(*telebot.Message)
	return out, args.Error(1)
}

func (m *Client) Send(ctx context.Context, toChatID int64, threadID int, text string) (*telebot.Message, error) {
	args := m.Called(ctx, toChatID, threadID, text)
	out, _ := args.Get(0).(*telebot.Message)
	return out, args.Error(1)
}

// ForumChat returns the chat of a supergroup as it appears on messages.
func ForumChat(id int64) *telebot.Chat {
	return &telebot.Chat{ID: id, Type: telebot.ChatSuperGroup, Title: "staff"}
}

// Forum returns getChat metadata of a supergroup with topics enabled.
func Forum(id int64) *platform.Chat {
	return &platform.Chat{Chat: ForumChat(id), IsForum: true}
}

// Supergroup returns getChat metadata of a supergroup without topics.
func Supergroup(id int64) *platform.Chat {
	return &platform.Chat{Chat: ForumChat(id)}
}

// TopicAdmin returns a bot membership allowed to manage topics.
func TopicAdmin() *telebot.ChatMember {
	member := &telebot.ChatMember{Role: telebot.Administrator}
	member.CanManageTopics = true
	return member
}

// PrivateChat returns the private chat of a user.
func PrivateChat(id int64, first, username string) *telebot.Chat {
	return &telebot.Chat{ID: id, Type: telebot.ChatPrivate, FirstName: first, Username: username}
}

// PrivateMessage returns a private text message from user id.
func PrivateMessage(userID int64, messageID int, text string) *telebot.Message {
	return &telebot.Message{
		ID:     messageID,
		Chat:   PrivateChat(userID, "Ann", "ann"),
		Sender: &telebot.User{ID: userID, FirstName: "Ann", Username: "ann"},
		Text:   text,
	}
}

// TopicMessage returns a message posted inside a forum topic of chatID.
func TopicMessage(chatID int64, threadID, messageID int, text string) *telebot.Message {
	return &telebot.Message{
		ID:           messageID,
		Chat:         ForumChat(chatID),
		Sender:       &telebot.User{ID: 500, FirstName: "Staff"},
		Text:         text,
		ThreadID:     threadID,
		TopicMessage: true,
	}
}
