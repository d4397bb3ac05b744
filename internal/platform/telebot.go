package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	telebot "gopkg.in/telebot.v3"
)

// TelebotClient implements Client on top of a telebot.Bot.
type TelebotClient struct {
	bot *telebot.Bot
}

// NewTelebotClient wraps bot.
func NewTelebotClient(bot *telebot.Bot) *TelebotClient {
	return &TelebotClient{bot: bot}
}

// ChatByID fetches chat metadata with a raw getChat call so the forum flag
// survives decoding.
func (c *TelebotClient) ChatByID(ctx context.Context, chatID int64) (*Chat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.bot.Raw("getChat", map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode getChat %d: %w", chatID, err)
	}

	return DecodeChat(resp.Result)
}

// DecodeChat decodes a getChat result.
func DecodeChat(raw []byte) (*Chat, error) {
	var chat telebot.Chat
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, fmt.Errorf("decode chat: %w", err)
	}

	var flags struct {
		IsForum bool `json:"is_forum"`
	}
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil, fmt.Errorf("decode chat flags: %w", err)
	}

	return &Chat{Chat: &chat, IsForum: flags.IsForum}, nil
}

// MemberOf fetches the membership of userID in chatID.
func (c *TelebotClient) MemberOf(ctx context.Context, chatID, userID int64) (*telebot.ChatMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.bot.ChatMemberOf(telebot.ChatID(chatID), telebot.ChatID(userID))
}

// CreateTopic creates a forum topic named name.
func (c *TelebotClient) CreateTopic(ctx context.Context, chatID int64, name string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	topic, err := c.bot.CreateTopic(&telebot.Chat{ID: chatID}, &telebot.Topic{Name: name})
	if err != nil {
		return 0, err
	}
	if topic == nil || topic.ThreadID == 0 {
		return 0, fmt.Errorf("create topic in %d: empty thread id", chatID)
	}

	return topic.ThreadID, nil
}

// Copy copies msg without a forward header.
func (c *TelebotClient) Copy(ctx context.Context, toChatID int64, threadID int, msg telebot.Editable) (*telebot.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.bot.Copy(telebot.ChatID(toChatID), msg, sendOptions(threadID))
}

// Send sends plain text.
func (c *TelebotClient) Send(ctx context.Context, toChatID int64, threadID int, text string) (*telebot.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.bot.Send(telebot.ChatID(toChatID), text, sendOptions(threadID))
}

func sendOptions(threadID int) *telebot.SendOptions {
	return &telebot.SendOptions{ThreadID: threadID}
}
