// Package handlers implements the bot commands and the message classifier.
package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/platform"
)

// Handler processes one update.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

const requestContextKey = "request_ctx"

// WithContext attaches the request context to the update.
func WithContext(c telebot.Context, ctx context.Context) {
	c.Set(requestContextKey, ctx)
}

// Context returns the request context attached by WithContext.
func Context(c telebot.Context) context.Context {
	if c != nil {
		if ctx, ok := c.Get(requestContextKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// Reply answers msg in its chat, inside the same topic when there is one.
func Reply(ctx context.Context, client platform.Client, msg *telebot.Message, text string) error {
	if msg == nil || msg.Chat == nil || text == "" {
		return nil
	}

	threadID := 0
	if platform.IsTopicMessage(msg) {
		threadID = msg.ThreadID
	}

	_, err := client.Send(ctx, msg.Chat.ID, threadID, text)
	return err
}
