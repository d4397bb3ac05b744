package middleware

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/bot/handlers"
	"github.com/Proton-105/relay-bot/internal/platform"
	"github.com/Proton-105/relay-bot/internal/ratelimit"
)

// RateLimit enforces the per-user limit on private messages. Staff chats are
// never limited.
func RateLimit(limiter ratelimit.Limiter, rules *ratelimit.Rules, client platform.Client, log *slog.Logger) handlers.Middleware {
	if limiter == nil || rules == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			msg := c.Message()
			if msg == nil || msg.Chat == nil || msg.Chat.Type != telebot.ChatPrivate || msg.Sender == nil {
				return next(c)
			}

			userID := msg.Sender.ID
			if rules.IsWhitelisted(userID) {
				return next(c)
			}

			ctx := handlers.Context(c)
			limit, window := rules.PerUser()
			result, err := limiter.Check(ctx, fmt.Sprintf("user:%d", userID), limit, window)
			if err != nil {
				log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
				return next(c)
			}

			if !result.Allowed {
				log.Warn("rate limit exceeded", slog.Int64("user_id", userID))
				return handlers.Reply(ctx, client, msg, "You are sending messages too fast. Please wait a moment.")
			}

			return next(c)
		}
	}
}
