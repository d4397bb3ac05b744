// Package middleware holds update and HTTP middlewares shared by the bot and
// its metrics server.
package middleware

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/bot/handlers"
	"github.com/Proton-105/relay-bot/internal/idempotency"
)

// Idempotency drops updates the guard has already seen. Guard failures let
// the update through.
func Idempotency(guard idempotency.Guard, botID int64, log *slog.Logger) handlers.Middleware {
	if guard == nil {
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
			updateID := c.Update().ID
			if updateID == 0 {
				return next(c)
			}

			key := idempotency.UpdateKey(botID, updateID)
			claimed, err := guard.Claim(handlers.Context(c), key)
			if err != nil {
				log.Warn("idempotency check failed", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}
			if !claimed {
				log.Debug("skipping duplicate update", slog.String("key", key))
				return nil
			}

			return next(c)
		}
	}
}
