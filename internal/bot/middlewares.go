package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/middleware"
	"github.com/Proton-105/relay-bot/internal/platform"
	"github.com/Proton-105/relay-bot/pkg/logger"
)

const defaultUpdateTimeout = 30 * time.Second

// RecoveryMiddleware catches panics and reports them via the centralized handler.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler, client platform.Client) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					if errHandler == nil {
						err = nil
						return
					}

					ctx := handlers.Context(c)
					userMsg, _ := errHandler.Handle(ctx, apperrors.NewInternalError(fmt.Errorf("panic recovered: %v", r)))
					notify(ctx, log, client, c.Message(), userMsg)

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ContextMiddleware gives every update a bounded request context carrying a
// correlation id.
func ContextMiddleware(timeout time.Duration) handlers.Middleware {
	if timeout <= 0 {
		timeout = defaultUpdateTimeout
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			ctx, cancel := context.WithTimeout(logger.WithCorrelationID(context.Background(), ""), timeout)
			defer cancel()

			handlers.WithContext(c, ctx)
			return next(c)
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			attrs := updateAttrs(c)

			log.LogAttrs(handlers.Context(c), slog.LevelDebug, "handling update", attrs...)
			err := next(c)
			log.LogAttrs(handlers.Context(c), slog.LevelInfo, "handled update",
				append(attrs, slog.Duration("duration", time.Since(start)), slog.Any("error", err))...,
			)

			return err
		}
	}
}

// ErrorHandlingMiddleware reports handler failures and answers staff chats
// with the operator-facing message. Private chats never see error replies.
func ErrorHandlingMiddleware(log *slog.Logger, errHandler *apperrors.Handler, client platform.Client) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil || errHandler == nil {
				return err
			}

			ctx := handlers.Context(c)
			userMsg, _ := errHandler.Handle(ctx, err)
			notify(ctx, log, client, c.Message(), userMsg)

			return nil
		}
	}
}

func notify(ctx context.Context, log *slog.Logger, client platform.Client, msg *telebot.Message, text string) {
	if client == nil || msg == nil || msg.Chat == nil || msg.Chat.Type == telebot.ChatPrivate {
		return
	}

	if err := handlers.Reply(ctx, client, msg, text); err != nil {
		log.Error("failed to send error reply", slog.Int64("chat_id", msg.Chat.ID), slog.Any("error", err))
	}
}

func updateAttrs(c telebot.Context) []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("update_id", c.Update().ID),
		slog.String("handler", middleware.HandlerName(c)),
		slog.String("correlation_id", logger.CorrelationIDFromContext(handlers.Context(c))),
	}

	if msg := c.Message(); msg != nil {
		if msg.Chat != nil {
			attrs = append(attrs, slog.Int64("chat_id", msg.Chat.ID))
		}
		if msg.Sender != nil {
			attrs = append(attrs, slog.Int64("user_id", msg.Sender.ID))
		}
		if msg.ThreadID != 0 {
			attrs = append(attrs, slog.Int("topic_id", msg.ThreadID))
		}
	}

	return attrs
}
