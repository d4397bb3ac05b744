package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/bot/handlers"
	"github.com/Proton-105/relay-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordUpdate(HandlerName(c), status, time.Since(start))

		return err
	}
}

// HandlerName labels an update by its command, or "message" for anything
// else. Free text is never used as a label.
func HandlerName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cmd := CommandOf(c.Text()); cmd != "" {
		return cmd
	}

	return "message"
}

// CommandOf extracts "/cmd" from "/cmd@bot_name args", or "" when text is
// not a command.
func CommandOf(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	cmd, _, _ := strings.Cut(fields[0], "@")
	if cmd == "/" {
		return ""
	}

	return strings.ToLower(cmd)
}
