package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// NewStartHandler returns the /start command handler.
func NewStartHandler(botID int64, greeter Greeter, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		msg := c.Message()
		if msg == nil || msg.Sender == nil {
			log.Warn("start handler invoked without sender")
			return nil
		}

		return greeter.Greet(Context(c), botID, msg)
	}
}
