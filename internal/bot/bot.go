// Package bot wires the relay handlers into a telebot event loop.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/idempotency"
	"github.com/Proton-105/relay-bot/internal/middleware"
	"github.com/Proton-105/relay-bot/internal/platform"
	"github.com/Proton-105/relay-bot/internal/ratelimit"
	"github.com/Proton-105/relay-bot/pkg/config"
)

// messageEvents are the telebot endpoints routed through Router.Route.
var messageEvents = []string{
	telebot.OnText,
	telebot.OnMedia,
	telebot.OnSticker,
	telebot.OnLocation,
	telebot.OnVenue,
	telebot.OnContact,
	telebot.OnDice,
	telebot.OnPoll,
}

// Deps are the components the bot dispatches to.
type Deps struct {
	Settings   handlers.Settings
	Contact    handlers.Contact
	Greeter    handlers.Greeter
	Client     platform.Client
	ErrHandler *apperrors.Handler

	// Optional.
	Guard         idempotency.Guard
	Limiter       ratelimit.Limiter
	Rules         *ratelimit.Rules
	UpdateTimeout time.Duration
}

// Bot wraps telebot.Bot with the relay router.
type Bot struct {
	telebot *telebot.Bot
	botID   int64
	router  *Router
	log     *slog.Logger
}

// NewTelebot builds the telebot instance for polling or webhook mode.
func NewTelebot(cfg config.BotConfig) (*telebot.Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Token,
	}

	if cfg.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.Listen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	return tb, nil
}

// New registers every command and message handler on tb.
func New(tb *telebot.Bot, deps Deps, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}

	var botID int64
	if tb.Me != nil {
		botID = tb.Me.ID
	}

	b := &Bot{
		telebot: tb,
		botID:   botID,
		router:  NewRouter(log),
		log:     log,
	}

	b.setupRouter(deps)
	for _, event := range messageEvents {
		tb.Handle(event, b.router.Route)
	}

	return b
}

func (b *Bot) setupRouter(deps Deps) {
	b.router.Use(RecoveryMiddleware(b.log, deps.ErrHandler, deps.Client))
	b.router.Use(ContextMiddleware(deps.UpdateTimeout))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Idempotency(deps.Guard, b.botID, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.log, deps.ErrHandler, deps.Client))
	b.router.Use(middleware.RateLimit(deps.Limiter, deps.Rules, deps.Client, b.log))
	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.botID, deps.Greeter, b.log))
	b.router.RegisterCommand(CommandSetSettings, handlers.NewSetSettingsHandler(b.botID, deps.Settings, deps.Client))
	b.router.RegisterCommand(CommandSetContact, handlers.NewSetContactHandler(b.botID, deps.Contact, deps.Client))
	b.router.RegisterCommand(CommandStartSettings, handlers.NewStartSettingsHandler(b.botID, deps.Greeter, deps.Client, b.log))
	b.router.RegisterCommand(CommandBan, handlers.NewBanHandler(b.botID, deps.Contact, deps.Client))
	b.router.RegisterCommand(CommandUnban, handlers.NewUnbanHandler(b.botID, deps.Contact, deps.Client))
	b.router.RegisterCommand(CommandBanned, handlers.NewBannedHandler(b.botID, deps.Settings, deps.Contact, deps.Client))
	b.router.RegisterCommand(CommandStats, handlers.NewStatsHandler(b.botID, deps.Settings, deps.Contact, deps.Client))
	b.router.RegisterCommand(CommandUsers, handlers.NewUsersHandler(b.botID, deps.Settings, deps.Client))

	b.router.SetDefault(handlers.NewMessageHandler(b.botID, deps.Settings, deps.Contact, deps.Greeter, deps.Client, b.log))
}

// ID returns the bot's own user id, which scopes all stored state.
func (b *Bot) ID() int64 {
	return b.botID
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.log.Info("starting telegram bot", slog.Int64("bot_id", b.botID))
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}
