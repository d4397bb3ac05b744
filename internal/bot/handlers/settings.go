package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/platform"
)

// maxListedUsers bounds /users replies below the platform message size limit.
const maxListedUsers = 200

type designateFunc func(ctx context.Context, botID int64, chat *platform.Chat, member *telebot.ChatMember) error

// designate checks that the sender administers the chat, fetches the chat
// and the bot membership, and hands them to set.
func designate(c telebot.Context, botID int64, client platform.Client, set designateFunc) error {
	ctx := Context(c)
	msg := c.Message()
	if msg == nil || msg.Sender == nil || msg.Chat == nil {
		return apperrors.ErrNoMessage
	}
	if !platform.IsSupergroup(msg.Chat) {
		return apperrors.ErrChatNotSupergroup
	}

	sender, err := client.MemberOf(ctx, msg.Chat.ID, msg.Sender.ID)
	if err != nil {
		return err
	}
	if !platform.IsChatAdmin(sender) {
		return apperrors.ErrNotChatAdmin
	}

	chat, err := client.ChatByID(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	self, err := client.MemberOf(ctx, msg.Chat.ID, botID)
	if err != nil {
		return err
	}

	return set(ctx, botID, chat, self)
}

// NewSetSettingsHandler returns the /setsettings command handler.
func NewSetSettingsHandler(botID int64, settings Settings, client platform.Client) Handler {
	return func(c telebot.Context) error {
		if err := designate(c, botID, client, settings.SetSettingsChatID); err != nil {
			return err
		}
		return Reply(Context(c), client, c.Message(), "This chat is now the settings chat.")
	}
}

// NewStartSettingsHandler returns the /startsettings command handler.
func NewStartSettingsHandler(botID int64, greeter Greeter, client platform.Client, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		ctx := Context(c)
		threadID, err := greeter.SetStartSettingsThreadID(ctx, botID, c.Message())
		if err != nil {
			return err
		}

		log.Debug("greeting topic configured", slog.Int("thread_id", threadID))
		return Reply(ctx, client, c.Message(), "Greeting topic set. The next message posted here becomes the greeting.")
	}
}

// NewUsersHandler returns the /users command handler.
func NewUsersHandler(botID int64, settings Settings, client platform.Client) Handler {
	return func(c telebot.Context) error {
		ctx := Context(c)
		msg := c.Message()

		ok, err := settings.IsSettingsChatUpdate(ctx, botID, chatOf(msg))
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrNotSettingsChat
		}

		users, err := settings.GetUsers(ctx, botID)
		if err != nil {
			return err
		}

		return Reply(ctx, client, msg, formatUsers(users))
	}
}

// NewStatsHandler returns the /stats command handler.
func NewStatsHandler(botID int64, settings Settings, contact Contact, client platform.Client) Handler {
	return func(c telebot.Context) error {
		ctx := Context(c)
		msg := c.Message()

		ok, err := settings.IsSettingsChatUpdate(ctx, botID, chatOf(msg))
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrNotSettingsChat
		}

		users, err := settings.GetUsers(ctx, botID)
		if err != nil {
			return err
		}
		topics, err := contact.AssignedTopicsCount(ctx, botID)
		if err != nil {
			return err
		}
		banned, err := contact.BannedUsers(ctx, botID)
		if err != nil {
			return err
		}

		text := fmt.Sprintf("Users: %d\nTopics: %d\nBanned: %d", len(users), topics, len(banned))
		return Reply(ctx, client, msg, text)
	}
}

func formatUsers(users []int64) string {
	if len(users) == 0 {
		return "No users yet."
	}

	listed := users
	if len(listed) > maxListedUsers {
		listed = listed[:maxListedUsers]
	}

	ids := lo.Map(listed, func(id int64, _ int) string { return strconv.FormatInt(id, 10) })
	text := fmt.Sprintf("Users (%d):\n%s", len(users), strings.Join(ids, "\n"))
	if rest := len(users) - len(listed); rest > 0 {
		text += fmt.Sprintf("\n... and %d more", rest)
	}

	return text
}

func chatOf(msg *telebot.Message) *telebot.Chat {
	if msg == nil {
		return nil
	}
	return msg.Chat
}
