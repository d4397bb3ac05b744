package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/platform"
)

// NewSetContactHandler returns the /setcontact command handler.
func NewSetContactHandler(botID int64, contact Contact, client platform.Client) Handler {
	return func(c telebot.Context) error {
		if err := designate(c, botID, client, contact.SetContactChatID); err != nil {
			return err
		}
		return Reply(Context(c), client, c.Message(), "This chat is now the contact chat. Each user will get a topic here.")
	}
}

// NewBanHandler returns the /ban command handler, used inside a user's topic.
func NewBanHandler(botID int64, contact Contact, client platform.Client) Handler {
	return func(c telebot.Context) error {
		ctx := Context(c)
		userChatID, err := contact.BanUser(ctx, botID, c.Message())
		if err != nil {
			return err
		}
		return Reply(ctx, client, c.Message(), fmt.Sprintf("User %d is banned. Their messages will no longer reach this chat.", userChatID))
	}
}

// NewUnbanHandler returns the /unban command handler, used inside a user's topic.
func NewUnbanHandler(botID int64, contact Contact, client platform.Client) Handler {
	return func(c telebot.Context) error {
		ctx := Context(c)
		userChatID, err := contact.UnbanUser(ctx, botID, c.Message())
		if err != nil {
			return err
		}
		return Reply(ctx, client, c.Message(), fmt.Sprintf("User %d is unbanned.", userChatID))
	}
}

// NewBannedHandler returns the /banned command handler. It works in the
// contact chat and in the settings chat.
func NewBannedHandler(botID int64, settings Settings, contact Contact, client platform.Client) Handler {
	return func(c telebot.Context) error {
		ctx := Context(c)
		msg := c.Message()

		inContact, err := contact.IsContactChatUpdate(ctx, botID, chatOf(msg))
		if err != nil {
			return err
		}
		if !inContact {
			inSettings, err := settings.IsSettingsChatUpdate(ctx, botID, chatOf(msg))
			if err != nil {
				return err
			}
			if !inSettings {
				return apperrors.ErrNotContactChat
			}
		}

		ids, err := contact.BannedUsers(ctx, botID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return Reply(ctx, client, msg, "No banned users.")
		}

		list := lo.Map(ids, func(id int64, _ int) string { return strconv.FormatInt(id, 10) })
		return Reply(ctx, client, msg, "Banned users:\n"+strings.Join(list, "\n"))
	}
}
