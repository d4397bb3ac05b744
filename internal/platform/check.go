package platform

import (
	"strconv"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
)

// CheckForumChat verifies that chat can host per-user topics managed by the
// bot whose membership is member.
func CheckForumChat(chat *Chat, member *telebot.ChatMember) error {
	if chat == nil || !IsSupergroup(chat.Chat) {
		return apperrors.ErrChatNotSupergroup
	}
	if !chat.IsForum {
		return apperrors.ErrTopicsNotEnabled
	}
	if !CanManageTopics(member) {
		return apperrors.ErrCannotManageTopics
	}
	return nil
}

// CanManageTopics reports whether member may create and edit topics.
func CanManageTopics(member *telebot.ChatMember) bool {
	if member == nil {
		return false
	}

	switch member.Role {
	case telebot.Creator:
		return true
	case telebot.Administrator:
		return member.CanManageTopics
	default:
		return false
	}
}

// IsChatAdmin reports whether member administers the chat.
func IsChatAdmin(member *telebot.ChatMember) bool {
	return member != nil && (member.Role == telebot.Creator || member.Role == telebot.Administrator)
}

// IsSupergroup reports whether chat is a supergroup.
func IsSupergroup(chat *telebot.Chat) bool {
	return chat != nil && chat.Type == telebot.ChatSuperGroup
}

// IsTopicMessage reports whether msg was posted inside a forum topic.
func IsTopicMessage(msg *telebot.Message) bool {
	return msg != nil && msg.TopicMessage && msg.ThreadID != 0
}

// StoredMessage references a message by chat and id, for copying later.
func StoredMessage(chatID int64, messageID int) telebot.StoredMessage {
	return telebot.StoredMessage{ChatID: chatID, MessageID: strconv.Itoa(messageID)}
}
