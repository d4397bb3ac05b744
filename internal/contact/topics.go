package contact

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/kv"
	"github.com/Proton-105/relay-bot/pkg/metrics"
)

// maxTopicName is the platform limit on forum topic names, in characters.
const maxTopicName = 128

// ResolveTopicForUser returns the topic assigned to user inside the contact
// chat, creating and recording one on first contact. Both directions of the
// mapping are written; a failure of the second write is not rolled back.
func (r *Router) ResolveTopicForUser(ctx context.Context, botID, contactChatID int64, user *telebot.Chat) (int, error) {
	topicID, found, err := r.lookupTopic(ctx, botID, contactChatID, user.ID)
	if err != nil || found {
		return topicID, err
	}

	if r.locker != nil {
		release, err := r.locker.Lock(ctx, userTopicKey(botID, contactChatID, user.ID).String())
		if err != nil {
			return 0, err
		}
		defer release()

		// Another update may have created the topic while we waited.
		topicID, found, err = r.lookupTopic(ctx, botID, contactChatID, user.ID)
		if err != nil || found {
			return topicID, err
		}
	}

	topicID, err = r.client.CreateTopic(ctx, contactChatID, TopicName(user))
	if err != nil {
		r.log.Error("failed to create contact topic",
			slog.Int64("bot_id", botID),
			slog.Int64("chat_id", contactChatID),
			slog.Int64("user_chat_id", user.ID),
			slog.Any("error", err),
		)
		return 0, err
	}

	if err := r.store.Set(ctx, userTopicKey(botID, contactChatID, user.ID), topicID); err != nil {
		return 0, err
	}
	if err := r.store.Set(ctx, topicUserKey(botID, contactChatID, topicID), user.ID); err != nil {
		return 0, err
	}

	metrics.RecordTopicCreated()
	r.log.Info("contact topic created",
		slog.Int64("bot_id", botID),
		slog.Int64("chat_id", contactChatID),
		slog.Int64("user_chat_id", user.ID),
		slog.Int("topic_id", topicID),
	)

	return topicID, nil
}

// ResolveUserForTopic returns the user owning topicID, or ErrNoTopicUser for
// topics this router did not create.
func (r *Router) ResolveUserForTopic(ctx context.Context, botID, contactChatID int64, topicID int) (int64, error) {
	var userChatID int64
	found, err := r.store.Get(ctx, topicUserKey(botID, contactChatID, topicID), &userChatID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperrors.Wrap(apperrors.ErrNoTopicUser, "topic %d in chat %d", topicID, contactChatID)
	}

	return userChatID, nil
}

// AssignedTopicsCount counts the users holding a topic in the current contact chat.
func (r *Router) AssignedTopicsCount(ctx context.Context, botID int64) (int, error) {
	contactChatID, err := r.GetContactChatID(ctx, botID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.ErrNoContactChat) {
			return 0, nil
		}
		return 0, err
	}

	it := r.store.Scan(ctx, topicsPrefix(botID, contactChatID).Append("user"))
	count := 0
	for it.Next() {
		count++
	}

	return count, it.Err()
}

func (r *Router) lookupTopic(ctx context.Context, botID, contactChatID, userChatID int64) (int, bool, error) {
	var topicID int
	found, err := r.store.Get(ctx, userTopicKey(botID, contactChatID, userChatID), &topicID)
	if err != nil {
		return 0, false, err
	}
	return topicID, found, nil
}

// TopicName labels a user's topic as "First Last (@username)", falling back to the chat id.
func TopicName(user *telebot.Chat) string {
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if user.Username != "" {
		if name == "" {
			name = "@" + user.Username
		} else {
			name += " (@" + user.Username + ")"
		}
	}
	if name == "" {
		name = strconv.FormatInt(user.ID, 10)
	}

	if utf8.RuneCountInString(name) > maxTopicName {
		name = string([]rune(name)[:maxTopicName])
	}

	return name
}

func sortedIDs(it *kv.Iterator) ([]int64, error) {
	ids := make([]int64, 0)
	for it.Next() {
		id, err := kv.LastInt(it.Key())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}
