package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/bot/handlers"
	"github.com/Proton-105/relay-bot/internal/contact"
	apperrors "github.com/Proton-105/relay-bot/internal/errors"
	"github.com/Proton-105/relay-bot/internal/greeting"
	"github.com/Proton-105/relay-bot/internal/kv/kvtest"
	"github.com/Proton-105/relay-bot/internal/platform/platformtest"
	"github.com/Proton-105/relay-bot/internal/registry"
)

const contactChatID int64 = -100

func offlineBot(t *testing.T) *telebot.Bot {
	t.Helper()

	tb, err := telebot.NewBot(telebot.Settings{Offline: true})
	require.NoError(t, err)
	return tb
}

type fakeGuard struct {
	seen map[string]bool
}

func (g *fakeGuard) Claim(_ context.Context, key string) (bool, error) {
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

type harness struct {
	bot    *Bot
	client *platformtest.Client
	tb     *telebot.Bot
	update int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, _ := kvtest.NewStore(t)
	client := &platformtest.Client{}
	t.Cleanup(func() { client.AssertExpectations(t) })

	log := kvtest.Logger()
	reg := registry.New(store, log)
	router := contact.New(store, client, nil, log)
	greeter := greeting.New(store, reg, client, "", log)

	tb := offlineBot(t)
	b := New(tb, Deps{
		Settings:   reg,
		Contact:    router,
		Greeter:    greeter,
		Client:     client,
		ErrHandler: apperrors.NewHandler(log, false),
		Guard:      &fakeGuard{seen: map[string]bool{}},
	}, log)

	return &harness{bot: b, client: client, tb: tb}
}

func (h *harness) route(t *testing.T, msg *telebot.Message) {
	t.Helper()

	h.update++
	require.NoError(t, h.bot.router.Route(h.tb.NewContext(telebot.Update{ID: h.update, Message: msg})))
}

func groupMessage(text string) *telebot.Message {
	return &telebot.Message{
		ID:     1,
		Chat:   platformtest.ForumChat(contactChatID),
		Sender: &telebot.User{ID: 500, FirstName: "Staff"},
		Text:   text,
	}
}

func TestRouter_DispatchesCommandsAndMessages(t *testing.T) {
	tb := offlineBot(t)
	r := NewRouter(kvtest.Logger())

	var calls []string
	r.Use(func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			calls = append(calls, "outer")
			return next(c)
		}
	})
	r.Use(func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			calls = append(calls, "inner")
			return next(c)
		}
	})
	r.RegisterCommand(CommandBan, func(telebot.Context) error {
		calls = append(calls, "ban")
		return nil
	})
	r.SetDefault(func(telebot.Context) error {
		calls = append(calls, "default")
		return nil
	})

	testCases := []struct {
		text string
		want []string
	}{
		{text: "/ban", want: []string{"outer", "inner", "ban"}},
		{text: "/ban@relay_bot now", want: []string{"outer", "inner", "ban"}},
		{text: "/unknown", want: []string{"outer", "inner", "default"}},
		{text: "hello", want: []string{"outer", "inner", "default"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.text, func(t *testing.T) {
			calls = nil
			c := tb.NewContext(telebot.Update{ID: 1, Message: &telebot.Message{Text: tc.text}})
			require.NoError(t, r.Route(c))
			assert.Equal(t, tc.want, calls)
		})
	}

	calls = nil
	require.NoError(t, r.Route(tb.NewContext(telebot.Update{ID: 2})))
	assert.Empty(t, calls, "updates without a message are ignored")
}

func TestBot_RelayFlow(t *testing.T) {
	h := newHarness(t)

	// Before any contact chat exists the private message fails silently.
	h.route(t, platformtest.PrivateMessage(42, 1, "hello"))

	h.client.On("MemberOf", mock.Anything, contactChatID, int64(500)).Return(&telebot.ChatMember{Role: telebot.Creator}, nil).Once()
	h.client.On("ChatByID", mock.Anything, contactChatID).Return(platformtest.Forum(contactChatID), nil).Once()
	h.client.On("MemberOf", mock.Anything, contactChatID, h.bot.ID()).Return(platformtest.TopicAdmin(), nil).Once()
	h.client.On("Send", mock.Anything, contactChatID, 0, mock.MatchedBy(func(text string) bool {
		return strings.HasPrefix(text, "This chat")
	})).Return(&telebot.Message{}, nil).Once()
	h.route(t, groupMessage("/setcontact"))

	h.client.On("CreateTopic", mock.Anything, contactChatID, "Ann (@ann)").Return(7, nil).Once()
	h.client.On("Copy", mock.Anything, contactChatID, 7, mock.Anything).Return(&telebot.Message{}, nil).Once()
	h.route(t, platformtest.PrivateMessage(42, 2, "hello again"))

	reply := platformtest.TopicMessage(contactChatID, 7, 3, "hi Ann")
	h.client.On("Copy", mock.Anything, int64(42), 0, reply).Return(&telebot.Message{}, nil).Once()
	h.route(t, reply)

	h.client.On("Send", mock.Anything, contactChatID, 7, mock.MatchedBy(func(text string) bool {
		return strings.HasPrefix(text, "User 42 ")
	})).Return(&telebot.Message{}, nil).Once()
	h.route(t, platformtest.TopicMessage(contactChatID, 7, 4, "/ban"))

	// Banned: no Copy expected.
	h.route(t, platformtest.PrivateMessage(42, 5, "let me in"))
}

func TestBot_ErrorsAreRepliedInStaffChats(t *testing.T) {
	h := newHarness(t)

	h.client.On("Send", mock.Anything, contactChatID, 0, apperrors.ErrNotContactChat.UserMessage).Return(&telebot.Message{}, nil).Once()
	h.route(t, groupMessage("/ban"))
}

func TestBot_SetContactRejectsSupergroupWithoutTopics(t *testing.T) {
	h := newHarness(t)

	h.client.On("MemberOf", mock.Anything, contactChatID, int64(500)).Return(&telebot.ChatMember{Role: telebot.Creator}, nil).Once()
	h.client.On("ChatByID", mock.Anything, contactChatID).Return(platformtest.Supergroup(contactChatID), nil).Once()
	h.client.On("MemberOf", mock.Anything, contactChatID, h.bot.ID()).Return(platformtest.TopicAdmin(), nil).Once()
	h.client.On("Send", mock.Anything, contactChatID, 0, apperrors.ErrTopicsNotEnabled.UserMessage).Return(&telebot.Message{}, nil).Once()
	h.route(t, groupMessage("/setcontact"))

	// Still no contact chat: the next private message is not relayed.
	h.route(t, platformtest.PrivateMessage(42, 1, "hello"))
}

func TestBot_SkipsDuplicateUpdates(t *testing.T) {
	h := newHarness(t)

	upd := telebot.Update{ID: 77, Message: groupMessage("/ban")}
	h.client.On("Send", mock.Anything, contactChatID, 0, apperrors.ErrNotContactChat.UserMessage).Return(&telebot.Message{}, nil).Once()

	require.NoError(t, h.bot.router.Route(h.tb.NewContext(upd)))
	require.NoError(t, h.bot.router.Route(h.tb.NewContext(upd)))
}

func TestBot_PanicsAreRecovered(t *testing.T) {
	tb := offlineBot(t)
	r := NewRouter(kvtest.Logger())
	r.Use(RecoveryMiddleware(kvtest.Logger(), apperrors.NewHandler(kvtest.Logger(), false), nil))
	r.SetDefault(func(telebot.Context) error { panic("boom") })

	assert.NotPanics(t, func() {
		assert.NoError(t, r.Route(tb.NewContext(telebot.Update{ID: 1, Message: &telebot.Message{Text: "x"}})))
	})
}
