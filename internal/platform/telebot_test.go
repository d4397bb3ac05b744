package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/relay-bot/internal/errors"
)

func TestDecodeChat_ForumFlag(t *testing.T) {
	testCases := []struct {
		name  string
		raw   string
		forum bool
	}{
		{name: "forum", raw: `{"id":-100,"type":"supergroup","title":"staff","is_forum":true}`, forum: true},
		{name: "topics disabled", raw: `{"id":-100,"type":"supergroup","title":"staff","is_forum":false}`, forum: false},
		{name: "flag absent", raw: `{"id":-100,"type":"supergroup","title":"staff"}`, forum: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			chat, err := DecodeChat([]byte(tc.raw))
			require.NoError(t, err)
			require.NotNil(t, chat.Chat)

			assert.Equal(t, int64(-100), chat.ID)
			assert.Equal(t, telebot.ChatSuperGroup, chat.Type)
			assert.Equal(t, "staff", chat.Title)
			assert.Equal(t, tc.forum, chat.IsForum)
		})
	}

	_, err := DecodeChat([]byte(`not json`))
	assert.Error(t, err)
}

func newRawBot(t *testing.T, result string) *telebot.Bot {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getChat", r.URL.Path)

		var params map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "-100", params["chat_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)

	tb, err := telebot.NewBot(telebot.Settings{Token: "test-token", URL: srv.URL, Offline: true})
	require.NoError(t, err)
	return tb
}

func TestTelebotClient_ChatByIDKeepsForumFlag(t *testing.T) {
	ctx := context.Background()
	member := &telebot.ChatMember{Role: telebot.Creator}

	forum, err := NewTelebotClient(newRawBot(t, `{"id":-100,"type":"supergroup","is_forum":true}`)).ChatByID(ctx, -100)
	require.NoError(t, err)
	assert.True(t, forum.IsForum)
	assert.NoError(t, CheckForumChat(forum, member))

	plain, err := NewTelebotClient(newRawBot(t, `{"id":-100,"type":"supergroup","is_forum":false}`)).ChatByID(ctx, -100)
	require.NoError(t, err)
	assert.False(t, plain.IsForum)
	assert.ErrorIs(t, CheckForumChat(plain, member), apperrors.ErrTopicsNotEnabled)
}

func TestTelebotClient_ChatByIDCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTelebotClient(nil).ChatByID(ctx, -100)
	assert.ErrorIs(t, err, context.Canceled)
}
