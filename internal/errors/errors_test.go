package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "same sentinel", err: ErrNoContactChat, target: ErrNoContactChat, want: true},
		{name: "wrapped with fmt", err: fmt.Errorf("message to admin: %w", ErrNoContactChat), target: ErrNoContactChat, want: true},
		{name: "annotated kind", err: Wrap(ErrNoTopicUser, "topic %d", 7), target: ErrNoTopicUser, want: true},
		{name: "different kind", err: ErrNoContactChat, target: ErrNoSettingsChat, want: false},
		{name: "same text different code", err: &AppError{Code: "X1", Message: "no contact chat"}, target: ErrNoContactChat, want: false},
		{name: "plain error", err: errors.New("no contact chat"), target: ErrNoContactChat, want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errors.Is(tc.err, tc.target))
		})
	}
}

func TestWrap_KeepsKindAndAddsDetail(t *testing.T) {
	err := Wrap(ErrNoTopicUser, "topic %d", 7)

	assert.Equal(t, "topic has no user: topic 7", err.Error())
	assert.Equal(t, ErrNoTopicUser.Code, err.Code)
	assert.Equal(t, ErrNoTopicUser.UserMessage, err.UserMessage)
	assert.Equal(t, "topic has no user", ErrNoTopicUser.Message, "sentinel must stay untouched")
}

func TestHandler_Handle(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	ctx := context.Background()

	msg, class := h.Handle(ctx, nil)
	assert.Empty(t, msg)
	assert.Empty(t, class)

	msg, class = h.Handle(ctx, fmt.Errorf("designate: %w", ErrTopicsNotEnabled))
	assert.Equal(t, ErrTopicsNotEnabled.UserMessage, msg)
	assert.Equal(t, ClassValidation, class)

	msg, class = h.Handle(ctx, ErrNoMessage)
	assert.Empty(t, msg)
	assert.Equal(t, ClassRouting, class)

	msg, class = h.Handle(ctx, errors.New("redis: connection refused"))
	assert.Equal(t, genericUserMessage, msg)
	assert.Equal(t, ClassInternal, class)

	msg, class = h.Handle(ctx, NewInternalError(errors.New("boom")))
	assert.Equal(t, genericUserMessage, msg)
	assert.Equal(t, ClassInternal, class)
}

func TestIsKindAndClassOf(t *testing.T) {
	err := fmt.Errorf("resolve: %w", ErrNoTopicUser)

	assert.True(t, IsKind(err, ErrNoTopicUser))
	assert.False(t, IsKind(err, ErrNoContactChat))
	assert.False(t, IsKind(nil, ErrNoContactChat))

	assert.Equal(t, ClassRouting, ClassOf(err))
	assert.Equal(t, ClassConfig, ClassOf(ErrNoGreetingSet))
	assert.Equal(t, Class(""), ClassOf(errors.New("timeout")))
}
