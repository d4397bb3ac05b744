package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil)))

	log.Info("connecting", slog.String("token", "123:abc"), slog.String("Password", "hunter2"), slog.Int64("chat_id", -100))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "***", record["token"])
	assert.Equal(t, "***", record["Password"])
	assert.EqualValues(t, -100, record["chat_id"])
}

func TestSetLevel(t *testing.T) {
	level := new(slog.LevelVar)

	require.NoError(t, SetLevel(level, "debug"))
	assert.Equal(t, slog.LevelDebug, level.Level())

	require.NoError(t, SetLevel(level, ""))
	assert.Equal(t, slog.LevelInfo, level.Level())

	assert.Error(t, SetLevel(level, "loud"))
	assert.Equal(t, slog.LevelInfo, level.Level())
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestLogger_SetLevel(t *testing.T) {
	log, err := New(Options{Level: "warn", Format: "text"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	assert.Equal(t, slog.LevelWarn, log.Level())
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))

	require.NoError(t, log.SetLevel("info"))
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))

	ctx := WithCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", CorrelationIDFromContext(ctx))

	generated := CorrelationIDFromContext(WithCorrelationID(context.Background(), ""))
	assert.Len(t, generated, 36)
}

func TestTeeHandler_FansOut(t *testing.T) {
	var first, second bytes.Buffer
	h := newTeeHandler(
		slog.NewTextHandler(&first, nil),
		slog.NewTextHandler(&second, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("info only")
	log.Error("both")

	assert.Contains(t, first.String(), "info only")
	assert.Contains(t, first.String(), "both")
	assert.NotContains(t, second.String(), "info only")
	assert.Contains(t, second.String(), "both")
}

func TestMaskingHandler_MasksBoundAndGroupedAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil))).
		With(slog.String("secret", "s3"))

	log.Info("sentry", slog.Group("sentry", slog.String("dsn", "https://key@host/1"), slog.Bool("enabled", true)))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "***", record["secret"])

	group, ok := record["sentry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "***", group["dsn"])
	assert.Equal(t, true, group["enabled"])
}
