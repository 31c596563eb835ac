package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: defaultKeyOrder(),
	})
	read := func() string {
		require.NoError(t, aw.Flush())
		require.NoError(t, aw.Close())
		return strings.TrimSpace(buf.String())
	}
	return slog.New(h), read
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "flow.payment"), slog.LevelInfo, "payment.relayed",
		slog.String("status", "OK"),
		slog.String("vacancy_id", "v-1"),
	)

	tokens := strings.Split(read(), " ")
	expected := []string{"ts=", "level=INFO", "component=flow.payment", "event=payment.relayed", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "vacancy_id=v-1"}
	require.GreaterOrEqual(t, len(tokens), len(expected))
	for i, prefix := range expected {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, read := newTestLogger(t, formatJSON)
	ctx := WithRID(context.Background(), "rid-json")

	LogEvent(ctx, log.With("component", "storage"), slog.LevelError, "vacancy.reserve",
		slog.String("status", "fail"),
		slog.Any("err", errors.New("boom")),
	)

	line := read()
	require.True(t, strings.HasPrefix(line, "{"), line)
	pos := -1
	for _, pref := range []string{`{"ts":`, `"level":"ERROR"`, `"component":"storage"`, `"event":"vacancy.reserve"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`} {
		idx := strings.Index(line, pref)
		require.Greater(t, idx, pos, "%s out of order in %s", pref, line)
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	log, read := newTestLogger(t, formatKV)
	raw := BuildRID(123, 456, 789)

	LogEvent(WithRID(context.Background(), raw), log, slog.LevelInfo, "rid.test")

	line := read()
	assert.Contains(t, line, "rid="+CompactRID(raw))
	assert.NotContains(t, line, "rid_full=")
	assert.Contains(t, line, "component=app")
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	log, read := newTestLogger(t, formatJSON)
	raw := "12:34:56"

	LogEvent(WithRID(context.Background(), raw), log, slog.LevelInfo, "rid.test")

	line := read()
	assert.Contains(t, line, `"rid":"`+CompactRID(raw)+`"`)
	assert.Contains(t, line, `"rid_full":"`+raw+`"`)
	assert.Contains(t, line, `"ts_unix_nano"`)
}

func TestDurationAttributesGetMillisecondKeys(t *testing.T) {
	log, read := newTestLogger(t, formatKV)

	LogEvent(context.Background(), log, slog.LevelInfo, "timing",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Duration("backoff", 2*time.Second),
	)

	line := read()
	assert.Contains(t, line, "duration_ms=2")
	assert.Contains(t, line, "backoff_ms=2000")
}

func TestStructuredHandlerSkipsBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{level: slog.LevelWarn, writer: aw, format: formatKV})
	log := slog.New(h)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, aw.Close())

	out := buf.String()
	assert.NotContains(t, out, "event=hidden")
	assert.Contains(t, out, "event=shown")
}

func TestCompactRIDKeepsForeignFormats(t *testing.T) {
	assert.Equal(t, "abc", CompactRID("abc"))
	assert.Equal(t, "1:x:3", CompactRID("1:x:3"))
	assert.Equal(t, "z.10.a", CompactRID("35:36:10"))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\ncd", Sanitize("a\x00b\ncd\u200b"))
	assert.Equal(t, "Sal", SanitizeLimit("Salom", 3))
	assert.Empty(t, SanitizeLimit("Salom", 0))
}

func TestStatusAndPreview(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "fail", Status(errors.New("boom")))
	assert.Equal(t, "cancelled", Status(fmt.Errorf("send: %w", context.Canceled)))

	files := []string{"1.up.sql", "2.up.sql", "3.up.sql"}
	assert.Equal(t, "1.up.sql, 2.up.sql, 3.up.sql", Preview(files, 6))
	assert.Equal(t, "1.up.sql, 2.up.sql +1 more", Preview(files, 2))
	assert.Equal(t, "+3 more", Preview(files, 0))
	assert.Equal(t, "", Preview(nil, 2))

	assert.Equal(t, 2*time.Millisecond, roundMS(1600*time.Microsecond))
	assert.Zero(t, roundMS(-time.Second))
}
