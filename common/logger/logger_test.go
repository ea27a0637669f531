package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/common/logger"
)

// bufferedLogger builds a *logger.Logger around a JSON handler writing into
// buf, bypassing New()'s hardcoded os.Stdout so output is assertable.
func bufferedLogger(buf *bytes.Buffer, level slog.Level) *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))}
}

func decodeLastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestNew_DefaultsToInfoLevelForUnknownLevelString(t *testing.T) {
	l := logger.New("nonsense", "json")
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestNew_DebugLevelEnablesDebugLogging(t *testing.T) {
	l := logger.New("debug", "json")
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestWithFields_AttachesEveryKey(t *testing.T) {
	var buf bytes.Buffer
	l := bufferedLogger(&buf, slog.LevelInfo)

	l.WithFields(map[string]any{"step_id": "signup", "attempt": 2}).Info("rendering")

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "signup", entry["step_id"])
	assert.Equal(t, float64(2), entry["attempt"])
}

func TestWithRequestID_AttachesRequestIDField(t *testing.T) {
	var buf bytes.Buffer
	l := bufferedLogger(&buf, slog.LevelInfo)

	l.WithRequestID("req-1").Info("handled")

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
}

func TestWithContext_PullsRequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := bufferedLogger(&buf, slog.LevelInfo)

	ctx := logger.WithRequestIDContext(context.Background(), "req-ctx")
	l.WithContext(ctx).Info("handled")

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "req-ctx", entry["request_id"])
}

func TestWithContext_NoRequestIDReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	l := bufferedLogger(&buf, slog.LevelInfo)

	got := l.WithContext(context.Background())
	assert.Same(t, l, got, "with no request id on the context, WithContext must return the receiver unchanged")
}

func TestError_AppendsStackTraceField(t *testing.T) {
	var buf bytes.Buffer
	l := bufferedLogger(&buf, slog.LevelInfo)

	l.Error("failed to compile")

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "failed to compile", entry["msg"])
	assert.NotEmpty(t, entry["stack"])
}
