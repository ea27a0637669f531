package telemetry_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/common/logger"
	"github.com/lyzr/formengine/common/telemetry"
)

func bufferedTelemetry(buf *bytes.Buffer) *telemetry.Telemetry {
	l := &logger.Logger{Logger: slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	return telemetry.New(6060, 9090, l)
}

func decodeLastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestRecordDuration_LogsElapsedMilliseconds(t *testing.T) {
	var buf bytes.Buffer
	tel := bufferedTelemetry(&buf)

	tel.RecordDuration("compile", time.Now().Add(-5*time.Millisecond))

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "operation completed", entry["msg"])
	assert.Equal(t, "compile", entry["operation"])
	assert.GreaterOrEqual(t, entry["duration_ms"], float64(0))
}

func TestRecordEvent_LogsEventNameAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	tel := bufferedTelemetry(&buf)

	tel.RecordEvent("overlay_flush", map[string]any{"pending": 3})

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "telemetry_event", entry["msg"])
	assert.Equal(t, "overlay_flush", entry["event"])
}
