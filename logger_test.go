package steergo

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedLogger returns a debug-level JSON logger writing into buf.
func recordedLogger(buf *bytes.Buffer) *Logger {
	return NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeRecord(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(line, &record))
	return record
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := recordedLogger(&buf).
		WithModel("toy-model").
		WithBehavior("refusal").
		WithLayer(14).
		WithStrength(1.5)

	logger.Info("steering active")

	record := decodeRecord(t, buf.Bytes())
	assert.Equal(t, "steering active", record["msg"])
	assert.Equal(t, "toy-model", record["model"])
	assert.Equal(t, "refusal", record["behavior"])
	assert.Equal(t, float64(14), record["layer"])
	assert.Equal(t, 1.5, record["strength"])
}

func TestLoggerHelpers(t *testing.T) {
	ctx := context.Background()

	t.Run("extraction success logs at info", func(t *testing.T) {
		var buf bytes.Buffer
		recordedLogger(&buf).LogExtraction(ctx, "refusal", 3, 20, nil)

		record := decodeRecord(t, buf.Bytes())
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "extraction completed", record["msg"])
		assert.Equal(t, "refusal", record["behavior"])
		assert.Equal(t, float64(3), record["layers"])
		assert.Equal(t, float64(20), record["pairs"])
	})

	t.Run("extraction failure logs the error", func(t *testing.T) {
		var buf bytes.Buffer
		recordedLogger(&buf).LogExtraction(ctx, "refusal", 3, 0, assert.AnError)

		record := decodeRecord(t, buf.Bytes())
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "extraction failed", record["msg"])
		assert.Contains(t, record["error"], assert.AnError.Error())
	})

	t.Run("injection attach logs at debug", func(t *testing.T) {
		var buf bytes.Buffer
		recordedLogger(&buf).LogInjection(ctx, "refusal", 2.0, nil)

		record := decodeRecord(t, buf.Bytes())
		assert.Equal(t, "DEBUG", record["level"])
		assert.Equal(t, "injection attached", record["msg"])
		assert.Equal(t, 2.0, record["strength"])
	})

	t.Run("store operation", func(t *testing.T) {
		var buf bytes.Buffer
		recordedLogger(&buf).LogStore(ctx, "save", "refusal", nil)

		record := decodeRecord(t, buf.Bytes())
		assert.Equal(t, "store operation completed", record["msg"])
		assert.Equal(t, "save", record["op"])
	})

	t.Run("noop logger discards everything", func(t *testing.T) {
		logger := NoopLogger()
		logger.LogExtraction(ctx, "b", 1, 1, nil)
		logger.LogInjection(ctx, "b", 1, assert.AnError)
	})
}
