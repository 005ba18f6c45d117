package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/processors/minsev"
)

func TestInstrumentText(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	shutdown, err := instrument(context.Background(), &buf, slog.LevelWarn, "text")
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	slog.Info("hidden")
	slog.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
}

func TestInstrumentJSON(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "")
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	shutdown, err := instrument(context.Background(), &buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	slog.Debug("hidden")
	slog.Info("token refreshed", "storage", "file")
	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "token refreshed")
}

func TestInstrumentRejectsUnknownFormat(t *testing.T) {
	_, err := instrument(context.Background(), &bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, minsev.SeverityDebug, severity(slog.LevelDebug))
	assert.Equal(t, minsev.SeverityInfo, severity(slog.LevelInfo))
	assert.Equal(t, minsev.SeverityWarn, severity(slog.LevelWarn))
	assert.Equal(t, minsev.SeverityError, severity(slog.LevelError))
}
