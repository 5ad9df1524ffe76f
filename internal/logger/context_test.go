package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capykyo/capy-book-fetch/internal/logger"
)

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	base := mustTestLogger(t)
	ctx := logger.WithContext(context.Background(), base)

	assert.Same(t, base, logger.FromContext(ctx))
}

func TestFromContext_NoLogger_ReturnsSharedFallback(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	require.NotNil(t, a)
	assert.Same(t, a, b, "fallback logger should be a singleton")

	// warn-level fallback filters these but must not panic
	a.Debug("debug message")
	a.Info("info message")
}

func TestWithContext_EnrichedLoggerPreserved(t *testing.T) {
	t.Parallel()

	base := mustTestLogger(t)
	enriched := base.With(logger.String("request_id", "abc-123"))

	ctx := logger.WithContext(context.Background(), enriched)
	got := logger.FromContext(ctx)

	assert.Same(t, enriched, got)
	assert.NotSame(t, base, got)
}

func TestNew_ConsoleFormat(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{
		Level:       "debug",
		Format:      logger.FormatConsole,
		OutputPaths: []string{"stderr"},
	})
	require.NoError(t, err)
	l.Debug("console output", logger.Int("n", 1))
}

func mustTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	l, err := logger.New(logger.Config{
		Level:       "warn",
		OutputPaths: []string{"stderr"},
	})
	require.NoError(t, err)

	return l
}
