package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, parseLevel("Warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestInitLoggerFormats(t *testing.T) {
	ctx := context.Background()

	InitLogger("info", "json")
	require.NotNil(t, L)
	assert.True(t, L.Enabled(ctx, slog.LevelInfo))
	assert.False(t, L.Enabled(ctx, slog.LevelDebug))

	InitLogger("debug", "text")
	require.NotNil(t, L)
	assert.True(t, L.Enabled(ctx, slog.LevelDebug))
}
