package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "retrofit.log")
		result := NewLoggerWithPath(Config{Level: "debug", Format: FormatJSON, Output: OutputFile, File: path})
		t.Cleanup(func() { _ = result.Close() })

		require.True(t, result.UsingFile)
		assert.Equal(t, path, result.FilePath)
		assert.Equal(t, zerolog.DebugLevel, result.Logger.GetLevel())

		result.Logger.Info().Str("component", "test").Msg("hello")
		require.NoError(t, result.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"hello"`)
	})

	t.Run("unwritable file falls back", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

		result := NewLoggerWithPath(Config{Output: OutputFile, File: filepath.Join(blocker, "sub", "x.log")})
		assert.False(t, result.UsingFile)
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)
		assert.NoError(t, result.Close())
	})

	t.Run("bad level defaults to info", func(t *testing.T) {
		result := NewLoggerWithPath(Config{Level: "loud"})
		assert.Equal(t, zerolog.InfoLevel, result.Logger.GetLevel())
	})
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := base.WithContext(context.Background())
	ctx = ContextWithTraceID(ctx, "trace-1")

	FromContext(ctx).Info().Msg("x")
	assert.Contains(t, buf.String(), `"trace_id":"trace-1"`)

	assert.Equal(t, "trace-1", GetOrGenerateTraceID(ctx))
	generated := GetOrGenerateTraceID(context.Background())
	_, err := ulid.Parse(generated)
	assert.NoError(t, err)

	buf.Reset()
	componentLogger := ComponentLogger(base, "engine")
	componentLogger.Info().Msg("y")
	assert.Contains(t, buf.String(), `"component":"engine"`)
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	PrintLogPathMessage(&buf, "/tmp/x.log")
	PrintFallbackWarning(&buf, "denied")
	assert.Contains(t, buf.String(), "/tmp/x.log")
	assert.Contains(t, buf.String(), "denied")
}
