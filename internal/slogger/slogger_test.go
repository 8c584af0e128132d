package slogger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default verbosity only logs errors", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Output: &buf})
		require.NoError(t, err)

		logger.Info("narration")
		logger.Error("diagnostic", "tag", "main")

		assert.NotContains(t, buf.String(), "narration")
		assert.Contains(t, buf.String(), "diagnostic")
		assert.Contains(t, buf.String(), "tag=main")
	})

	t.Run("verbose logs info", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Verbosity: 1, Output: &buf})
		require.NoError(t, err)

		logger.Info("narration")
		logger.Debug("detail")

		assert.Contains(t, buf.String(), "narration")
		assert.NotContains(t, buf.String(), "detail")
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Format: FormatJSON, Output: &buf})
		require.NoError(t, err)

		logger.Error("diagnostic", "tag", "main")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "diagnostic", record["msg"])
		assert.Equal(t, "main", record["tag"])
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := New(Config{Format: "xml"})

		assert.Error(t, err)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		logger, err := New(Config{})
		require.NoError(t, err)

		ctx := WithLogger(context.Background(), logger)

		assert.Same(t, logger, L(ctx))
	})

	t.Run("falls back to discarding logger", func(t *testing.T) {
		logger := FromContext(context.Background())

		require.NotNil(t, logger)
		assert.False(t, logger.Enabled(context.Background(), 0))
	})
}
