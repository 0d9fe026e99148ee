package kmeans

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWithClusters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	logger.WithClusters(4).Info("hello")

	assert.Contains(t, buf.String(), `"clusters":4`)
	assert.Contains(t, buf.String(), "hello")
}

func TestLogSnapshot(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, nil))

		logger.LogSnapshot(context.Background(), "model.kms", nil)

		assert.Contains(t, buf.String(), "snapshot saved")
		assert.Contains(t, buf.String(), "model.kms")
	})

	t.Run("failed", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, nil))

		logger.LogSnapshot(context.Background(), "model.kms", errors.New("disk full"))

		assert.Contains(t, buf.String(), "snapshot failed")
		assert.Contains(t, buf.String(), "disk full")
	})
}
