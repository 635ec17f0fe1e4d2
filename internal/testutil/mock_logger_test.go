package testutil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareBuffer(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Named("alias").Named("reload").With(logging.Int("rows", 3)).Warn("slow")
	ctx := logging.ContextWithRequestID(context.Background(), "req-9")
	logger.WithContext(ctx).Debug("lookup")

	msgs := logger.GetMessages()
	assert.Len(t, msgs, 2)
	assert.Equal(t, "alias.reload", msgs[0].Logger)

	v, ok := logger.Field("slow", "rows")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = logger.Field("lookup", "request_id")
	assert.True(t, ok)
	assert.Equal(t, "req-9", v)

	_, ok = logger.Field("missing", "rows")
	assert.False(t, ok)
	assert.NoError(t, logger.Sync())
}
