package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestWithContext_FromContext(t *testing.T) {
	t.Run("round-trips the logger through context", func(t *testing.T) {
		logger, _ := newObservedLogger()
		ctx := WithContext(context.Background(), logger)

		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("returns no-op logger when context has none", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
		// should not panic
		logger.Info("message to nowhere")
	})
}

func TestWithRequestID(t *testing.T) {
	logger, logs := newObservedLogger()

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))

	enriched.Info("processing")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
}

func TestWithTenantID(t *testing.T) {
	logger, logs := newObservedLogger()

	ctx, enriched := WithTenantID(context.Background(), logger, "tenant-abc")

	assert.Equal(t, "tenant-abc", GetTenantID(ctx))

	enriched.Info("processing")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "tenant-abc", logs.All()[0].ContextMap()["tenant_id"])
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetTenantID(context.Background()))
}

func TestContextLogger(t *testing.T) {
	t.Run("injects request and tenant IDs from context", func(t *testing.T) {
		logger, logs := newObservedLogger()

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
		ctx = context.WithValue(ctx, TenantIDKey, "tenant-7")
		ctx = WithContext(ctx, logger)

		L(ctx).Info("document imported")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "document imported", entry.Message)
		assert.Equal(t, "req-42", entry.ContextMap()["request_id"])
		assert.Equal(t, "tenant-7", entry.ContextMap()["tenant_id"])
	})

	t.Run("WithLogger uses the provided logger", func(t *testing.T) {
		logger, logs := newObservedLogger()

		WithLogger(context.Background(), logger).Warn("slow query")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "slow query", logs.All()[0].Message)
	})

	t.Run("With adds fields to every entry", func(t *testing.T) {
		logger, logs := newObservedLogger()
		ctx := WithContext(context.Background(), logger)

		L(ctx).With(zap.String("access_key", "masked")).Error("import failed")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "masked", logs.All()[0].ContextMap()["access_key"])
	})

	t.Run("nil logger falls back to no-op", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}
		// should not panic
		cl.Info("into the void")
	})

	t.Run("Zap returns an enriched plain logger", func(t *testing.T) {
		logger, logs := newObservedLogger()
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")
		ctx = WithContext(ctx, logger)

		L(ctx).Zap().Info("direct")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-9", logs.All()[0].ContextMap()["request_id"])
	})
}
