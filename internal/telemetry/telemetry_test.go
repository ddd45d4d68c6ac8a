package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "latch", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientIP("192.168.1.1"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ClientIP", func(t *testing.T) {
		attr := ClientIP("192.168.1.100")
		assert.Equal(t, AttrClientIP, string(attr.Key))
		assert.Equal(t, "192.168.1.100", attr.Value.AsString())
	})

	t.Run("ClientAddr", func(t *testing.T) {
		attr := ClientAddr("192.168.1.100:12345")
		assert.Equal(t, AttrClientAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("HTTPMethod", func(t *testing.T) {
		attr := HTTPMethod("POST")
		assert.Equal(t, AttrHTTPMethod, string(attr.Key))
		assert.Equal(t, "POST", attr.Value.AsString())
	})

	t.Run("HTTPRoute", func(t *testing.T) {
		attr := HTTPRoute("/channel/append")
		assert.Equal(t, AttrHTTPRoute, string(attr.Key))
		assert.Equal(t, "/channel/append", attr.Value.AsString())
	})

	t.Run("HTTPStatus", func(t *testing.T) {
		attr := HTTPStatus(404)
		assert.Equal(t, AttrHTTPStatus, string(attr.Key))
		assert.Equal(t, int64(404), attr.Value.AsInt64())
	})

	t.Run("IdentityID", func(t *testing.T) {
		attr := IdentityID("id-123")
		assert.Equal(t, AttrIdentityID, string(attr.Key))
		assert.Equal(t, "id-123", attr.Value.AsString())
	})

	t.Run("Namespace", func(t *testing.T) {
		attr := Namespace("acme")
		assert.Equal(t, AttrNamespace, string(attr.Key))
		assert.Equal(t, "acme", attr.Value.AsString())
	})

	t.Run("ChannelID", func(t *testing.T) {
		attr := ChannelID("ch-42")
		assert.Equal(t, AttrChannelID, string(attr.Key))
		assert.Equal(t, "ch-42", attr.Value.AsString())
	})

	t.Run("EventSeq", func(t *testing.T) {
		attr := EventSeq(1024)
		assert.Equal(t, AttrEventSeq, string(attr.Key))
		assert.Equal(t, int64(1024), attr.Value.AsInt64())
	})

	t.Run("TokenID", func(t *testing.T) {
		attr := TokenID("tok-1")
		assert.Equal(t, AttrTokenID, string(attr.Key))
		assert.Equal(t, "tok-1", attr.Value.AsString())
	})

	t.Run("TokenAction", func(t *testing.T) {
		attr := TokenAction("identity_claim")
		assert.Equal(t, AttrTokenAction, string(attr.Key))
		assert.Equal(t, "identity_claim", attr.Value.AsString())
	})

	t.Run("KVKey", func(t *testing.T) {
		attr := KVKey("acme/settings")
		assert.Equal(t, AttrKVKey, string(attr.Key))
		assert.Equal(t, "acme/settings", attr.Value.AsString())
	})

	t.Run("Bucket", func(t *testing.T) {
		attr := Bucket("my-bucket")
		assert.Equal(t, AttrBucket, string(attr.Key))
		assert.Equal(t, "my-bucket", attr.Value.AsString())
	})

	t.Run("StorageKey", func(t *testing.T) {
		attr := StorageKey("path/to/object")
		assert.Equal(t, AttrKey, string(attr.Key))
		assert.Equal(t, "path/to/object", attr.Value.AsString())
	})

	t.Run("Size", func(t *testing.T) {
		attr := Size(1048576)
		assert.Equal(t, AttrSize, string(attr.Key))
		assert.Equal(t, int64(1048576), attr.Value.AsInt64())
	})
}

func TestStartChannelSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartChannelSpan(ctx, "append", "ch-1")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartChannelSpan(ctx, "read", "ch-2", EventSeq(7))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartBlobSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartBlobSpan(ctx, "put", "acme/report.pdf")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartBlobSpan(ctx, "get", "acme/report.pdf", Size(1024))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartKVSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartKVSpan(ctx, "get", "acme/settings")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}
