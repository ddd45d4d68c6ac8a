package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for gateway operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// HTTP attributes
	// ========================================================================
	AttrHTTPMethod = "http.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.status_code"

	// ========================================================================
	// Identity / auth attributes
	// ========================================================================
	AttrIdentityID   = "identity.id"
	AttrCredentialID = "credential.id"
	AttrNamespace    = "auth.namespace"
	AttrAuthScheme   = "auth.scheme" // api_key, channel_token, presign

	// ========================================================================
	// Channel attributes
	// ========================================================================
	AttrChannelID = "channel.id"
	AttrEventSeq  = "channel.seq"
	AttrEventType = "channel.event_type"

	// ========================================================================
	// Token attributes
	// ========================================================================
	AttrTokenID     = "token.id"
	AttrTokenAction = "token.action"

	// ========================================================================
	// Storage backend attributes
	// ========================================================================
	AttrStoreName = "store.name"
	AttrStoreType = "store.type"
	AttrKVKey     = "kv.key"
	AttrBucket    = "storage.bucket"
	AttrKey       = "storage.key"
	AttrRegion    = "storage.region"
	AttrSize      = "storage.size"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	SpanKVGet     = "kv.get"
	SpanKVSet     = "kv.set"
	SpanKVDelete  = "kv.delete"
	SpanKVKeys    = "kv.keys"
	SpanBlobPut   = "blob.put"
	SpanBlobGet   = "blob.get"
	SpanBlobList  = "blob.list"
	SpanChanRead  = "channel.read"
	SpanChanWrite = "channel.append"
	SpanTokenUse  = "token.consume"
	SpanPresign   = "presign.sign"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// HTTPMethod returns an attribute for the request method
func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

// HTTPRoute returns an attribute for the matched route pattern
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// HTTPStatus returns an attribute for the response status code
func HTTPStatus(status int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, status)
}

// IdentityID returns an attribute for the caller identity
func IdentityID(id string) attribute.KeyValue {
	return attribute.String(AttrIdentityID, id)
}

// CredentialID returns an attribute for the credential used
func CredentialID(id string) attribute.KeyValue {
	return attribute.String(AttrCredentialID, id)
}

// Namespace returns an attribute for the namespace being accessed
func Namespace(ns string) attribute.KeyValue {
	return attribute.String(AttrNamespace, ns)
}

// AuthScheme returns an attribute for the authentication scheme
func AuthScheme(scheme string) attribute.KeyValue {
	return attribute.String(AttrAuthScheme, scheme)
}

// ChannelID returns an attribute for the channel being accessed
func ChannelID(id string) attribute.KeyValue {
	return attribute.String(AttrChannelID, id)
}

// EventSeq returns an attribute for a channel sequence number
func EventSeq(seq uint64) attribute.KeyValue {
	return attribute.Int64(AttrEventSeq, int64(seq))
}

// EventType returns an attribute for a channel event type
func EventType(t string) attribute.KeyValue {
	return attribute.String(AttrEventType, t)
}

// TokenID returns an attribute for a stateful token
func TokenID(id string) attribute.KeyValue {
	return attribute.String(AttrTokenID, id)
}

// TokenAction returns an attribute for a stateful token action
func TokenAction(action string) attribute.KeyValue {
	return attribute.String(AttrTokenAction, action)
}

// StoreName returns an attribute for store name
func StoreName(name string) attribute.KeyValue {
	return attribute.String(AttrStoreName, name)
}

// StoreType returns an attribute for store type
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// KVKey returns an attribute for a key-value store key
func KVKey(key string) attribute.KeyValue {
	return attribute.String(AttrKVKey, key)
}

// Bucket returns an attribute for a blob bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for a blob object key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for cloud region
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// Size returns an attribute for a transfer size in bytes
func Size(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

// StartKVSpan starts a span for a key-value store operation.
func StartKVSpan(ctx context.Context, operation, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{KVKey(key)}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "kv."+operation, trace.WithAttributes(allAttrs...))
}

// StartBlobSpan starts a span for a blob store operation.
func StartBlobSpan(ctx context.Context, operation, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{StorageKey(key)}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "blob."+operation, trace.WithAttributes(allAttrs...))
}

// StartChannelSpan starts a span for a channel operation.
func StartChannelSpan(ctx context.Context, operation, channelID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{ChannelID(channelID)}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "channel."+operation, trace.WithAttributes(allAttrs...))
}

// StartTokenSpan starts a span for a stateful token operation.
func StartTokenSpan(ctx context.Context, operation, tokenID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{TokenID(tokenID)}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "token."+operation, trace.WithAttributes(allAttrs...))
}
