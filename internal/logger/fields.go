package logger

// Standard field keys for structured logging. Use these keys consistently
// across all log statements so logs aggregate and query cleanly.
const (
	// Request handling
	KeyRequestID = "request_id" // chi request id for correlation
	KeyMethod    = "method"     // HTTP method
	KeyPath      = "path"       // request path
	KeyStatus    = "status"     // HTTP status code
	KeyDuration  = "duration"   // request duration
	KeyClientIP  = "client_ip"  // client IP address

	// Principals
	KeyIdentity   = "identity"   // identity id of the caller
	KeyCredential = "credential" // credential id (never the secret)
	KeyNamespace  = "namespace"  // namespace being addressed

	// Resources
	KeyChannel = "channel"  // channel id
	KeySeq     = "seq"      // channel event sequence number
	KeyKey     = "key"      // kv or blob key
	KeyBucket  = "bucket"   // blob bucket
	KeyTokenID = "token_id" // stateful token id

	// Stores
	KeyBackend = "backend" // store backend name (memory, badger, postgres, s3, fs)

	// Errors
	KeyError = "error" // error detail
)
