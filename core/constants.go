package core

// HTTP-related constants for REST operations
// These constants provide type-safe header names, content types, and auth types

// HTTP Header Names
const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderUserAgent     = "User-Agent"
	HeaderToken         = "x-yottabyte-token"
)

// HTTP Content Types
const (
	ContentTypeJSON        = "application/json"
	ContentTypeMsgpack     = "application/x-msgpack"
	ContentTypeTextPlain   = "text/plain"
	ContentTypeOctetStream = "application/octet-stream"
)

// HTTP Authentication Types
const (
	AuthTypeBasic  = "Basic"
	AuthTypeBearer = "Bearer"
)

// DefaultChunkSize is the fixed size of one positioned write during a
// chunked file upload. The VergeOS API applies chunks strictly in
// increasing offset order, one request at a time.
const DefaultChunkSize int64 = 262144
