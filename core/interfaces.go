package core

import (
	"context"
	"io"
	"net/http"
	"time"
)

// VergeResourceAPI defines the interface for standard CRUD operations on a VergeOS resource.
type VergeResourceAPI interface {
	Session() RESTSession
	GetResourceType() string
	GetResourcePath() string

	List(Params) (RecordSet, error)
	Create(Params) (Record, error)
	Update(any, Params) (Record, error)
	Delete(Params, Params) (Record, error)
	DeleteById(any, Params, Params) (Record, error)
	Ensure(Params, Params) (Record, error)
	Get(Params) (Record, error)
	GetById(any) (Record, error)
	Exists(Params) (bool, error)
	MustExists(Params) bool
	// Resource-level mutex lock for concurrent access control
	Lock(...any) func()
}

type VergeResourceAPIWithContext interface {
	VergeResourceAPI
	ListWithContext(context.Context, Params) (RecordSet, error)
	CreateWithContext(context.Context, Params) (Record, error)
	UpdateWithContext(context.Context, any, Params) (Record, error)
	DeleteWithContext(context.Context, Params, Params, Params) (Record, error)
	DeleteByIdWithContext(context.Context, any, Params, Params) (Record, error)
	EnsureWithContext(context.Context, Params, Params) (Record, error)
	GetWithContext(context.Context, Params) (Record, error)
	GetByIdWithContext(context.Context, any) (Record, error)
	ExistsWithContext(context.Context, Params) (bool, error)
	MustExistsWithContext(context.Context, Params) bool
}

// InterceptableVergeResourceAPI combines request interception with resource behavior.
type InterceptableVergeResourceAPI interface {
	RequestInterceptor
	VergeResourceAPIWithContext
}

// Awaitable is implemented by handles to server-side asynchronous work.
type Awaitable interface {
	WaitWithContext(context.Context) (Record, error)
	Wait(time.Duration) (Record, error)
}

// RequestInterceptor defines a middleware-style interface for intercepting API requests
// and responses in client-server interactions. It allows implementing logic that runs
// before sending a request and after receiving a response.
// Typical use cases include logging, request mutation, authentication, and response transformation.
type RequestInterceptor interface {
	// BeforeRequest is invoked prior to sending the API request.
	BeforeRequest(context.Context, *http.Request, string, string, io.Reader) error

	// AfterRequest is invoked after the API response is received.
	//
	// The input and output are of type Renderable, which includes types like:
	//   - Record: a single key-value response object
	//   - RecordSet: a list of Record objects
	//
	// This method can inspect, mutate, or log the response data.
	AfterRequest(context.Context, Renderable) (Renderable, error)

	// doBeforeRequest No need to implement on Verge API Resources. For internal usage only
	doBeforeRequest(context.Context, *http.Request, string, string, io.Reader) error

	// doAfterRequest No need to implement on Verge API Resources. For internal usage only
	doAfterRequest(context.Context, Renderable) (Renderable, error)
}

// StreamingSession extends the session with raw-body I/O used by the chunked
// transfer engine: positioned octet-stream writes and streamed reads that
// bypass the JSON record decoding.
type StreamingSession interface {
	PutRaw(ctx context.Context, path string, body io.Reader, contentLength int64, headers []http.Header) (Renderable, error)
	StreamGet(ctx context.Context, path string, headers []http.Header) (io.ReadCloser, error)
}

type VergeRest interface {
	GetSession() RESTSession
	GetResourceMap() map[string]VergeResourceAPIWithContext
	GetCtx() context.Context
	SetCtx(context.Context)
}
