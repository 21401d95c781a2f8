package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"
)

// VergeConfig represents the configuration required to create a VergeOS API session.
type VergeConfig struct {
	Host           string         // The hostname or IP address of the VergeOS system.
	Port           uint64         // The port to connect to on the VergeOS system.
	Username       string         // The username for authentication (used with Password).
	Password       string         // The password for authentication (used with Username).
	ApiToken       string         // Optional pre-issued session token (alternative to Username/Password).
	UseBasicAuth   bool           // If true, send HTTP Basic Authentication on every request instead of a session token.
	SslVerify      bool           // Whether to verify SSL certificates.
	Timeout        *time.Duration // HTTP client timeout. If nil, a default is applied by validators.
	MaxConnections int            // Maximum number of concurrent HTTP connections.
	UserAgent      string         // Optional custom User-Agent header to use in HTTP requests. If empty, a default may be applied.
	ApiVersion     string         // Optional API version (defaults to "v4").
	// Context is an optional external context for controlling HTTP request lifecycle.
	// When provided, it will be used as the parent context for all HTTP requests made by the client.
	Context context.Context

	// BeforeRequestFn is an optional function hook executed before an API request is sent.
	// It allows for request inspection, mutation, or logging.
	//
	// Parameters:
	//   - ctx: The request context for managing deadlines and cancellations.
	//   - req: Request object
	//   - verb: The HTTP method (e.g., GET, POST, PUT).
	//   - url: The target URL (path and query parameters).
	//   - body: The request body reader, typically containing JSON payload.
	//
	// Return:
	//   - error: Any error returned will abort the request.
	BeforeRequestFn func(ctx context.Context, r *http.Request, verb, url string, body io.Reader) error

	// AfterRequestFn is an optional function hook executed after receiving an API response.
	// It can be used for post-processing, transformation, or logging of the response.
	AfterRequestFn func(ctx context.Context, response Renderable) (Renderable, error)

	// FillFn optionally overrides the default function used to populate structs
	// from generic Record maps. If provided, this function is invoked instead of
	// the default JSON-based marshal/unmarshal logic.
	FillFn func(r Record, container any) error
}

// VergeConfigFunc defines a function that can modify or validate a VergeConfig.
type VergeConfigFunc func(*VergeConfig) error

// Validate applies the given VergeConfigFunc validators to the config.
// Panics if any validator returns an error.
func (config *VergeConfig) Validate(validators ...VergeConfigFunc) {
	for _, fn := range validators {
		if err := fn(config); err != nil {
			panic(err)
		}
	}
}

// WithTimeout returns a VergeConfigFunc that sets a default timeout if none is provided.
func WithTimeout(timeout time.Duration) VergeConfigFunc {
	return func(config *VergeConfig) error {
		if config.Timeout == nil {
			config.Timeout = &timeout
		}
		return nil
	}
}

// WithMaxConnections returns a VergeConfigFunc that sets the maximum number of connections
// if not explicitly provided.
func WithMaxConnections(maxConnections int) VergeConfigFunc {
	return func(config *VergeConfig) error {
		if config.MaxConnections == 0 {
			config.MaxConnections = maxConnections
		}
		return nil
	}
}

// WithHost validates that the Host field is not empty.
// Panics if Host is an empty string.
func WithHost(config *VergeConfig) error {
	if config.Host == "" {
		panic("host cannot be empty string")
	}
	return nil
}

// WithPort returns a VergeConfigFunc that sets a default port if none is provided.
func WithPort(defaultPort uint64) VergeConfigFunc {
	return func(config *VergeConfig) error {
		if config.Port == 0 {
			config.Port = defaultPort
		}
		return nil
	}
}

// WithAuth validates that either a username/password combination or a session
// token is provided for authentication. Returns an error if neither is set.
func WithAuth(config *VergeConfig) error {
	hasUserPass := config.Username != "" && config.Password != ""
	hasToken := config.ApiToken != ""
	if !hasUserPass && !hasToken {
		return errors.New("either username/password or api token must be provided")
	}
	return nil
}

// WithUserAgent sets a default User-Agent header if none is provided in the config.
// This helps identify the client in HTTP requests.
func WithUserAgent(config *VergeConfig) error {
	if config.UserAgent == "" {
		config.UserAgent = fmt.Sprintf(
			"%s,os:%s,arch:%s",
			fmt.Sprintf("verge-go-client-%s", ClientVersion()),
			runtime.GOOS,
			runtime.GOARCH,
		)
	}
	return nil
}

// WithApiVersion sets a default API version.
func WithApiVersion(defaultVer string) VergeConfigFunc {
	return func(config *VergeConfig) error {
		if config.ApiVersion == "" {
			config.ApiVersion = defaultVer
		}
		return nil
	}
}

// WithFillFn is a VergeConfigFunc that installs a custom FillFn into the global
// fillFunc used by the Record.Fill method.
func WithFillFn(config *VergeConfig) error {
	if config.FillFn != nil {
		fillFunc = config.FillFn
	}
	return nil
}
