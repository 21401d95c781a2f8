package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
)

var logLevel string

func init() {
	logLevel = strings.ToLower(os.Getenv("VERGE_LOG"))
}

// ######################################################
//
//	REQUEST/RESPONSE INTERCEPTORS
//
// ######################################################

// BeforeRequest No op in current implementation. You have to shadow this method on a particular
// VergeResource. IOW declare the same method with the same signature for Users or Machines etc.
func (e *VergeResource) BeforeRequest(_ context.Context, r *http.Request, verb, url string, body io.Reader) error {
	return nil
}

// AfterRequest No op in current implementation. You have to shadow this method on a particular
// VergeResource. IOW declare the same method with the same signature for Users or Machines etc.
func (e *VergeResource) AfterRequest(_ context.Context, response Renderable) (Renderable, error) {
	return response, nil
}

// doBeforeRequest Do not override this method in VergeResource implementations. For internal use only
func (e *VergeResource) doBeforeRequest(ctx context.Context, r *http.Request, verb, url string, body io.Reader) error {
	var err error
	session := e.Session()
	config := session.GetConfig()
	resourceType := e.GetResourceType()
	resourceCaller, ok := e.Rest.GetResourceMap()[resourceType]
	if !ok {
		panic(fmt.Sprintf("resource not found in resourceMap for %s", resourceType))
	}
	if logLevel != "" {
		beforeRequestLog(verb, url, body)
	}
	if interceptor, ok := resourceCaller.(RequestInterceptor); ok {
		if err = interceptor.BeforeRequest(ctx, r, verb, url, body); err != nil {
			return err
		}
	}
	// User-defined callback
	if config.BeforeRequestFn != nil {
		return config.BeforeRequestFn(ctx, r, verb, url, body)
	}
	return nil
}

// doAfterRequest Do not override this method in VergeResource implementations. For internal use only
func (e *VergeResource) doAfterRequest(ctx context.Context, response Renderable) (Renderable, error) {
	var err error
	session := e.Session()
	config := session.GetConfig()
	resourceType := e.GetResourceType()
	isDummyResource := resourceType == "Dummy"
	resourceCaller, ok := e.Rest.GetResourceMap()[resourceType]
	if !ok {
		panic(fmt.Sprintf("resource not found in resourceMap for %s", e.GetResourceType()))
	}
	if !isDummyResource {
		// Attach @resourceType so resource hooks and user AfterRequestFn can
		// rely on it for formatting/logging/branching.
		if err = setResourceKey(response, resourceType); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		afterRequestLog(response)
	}
	if interceptor, ok := resourceCaller.(RequestInterceptor); ok {
		response, err = interceptor.AfterRequest(ctx, response)
		if err != nil {
			return nil, err
		}
	}
	// User-defined callback
	if config.AfterRequestFn != nil {
		response, err = config.AfterRequestFn(ctx, response)
		if err != nil {
			return nil, err
		}
	}
	return response, nil
}

func beforeRequestLog(verb, url string, body io.Reader) {
	var bodyStr string
	if body != nil {
		if raw, err := io.ReadAll(body); err == nil && len(raw) > 0 {
			var b bytes.Buffer
			if json.Indent(&b, raw, "", "  ") == nil {
				bodyStr = b.String()
			} else {
				bodyStr = string(raw)
			}
		}
	}
	if bodyStr == "" {
		log.Printf(">>> %s %s", verb, url)
	} else {
		log.Printf(">>> %s %s\n%s", verb, url, bodyStr)
	}
}

func afterRequestLog(response Renderable) {
	if response == nil {
		return
	}
	switch logLevel {
	case "debug":
		log.Printf("<<< %s", response.PrettyJson("  "))
	default:
		log.Printf("<<< %s", response.PrettyJson())
	}
}
