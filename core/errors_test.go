package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorMatchers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matcher func(error) bool
	}{
		{"not found", &NotFoundError{Resource: "machines"}, IsNotFoundErr},
		{"too many records", &TooManyRecordsError{ResourcePath: "machines"}, IsTooManyRecordsErr},
		{"timeout", &TimeoutError{Job: "task 5", Elapsed: time.Minute}, IsTimeoutErr},
		{"job failed", &JobFailedError{Job: "task 5", State: "error"}, IsJobFailedErr},
		{"job vanished", &JobVanishedError{Job: "task 5", ID: 5}, IsJobVanishedErr},
		{"entry creation", &EntryCreationError{Name: "f.iso"}, IsEntryCreationErr},
		{"chunk write", &ChunkWriteError{Name: "f.iso", Offset: 262144}, IsChunkWriteErr},
		{"destination exists", &DestinationExistsError{Path: "/tmp/out.iso"}, IsDestinationExistsErr},
		{"destination directory", &DestinationDirectoryError{Path: "/tmp/missing"}, IsDestinationDirectoryErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.matcher(tt.err) {
				t.Errorf("matcher rejected its own error type")
			}
			wrapped := fmt.Errorf("caller context: %w", tt.err)
			if !tt.matcher(wrapped) {
				t.Errorf("matcher rejected a wrapped error")
			}
			if tt.matcher(errors.New("other")) {
				t.Errorf("matcher accepted a foreign error")
			}
		})
	}
}

func TestChunkWriteErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &ChunkWriteError{Name: "f.iso", Offset: 0, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ChunkWriteError does not unwrap to its cause")
	}
}

func TestTimeoutErrorMessage(t *testing.T) {
	wallClock := &TimeoutError{Job: "import 3", Elapsed: 90 * time.Second}
	if !strings.Contains(wallClock.Error(), "1m30s") {
		t.Errorf("wall-clock message: %q", wallClock.Error())
	}
	attempts := &TimeoutError{Job: "browse 3", Attempts: 30}
	if !strings.Contains(attempts.Error(), "30 attempts") {
		t.Errorf("attempt-count message: %q", attempts.Error())
	}
}

func TestIgnoreNotFound(t *testing.T) {
	record := Record{"$key": 1}
	if _, err := IgnoreNotFound(record, &NotFoundError{Resource: "users"}); err != nil {
		t.Errorf("not-found must be swallowed, got %v", err)
	}
	other := errors.New("boom")
	if _, err := IgnoreNotFound(record, other); err != other {
		t.Errorf("foreign errors must pass through, got %v", err)
	}
}

func TestIgnoreStatusCodes(t *testing.T) {
	apiErr := &ApiError{Method: "GET", URL: "https://verge.local", StatusCode: 404}
	if err := IgnoreStatusCodes(apiErr, 404); err != nil {
		t.Errorf("404 must be ignored, got %v", err)
	}
	if err := IgnoreStatusCodes(apiErr, 409); err == nil {
		t.Error("unlisted status must pass through")
	}
	if !ExpectStatusCodes(apiErr, 400, 404) {
		t.Error("ExpectStatusCodes missed a listed status")
	}
	if ExpectStatusCodes(errors.New("other"), 404) {
		t.Error("ExpectStatusCodes accepted a non-API error")
	}
}
