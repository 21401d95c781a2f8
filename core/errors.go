package core

import (
	"errors"
	"fmt"
	"time"
)

type NotFoundError struct {
	Resource string
	Query    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource '%s' not found for params '%s'", e.Resource, e.Query)
}

type TooManyRecordsError struct {
	ResourcePath string
	Params       Params
}

// Implement the Error method to satisfy the error interface
func (e *TooManyRecordsError) Error() string {
	return fmt.Sprintf("too many records found for resource '%s' with params '%v'", e.ResourcePath, e.Params)
}

// TimeoutError is returned when a poll loop exceeds its wall-clock or
// attempt-count budget without observing a terminal job state. It is a
// distinct, catchable error so callers can decide to keep polling themselves.
type TimeoutError struct {
	Job      string
	Elapsed  time.Duration
	Attempts int
}

func (e *TimeoutError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("job '%s' not finished after %d attempts", e.Job, e.Attempts)
	}
	return fmt.Sprintf("job '%s' not finished after %v", e.Job, e.Elapsed)
}

// JobFailedError is returned when the remote job itself reports an error or
// aborted terminal state. Info carries the server-provided diagnostic string.
type JobFailedError struct {
	Job   string
	State string
	Info  string
}

func (e *JobFailedError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("job '%s' failed with state '%s'", e.Job, e.State)
	}
	return fmt.Sprintf("job '%s' failed with state '%s': %s", e.Job, e.State, e.Info)
}

// JobVanishedError is returned when the job key no longer resolves on the
// server. Distinct from JobFailedError: the remediation is re-submission
// rather than investigating a failed run.
type JobVanishedError struct {
	Job string
	ID  any
}

func (e *JobVanishedError) Error() string {
	return fmt.Sprintf("job '%s' with key '%v' no longer exists on the server", e.Job, e.ID)
}

// EntryCreationError is returned when the server does not hand back a key for
// a freshly created remote file entry. The upload is aborted before any chunk
// is written.
type EntryCreationError struct {
	Name   string
	Reason string
}

func (e *EntryCreationError) Error() string {
	return fmt.Sprintf("failed to create remote file entry '%s': %s", e.Name, e.Reason)
}

// ChunkWriteError aborts a chunked upload. The offset identifies the chunk
// that was rejected; the remote entry may be left incomplete.
type ChunkWriteError struct {
	Name   string
	Offset int64
	Err    error
}

func (e *ChunkWriteError) Error() string {
	return fmt.Sprintf("chunk write for '%s' at offset %d failed: %v", e.Name, e.Offset, e.Err)
}

func (e *ChunkWriteError) Unwrap() error {
	return e.Err
}

// DestinationExistsError is returned before any network I/O when a download
// destination already exists and overwrite was not requested.
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("destination '%s' already exists (pass overwrite to replace it)", e.Path)
}

// DestinationDirectoryError is returned before any network I/O when the
// parent directory of a download destination does not exist.
type DestinationDirectoryError struct {
	Path string
}

func (e *DestinationDirectoryError) Error() string {
	return fmt.Sprintf("destination directory '%s' does not exist", e.Path)
}

func IsNotFoundErr(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

func IgnoreNotFound(val Record, err error) (Record, error) {
	if IsNotFoundErr(err) {
		return val, nil
	}
	return val, err
}

func IsTooManyRecordsErr(err error) bool {
	var tooManyRecordsErr *TooManyRecordsError
	return errors.As(err, &tooManyRecordsErr)
}

func IsTimeoutErr(err error) bool {
	var tErr *TimeoutError
	return errors.As(err, &tErr)
}

func IsJobFailedErr(err error) bool {
	var jErr *JobFailedError
	return errors.As(err, &jErr)
}

func IsJobVanishedErr(err error) bool {
	var vErr *JobVanishedError
	return errors.As(err, &vErr)
}

func IsEntryCreationErr(err error) bool {
	var cErr *EntryCreationError
	return errors.As(err, &cErr)
}

func IsChunkWriteErr(err error) bool {
	var wErr *ChunkWriteError
	return errors.As(err, &wErr)
}

func IsDestinationExistsErr(err error) bool {
	var dErr *DestinationExistsError
	return errors.As(err, &dErr)
}

func IsDestinationDirectoryErr(err error) bool {
	var dErr *DestinationDirectoryError
	return errors.As(err, &dErr)
}
