package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultPollInterval is used when a PollPolicy does not set one.
	DefaultPollInterval = 2 * time.Second
	// MinPollInterval and MaxPollInterval bound the polling interval.
	MinPollInterval = 1 * time.Second
	MaxPollInterval = 60 * time.Second

	// Browse jobs poll on a fixed attempt budget instead of a wall clock:
	// 30 attempts spaced 500ms apart, roughly 15 seconds.
	BrowseMaxAttempts   = 30
	BrowsePollInterval  = 500 * time.Millisecond
	ProgressIndeterminate = -1.0
)

// JobKind tags the flavor of a server-side asynchronous job. Each kind has
// its own terminal-state vocabulary, see classifySnapshot.
type JobKind int

const (
	JobKindTask JobKind = iota
	JobKindImport
	JobKindBrowse
)

func (k JobKind) String() string {
	switch k {
	case JobKindTask:
		return "task"
	case JobKindImport:
		return "import"
	case JobKindBrowse:
		return "browse"
	default:
		return fmt.Sprintf("JobKind(%d)", int(k))
	}
}

// JobHandle references a server-side long-running unit of work. The poller
// reads it and never mutates it.
type JobHandle struct {
	ID          any
	Kind        JobKind
	DisplayName string
}

func (h JobHandle) name() string {
	if h.DisplayName != "" {
		return h.DisplayName
	}
	return fmt.Sprintf("%s %v", h.Kind, h.ID)
}

// PollPolicy controls one wait. The zero value polls forever every
// DefaultPollInterval.
type PollPolicy struct {
	// Timeout is the wall-clock budget for the whole wait. Zero means no
	// deadline: the loop runs until the job turns terminal or ctx is done.
	Timeout time.Duration
	// Interval between status fetches, clamped to [MinPollInterval, MaxPollInterval].
	Interval time.Duration
	// FetchResult asks the surrounding resource wrapper to fetch and return
	// the full result object (for example the imported VM row) once the job
	// completes. The poller itself always returns the terminal snapshot.
	FetchResult bool
}

// normalize returns a copy with the interval defaulted and clamped.
func (p PollPolicy) normalize() PollPolicy {
	if p.Interval == 0 {
		p.Interval = DefaultPollInterval
	}
	if p.Interval < MinPollInterval {
		p.Interval = MinPollInterval
	}
	if p.Interval > MaxPollInterval {
		p.Interval = MaxPollInterval
	}
	if p.Timeout < 0 {
		p.Timeout = 0
	}
	return p
}

// StatusFetcher reads one point-in-time snapshot of a job. A nil or empty
// Record with a nil error means the job no longer exists server-side.
type StatusFetcher func(ctx context.Context, id any) (Record, error)

// ProgressEvent is emitted once per poll tick.
type ProgressEvent struct {
	Job     JobHandle
	Attempt int
	State   string
	// Percent is min(100, elapsed/timeout*100) when the policy has a finite
	// timeout, ProgressIndeterminate otherwise.
	Percent float64
	Message string
}

// ProgressFunc receives progress events. Sinks are best effort: a panic
// inside the sink is swallowed so it can never mask the wait's outcome.
type ProgressFunc func(ProgressEvent)

func emitProgress(progress ProgressFunc, event ProgressEvent) {
	if progress == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	progress(event)
}

type jobOutcome int

const (
	outcomePending jobOutcome = iota
	outcomeSuccess
	outcomeFailed
)

// classifySnapshot maps a raw status row onto the kind-specific state machine.
//
// Tasks report {status, running}: the job is done as soon as it stops
// running, with "error"/"aborted" counting as failure. Imports report
// initializing/running/complete/error/aborted. Browse requests report
// pending/complete/error.
func classifySnapshot(kind JobKind, snapshot Record) (state string, outcome jobOutcome) {
	if rawState, ok := snapshot["status"]; ok {
		state = strings.ToLower(fmt.Sprintf("%v", rawState))
	}
	switch kind {
	case JobKindTask:
		switch state {
		case "error", "aborted":
			return state, outcomeFailed
		}
		if running, ok := snapshot["running"]; ok {
			if isRunning, ok := running.(bool); ok && !isRunning {
				return state, outcomeSuccess
			}
		}
		if state == "idle" {
			return state, outcomeSuccess
		}
		return state, outcomePending
	case JobKindImport:
		switch state {
		case "complete":
			return state, outcomeSuccess
		case "error", "aborted":
			return state, outcomeFailed
		}
		return state, outcomePending
	case JobKindBrowse:
		switch state {
		case "complete":
			return state, outcomeSuccess
		case "error":
			return state, outcomeFailed
		}
		return state, outcomePending
	default:
		return state, outcomePending
	}
}

func statusInfo(snapshot Record) string {
	for _, field := range []string{"status_info", "result", "status"} {
		if raw, ok := snapshot[field]; ok && raw != nil {
			if info := fmt.Sprintf("%v", raw); info != "" {
				return info
			}
		}
	}
	return ""
}

// checkSnapshot evaluates one fetched snapshot against the exit conditions,
// in priority order: vanished, failed, succeeded. A pending snapshot returns
// (false, nil).
func checkSnapshot(handle JobHandle, snapshot Record, fetchErr error) (bool, error) {
	if fetchErr != nil {
		if IsNotFoundErr(fetchErr) {
			return true, &JobVanishedError{Job: handle.name(), ID: handle.ID}
		}
		return true, fetchErr
	}
	if len(snapshot) == 0 {
		return true, &JobVanishedError{Job: handle.name(), ID: handle.ID}
	}
	state, outcome := classifySnapshot(handle.Kind, snapshot)
	switch outcome {
	case outcomeFailed:
		return true, &JobFailedError{Job: handle.name(), State: state, Info: statusInfo(snapshot)}
	case outcomeSuccess:
		return true, nil
	default:
		return false, nil
	}
}

// WaitForCompletion blocks until the job behind handle reaches a terminal
// state, the policy timeout elapses, or ctx is cancelled.
//
// The first fetch happens immediately: a job that is already terminal is
// returned without entering the sleep loop at all. After that the loop
// sleeps one interval, fetches, and evaluates the exit conditions in
// priority order: vanished, failed, succeeded, timed out. One progress
// event is emitted per tick.
//
// Polling never mutates the job, so waiting on an already-terminal handle
// any number of times yields the same snapshot.
func WaitForCompletion(
	ctx context.Context,
	handle JobHandle,
	policy PollPolicy,
	fetch StatusFetcher,
	progress ProgressFunc,
) (Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	policy = policy.normalize()
	start := time.Now()

	snapshot, err := fetch(ctx, handle.ID)
	if done, doneErr := checkSnapshot(handle, snapshot, err); done {
		if doneErr != nil {
			return nil, doneErr
		}
		return snapshot, nil
	}

	timer := time.NewTimer(policy.Interval)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		snapshot, err = fetch(ctx, handle.ID)
		done, doneErr := checkSnapshot(handle, snapshot, err)

		elapsed := time.Since(start)
		state, _ := classifySnapshot(handle.Kind, snapshot)
		emitProgress(progress, ProgressEvent{
			Job:     handle,
			Attempt: attempt,
			State:   state,
			Percent: percentComplete(elapsed, policy.Timeout),
			Message: statusInfo(snapshot),
		})

		if done {
			if doneErr != nil {
				return nil, doneErr
			}
			return snapshot, nil
		}
		if policy.Timeout > 0 && elapsed >= policy.Timeout {
			return nil, &TimeoutError{Job: handle.name(), Elapsed: elapsed}
		}
		timer.Reset(policy.Interval)
	}
}

func percentComplete(elapsed, timeout time.Duration) float64 {
	if timeout <= 0 {
		return ProgressIndeterminate
	}
	percent := float64(elapsed) / float64(timeout) * 100
	if percent > 100 {
		percent = 100
	}
	return percent
}

// WaitForBrowse waits for an asynchronous directory-browse request. Same
// state machine as WaitForCompletion but capped at BrowseMaxAttempts fetches
// spaced BrowsePollInterval apart instead of a wall-clock budget.
//
// A "complete" snapshot whose result is null or absent is a success: it is
// an empty directory, not a failure.
func WaitForBrowse(
	ctx context.Context,
	handle JobHandle,
	fetch StatusFetcher,
	progress ProgressFunc,
) (Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	handle.Kind = JobKindBrowse

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; attempt <= BrowseMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		snapshot, err := fetch(ctx, handle.ID)
		done, doneErr := checkSnapshot(handle, snapshot, err)

		state, _ := classifySnapshot(handle.Kind, snapshot)
		emitProgress(progress, ProgressEvent{
			Job:     handle,
			Attempt: attempt,
			State:   state,
			Percent: ProgressIndeterminate,
			Message: statusInfo(snapshot),
		})

		if done {
			if doneErr != nil {
				return nil, doneErr
			}
			return snapshot, nil
		}
		timer.Reset(BrowsePollInterval)
	}
	return nil, &TimeoutError{Job: handle.name(), Attempts: BrowseMaxAttempts}
}
