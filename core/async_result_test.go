package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// countingFetcher replays a fixed sequence of snapshots and keeps repeating
// the last one once the sequence runs out.
type countingFetcher struct {
	calls     atomic.Int64
	snapshots []Record
	errs      []error
}

func (f *countingFetcher) fetch(_ context.Context, _ any) (Record, error) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.snapshots) {
		n = len(f.snapshots) - 1
	}
	var err error
	if n < len(f.errs) {
		err = f.errs[n]
	}
	return f.snapshots[n], err
}

func TestWaitForCompletionImmediateReturn(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{{"$key": 5, "status": "idle", "running": false}},
	}
	handle := JobHandle{ID: 5, Kind: JobKindTask}

	start := time.Now()
	snapshot, err := WaitForCompletion(context.Background(), handle, PollPolicy{Timeout: time.Minute}, fetcher.fetch, nil)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if running := snapshot["running"].(bool); running {
		t.Errorf("expected terminal snapshot, got running=true")
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 fetch for an already-terminal job, got %d", got)
	}
	if elapsed >= MinPollInterval {
		t.Errorf("immediate return took %v, poll loop was entered", elapsed)
	}
}

func TestWaitForCompletionIdempotentRepoll(t *testing.T) {
	terminal := Record{"$key": 5, "status": "idle", "running": false}
	fetcher := &countingFetcher{snapshots: []Record{terminal}}
	handle := JobHandle{ID: 5, Kind: JobKindTask}

	first, err := WaitForCompletion(context.Background(), handle, PollPolicy{}, fetcher.fetch, nil)
	if err != nil {
		t.Fatalf("first wait: %v", err)
	}
	second, err := WaitForCompletion(context.Background(), handle, PollPolicy{}, fetcher.fetch, nil)
	if err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if first["status"] != second["status"] || first["$key"] != second["$key"] {
		t.Errorf("re-polling a terminal job changed the snapshot: %v vs %v", first, second)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("expected one fetch per wait, got %d total", got)
	}
}

func TestWaitForCompletionTimeout(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{{"$key": 7, "status": "running", "running": true}},
	}
	handle := JobHandle{ID: 7, Kind: JobKindTask}
	policy := PollPolicy{Timeout: time.Second, Interval: time.Second}

	start := time.Now()
	_, err := WaitForCompletion(context.Background(), handle, policy, fetcher.fetch, nil)
	elapsed := time.Since(start)

	if !IsTimeoutErr(err) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if elapsed < policy.Timeout {
		t.Errorf("timed out after %v, before the %v budget", elapsed, policy.Timeout)
	}
	if elapsed >= policy.Timeout+policy.Interval+500*time.Millisecond {
		t.Errorf("timed out after %v, more than one interval past the budget", elapsed)
	}
}

func TestWaitForCompletionVanishedJob(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{
			{"$key": 9, "status": "running", "running": true},
			{},
		},
	}
	handle := JobHandle{ID: 9, Kind: JobKindTask, DisplayName: "clone vm"}

	_, err := WaitForCompletion(context.Background(), handle, PollPolicy{Interval: time.Second}, fetcher.fetch, nil)
	if !IsJobVanishedErr(err) {
		t.Fatalf("expected JobVanishedError, got %v", err)
	}
}

func TestWaitForCompletionVanishedOnNotFound(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{nil},
		errs:      []error{&NotFoundError{Resource: "tasks", Query: "id=11"}},
	}
	handle := JobHandle{ID: 11, Kind: JobKindTask}

	_, err := WaitForCompletion(context.Background(), handle, PollPolicy{}, fetcher.fetch, nil)
	if !IsJobVanishedErr(err) {
		t.Fatalf("expected JobVanishedError for a not-found fetch, got %v", err)
	}
}

func TestWaitForCompletionJobFailed(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{{"$key": 3, "status": "error", "status_info": "disk full"}},
	}
	handle := JobHandle{ID: 3, Kind: JobKindImport}

	_, err := WaitForCompletion(context.Background(), handle, PollPolicy{}, fetcher.fetch, nil)
	if !IsJobFailedErr(err) {
		t.Fatalf("expected JobFailedError, got %v", err)
	}
	failedErr := err.(*JobFailedError)
	if failedErr.State != "error" || failedErr.Info != "disk full" {
		t.Errorf("error lost server diagnostics: %+v", failedErr)
	}
}

func TestWaitForCompletionImportSequence(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{
			{"$key": 1, "status": "running"},
			{"$key": 1, "status": "running"},
			{"$key": 1, "status": "complete", "vm": 42},
		},
	}
	handle := JobHandle{ID: "abc", Kind: JobKindImport}

	snapshot, err := WaitForCompletion(context.Background(), handle, PollPolicy{Interval: time.Second}, fetcher.fetch, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm, _ := toInt(snapshot["vm"]); vm != 42 {
		t.Errorf("expected vm 42 on the terminal snapshot, got %v", snapshot["vm"])
	}
	if got := fetcher.calls.Load(); got != 3 {
		t.Errorf("expected 3 fetches, got %d", got)
	}
}

func TestWaitForCompletionCancellation(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{{"$key": 8, "status": "running", "running": true}},
	}
	handle := JobHandle{ID: 8, Kind: JobKindTask}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := WaitForCompletion(ctx, handle, PollPolicy{Interval: 10 * time.Second}, fetcher.fetch, nil)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation took %v, wait was not interruptible", elapsed)
	}
}

func TestWaitForCompletionProgressEvents(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{
			{"$key": 2, "status": "running", "running": true},
			{"$key": 2, "status": "running", "running": true, "status_info": "copying"},
			{"$key": 2, "status": "idle", "running": false},
		},
	}
	handle := JobHandle{ID: 2, Kind: JobKindTask}

	var events []ProgressEvent
	_, err := WaitForCompletion(context.Background(), handle, PollPolicy{Timeout: time.Minute, Interval: time.Second}, fetcher.fetch, func(e ProgressEvent) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One event per tick; the immediate first fetch does not tick.
	if len(events) != 2 {
		t.Fatalf("expected 2 progress events, got %d", len(events))
	}
	if events[0].Percent < 0 || events[0].Percent > 100 {
		t.Errorf("finite timeout should give a bounded percent, got %v", events[0].Percent)
	}
	if events[0].Message != "copying" {
		t.Errorf("expected the server status_info message, got %q", events[0].Message)
	}
}

func TestWaitForCompletionIndeterminateProgress(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{
			{"$key": 2, "status": "running", "running": true},
			{"$key": 2, "status": "idle", "running": false},
		},
	}
	handle := JobHandle{ID: 2, Kind: JobKindTask}

	var percents []float64
	_, err := WaitForCompletion(context.Background(), handle, PollPolicy{Interval: time.Second}, fetcher.fetch, func(e ProgressEvent) {
		percents = append(percents, e.Percent)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range percents {
		if p != ProgressIndeterminate {
			t.Errorf("infinite timeout should report indeterminate progress, got %v", p)
		}
	}
}

func TestWaitForCompletionProgressPanicSwallowed(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{
			{"$key": 4, "status": "running", "running": true},
			{"$key": 4, "status": "idle", "running": false},
		},
	}
	handle := JobHandle{ID: 4, Kind: JobKindTask}

	snapshot, err := WaitForCompletion(context.Background(), handle, PollPolicy{Interval: time.Second}, fetcher.fetch, func(ProgressEvent) {
		panic("broken progress bar")
	})
	if err != nil {
		t.Fatalf("progress sink panic leaked into the wait outcome: %v", err)
	}
	if snapshot["status"] != "idle" {
		t.Errorf("unexpected terminal snapshot: %v", snapshot)
	}
}

func TestPollPolicyNormalize(t *testing.T) {
	tests := []struct {
		name     string
		policy   PollPolicy
		interval time.Duration
		timeout  time.Duration
	}{
		{"defaults", PollPolicy{}, DefaultPollInterval, 0},
		{"below minimum", PollPolicy{Interval: 200 * time.Millisecond}, MinPollInterval, 0},
		{"above maximum", PollPolicy{Interval: 5 * time.Minute}, MaxPollInterval, 0},
		{"in range", PollPolicy{Interval: 10 * time.Second, Timeout: time.Hour}, 10 * time.Second, time.Hour},
		{"negative timeout", PollPolicy{Timeout: -time.Second}, DefaultPollInterval, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.normalize()
			if got.Interval != tt.interval {
				t.Errorf("interval = %v, want %v", got.Interval, tt.interval)
			}
			if got.Timeout != tt.timeout {
				t.Errorf("timeout = %v, want %v", got.Timeout, tt.timeout)
			}
		})
	}
}

func TestClassifySnapshot(t *testing.T) {
	tests := []struct {
		name     string
		kind     JobKind
		snapshot Record
		state    string
		outcome  jobOutcome
	}{
		{"task idle", JobKindTask, Record{"status": "idle", "running": false}, "idle", outcomeSuccess},
		{"task stopped running", JobKindTask, Record{"status": "cloning", "running": false}, "cloning", outcomeSuccess},
		{"task running", JobKindTask, Record{"status": "cloning", "running": true}, "cloning", outcomePending},
		{"task error", JobKindTask, Record{"status": "error", "running": false}, "error", outcomeFailed},
		{"task aborted", JobKindTask, Record{"status": "aborted"}, "aborted", outcomeFailed},
		{"import complete", JobKindImport, Record{"status": "complete"}, "complete", outcomeSuccess},
		{"import initializing", JobKindImport, Record{"status": "initializing"}, "initializing", outcomePending},
		{"import aborted", JobKindImport, Record{"status": "aborted"}, "aborted", outcomeFailed},
		{"browse pending", JobKindBrowse, Record{"status": "pending"}, "pending", outcomePending},
		{"browse complete", JobKindBrowse, Record{"status": "complete", "result": nil}, "complete", outcomeSuccess},
		{"browse error", JobKindBrowse, Record{"status": "error"}, "error", outcomeFailed},
		{"uppercase state", JobKindImport, Record{"status": "Complete"}, "complete", outcomeSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, outcome := classifySnapshot(tt.kind, tt.snapshot)
			if state != tt.state || outcome != tt.outcome {
				t.Errorf("classifySnapshot() = (%q, %d), want (%q, %d)", state, outcome, tt.state, tt.outcome)
			}
		})
	}
}

func TestWaitForBrowseEmptyListingSuccess(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{
			{"$key": 12, "status": "pending"},
			{"$key": 12, "status": "complete", "result": nil},
		},
	}
	handle := JobHandle{ID: 12}

	snapshot, err := WaitForBrowse(context.Background(), handle, fetcher.fetch, nil)
	if err != nil {
		t.Fatalf("null result on a complete browse must be a success, got %v", err)
	}
	if snapshot["status"] != "complete" {
		t.Errorf("unexpected snapshot: %v", snapshot)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("expected 2 fetches, got %d", got)
	}
}

func TestWaitForBrowseError(t *testing.T) {
	fetcher := &countingFetcher{
		snapshots: []Record{{"$key": 13, "status": "error", "result": "permission denied"}},
	}
	handle := JobHandle{ID: 13}

	_, err := WaitForBrowse(context.Background(), handle, fetcher.fetch, nil)
	if !IsJobFailedErr(err) {
		t.Fatalf("expected JobFailedError, got %v", err)
	}
	if failedErr := err.(*JobFailedError); failedErr.Info != "permission denied" {
		t.Errorf("error lost the browse diagnostic: %+v", failedErr)
	}
}

func TestWaitForBrowseAttemptCap(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the full browse attempt budget")
	}
	fetcher := &countingFetcher{
		snapshots: []Record{{"$key": 14, "status": "pending"}},
	}
	handle := JobHandle{ID: 14}

	_, err := WaitForBrowse(context.Background(), handle, fetcher.fetch, nil)
	if !IsTimeoutErr(err) {
		t.Fatalf("expected TimeoutError after the attempt budget, got %v", err)
	}
	if timeoutErr := err.(*TimeoutError); timeoutErr.Attempts != BrowseMaxAttempts {
		t.Errorf("expected %d attempts recorded, got %d", BrowseMaxAttempts, timeoutErr.Attempts)
	}
	if got := fetcher.calls.Load(); got != BrowseMaxAttempts {
		t.Errorf("expected %d fetches, got %d", BrowseMaxAttempts, got)
	}
}
