package untyped

import (
	"context"
	"fmt"
	"time"

	"github.com/verge-io/go-verge-client/core"
)

type Task struct {
	*core.VergeResource
}

// statusFetcher adapts GetByIdWithContext to the poller contract. A not-found
// error surfaces as a vanished job inside the wait loop.
func (t *Task) statusFetcher(ctx context.Context, id any) (core.Record, error) {
	return t.GetByIdWithContext(ctx, id)
}

// WaitTaskWithContext blocks until the task stops running, fails, or the
// policy timeout elapses. One status fetch happens immediately, so a task
// that already finished returns without sleeping.
func (t *Task) WaitTaskWithContext(ctx context.Context, taskId any, policy core.PollPolicy, progress core.ProgressFunc) (core.Record, error) {
	handle := core.JobHandle{ID: taskId, Kind: core.JobKindTask}
	return core.WaitForCompletion(ctx, handle, policy, t.statusFetcher, progress)
}

// WaitTask waits for the task with the given wall-clock timeout and the
// default polling interval. A zero timeout waits indefinitely.
func (t *Task) WaitTask(taskId any, timeout time.Duration) (core.Record, error) {
	return t.WaitTaskWithContext(t.Rest.GetCtx(), taskId, core.PollPolicy{Timeout: timeout}, nil)
}

// AsyncResult is a handle to a server-side task spawned by another request.
// It carries everything needed to wait on the task later.
type AsyncResult struct {
	TaskId   int64
	TaskName string
	Rest     core.VergeRest
	Policy   core.PollPolicy
	Progress core.ProgressFunc
	ctx      context.Context
}

// NewAsyncResult creates a new AsyncResult from a task key and REST client.
func NewAsyncResult(ctx context.Context, taskId int64, rest core.VergeRest) *AsyncResult {
	return &AsyncResult{
		ctx:    ctx,
		TaskId: taskId,
		Rest:   rest,
	}
}

// Wait blocks until the task completes, with the given wall-clock timeout.
// If the result's context is not set it falls back to the rest client's.
func (ar *AsyncResult) Wait(timeout time.Duration) (core.Record, error) {
	ctx := ar.ctx
	if ctx == nil {
		ctx = ar.Rest.GetCtx()
	}
	policy := ar.Policy
	policy.Timeout = timeout
	return ar.wait(ctx, policy)
}

// WaitWithContext blocks until the task completes or the context is done,
// using the policy stored on the result.
func (ar *AsyncResult) WaitWithContext(ctx context.Context) (core.Record, error) {
	return ar.wait(ctx, ar.Policy)
}

func (ar *AsyncResult) wait(ctx context.Context, policy core.PollPolicy) (core.Record, error) {
	tasks := ar.Rest.GetResourceMap()["Task"].(*Task)
	handle := core.JobHandle{ID: ar.TaskId, Kind: core.JobKindTask, DisplayName: ar.TaskName}
	return core.WaitForCompletion(ctx, handle, policy, tasks.statusFetcher, ar.Progress)
}

// MaybeAsyncResultFromRecord returns an AsyncResult when the response record
// references a spawned task, nil otherwise. VergeOS action endpoints answer
// with a row that carries the new task key in a "task" field.
func MaybeAsyncResultFromRecord(ctx context.Context, record core.Record, rest core.VergeRest) *AsyncResult {
	if record.Empty() {
		return nil
	}
	rawTask, ok := record["task"]
	if !ok {
		return nil
	}
	taskRec := core.Record{"$key": rawTask}
	result := NewAsyncResult(ctx, taskRec.RecordKey(), rest)
	if name, ok := record["name"]; ok {
		result.TaskName = fmt.Sprintf("%v", name)
	}
	return result
}
