package untyped

import (
	"context"
	"time"

	"github.com/verge-io/go-verge-client/core"
)

// MachineImport drives server-side VM import jobs. An import walks through
// initializing/running before landing on complete, error or aborted; the
// completed row references the new VM.
type MachineImport struct {
	*core.VergeResource
}

// StartWithContext submits a new import job. The body names the uploaded
// media file and the shape of the VM to create.
func (mi *MachineImport) StartWithContext(ctx context.Context, body core.Params) (core.Record, error) {
	return mi.CreateWithContext(ctx, body)
}

// Start submits a new import job using the bound REST context.
func (mi *MachineImport) Start(body core.Params) (core.Record, error) {
	return mi.StartWithContext(mi.Rest.GetCtx(), body)
}

// WaitImportWithContext polls the import job until it completes or fails.
// With policy.FetchResult set, the imported VM row is fetched and returned
// instead of the job snapshot once the job completes.
func (mi *MachineImport) WaitImportWithContext(ctx context.Context, importId any, policy core.PollPolicy, progress core.ProgressFunc) (core.Record, error) {
	handle := core.JobHandle{ID: importId, Kind: core.JobKindImport}
	snapshot, err := core.WaitForCompletion(ctx, handle, policy, func(ctx context.Context, id any) (core.Record, error) {
		return mi.GetByIdWithContext(ctx, id)
	}, progress)
	if err != nil {
		return nil, err
	}
	if !policy.FetchResult {
		return snapshot, nil
	}
	vmRef, ok := snapshot["vm"]
	if !ok || vmRef == nil {
		return snapshot, nil
	}
	machines := mi.Rest.GetResourceMap()["Machine"].(*Machine)
	return machines.GetByIdWithContext(ctx, vmRef)
}

// WaitImport waits for the import with the given wall-clock timeout and the
// default polling interval, returning the imported VM row on success.
func (mi *MachineImport) WaitImport(importId any, timeout time.Duration) (core.Record, error) {
	policy := core.PollPolicy{Timeout: timeout, FetchResult: true}
	return mi.WaitImportWithContext(mi.Rest.GetCtx(), importId, policy, nil)
}
