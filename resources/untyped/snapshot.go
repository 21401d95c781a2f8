package untyped

import (
	"context"
	"net/http"

	"github.com/verge-io/go-verge-client/core"
)

type Snapshot struct {
	*core.VergeResource
}

// RestoreWithContext restores the system from the snapshot. The restore runs
// as a server-side task; the returned row references it for waiting.
func (s *Snapshot) RestoreWithContext(ctx context.Context, snapshotId any) (core.Record, error) {
	path := core.BuildResourcePathWithID(s.GetResourcePath(), snapshotId, "actions")
	return core.Request[core.Record](ctx, s, http.MethodPost, path, nil, core.Params{"action": "restore"})
}

// Restore restores the system from the snapshot using the bound REST context.
func (s *Snapshot) Restore(snapshotId any) (core.Record, error) {
	return s.RestoreWithContext(s.Rest.GetCtx(), snapshotId)
}
