package untyped

import (
	"context"
	"net/http"

	"github.com/verge-io/go-verge-client/core"
)

// NASService is the NAS appliance service a volume belongs to.
type NASService struct {
	*core.VergeResource
}

// RestartWithContext restarts the NAS service. The action spawns a task; use
// MaybeAsyncResultFromRecord on the returned row to wait for it.
func (n *NASService) RestartWithContext(ctx context.Context, serviceId any) (core.Record, error) {
	path := core.BuildResourcePathWithID(n.GetResourcePath(), serviceId, "actions")
	return core.Request[core.Record](ctx, n, http.MethodPost, path, nil, core.Params{"action": "restart"})
}

// Restart restarts the NAS service using the bound REST context.
func (n *NASService) Restart(serviceId any) (core.Record, error) {
	return n.RestartWithContext(n.Rest.GetCtx(), serviceId)
}

// VolumesWithContext lists the volumes served by this service.
func (n *NASService) VolumesWithContext(ctx context.Context, serviceId any) (core.RecordSet, error) {
	volumes := n.Rest.GetResourceMap()["NASVolume"].(*NASVolume)
	return volumes.ListWithContext(ctx, core.Params{"filter": filterEq("service", serviceId)})
}

// Volumes lists the volumes served by this service using the bound REST context.
func (n *NASService) Volumes(serviceId any) (core.RecordSet, error) {
	return n.VolumesWithContext(n.Rest.GetCtx(), serviceId)
}
