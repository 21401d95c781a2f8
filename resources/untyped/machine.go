package untyped

import (
	"context"
	"net/http"

	"github.com/verge-io/go-verge-client/core"
)

type Machine struct {
	*core.VergeResource
}

// PowerActionWithContext issues a power action ("poweron", "poweroff",
// "reset", "kill") against the machine. Actions that spawn a task return a
// row referencing it; use MaybeAsyncResultFromRecord to wait on it.
func (m *Machine) PowerActionWithContext(ctx context.Context, machineId any, action string) (core.Record, error) {
	path := core.BuildResourcePathWithID(m.GetResourcePath(), machineId, "actions")
	return core.Request[core.Record](ctx, m, http.MethodPost, path, nil, core.Params{"action": action})
}

// PowerAction issues a power action using the bound REST context.
func (m *Machine) PowerAction(machineId any, action string) (core.Record, error) {
	return m.PowerActionWithContext(m.Rest.GetCtx(), machineId, action)
}

// DrivesWithContext lists the drives attached to the machine.
func (m *Machine) DrivesWithContext(ctx context.Context, machineId any) (core.RecordSet, error) {
	path := core.BuildResourcePathWithID(m.GetResourcePath(), machineId, "drives")
	return core.Request[core.RecordSet](ctx, m, http.MethodGet, path, nil, nil)
}

// Drives lists the drives attached to the machine using the bound REST context.
func (m *Machine) Drives(machineId any) (core.RecordSet, error) {
	return m.DrivesWithContext(m.Rest.GetCtx(), machineId)
}
