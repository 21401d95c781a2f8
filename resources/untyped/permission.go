package untyped

import (
	"context"

	"github.com/verge-io/go-verge-client/core"
)

// Permission rows grant a user or group a role over a target table row.
type Permission struct {
	*core.VergeResource
}

// ForOwnerWithContext lists the permissions held by a user or group.
func (p *Permission) ForOwnerWithContext(ctx context.Context, owner string) (core.RecordSet, error) {
	return p.ListWithContext(ctx, core.Params{"filter": filterEq("owner", owner)})
}

// ForOwner lists the permissions held by a user or group using the bound REST context.
func (p *Permission) ForOwner(owner string) (core.RecordSet, error) {
	return p.ForOwnerWithContext(p.Rest.GetCtx(), owner)
}
