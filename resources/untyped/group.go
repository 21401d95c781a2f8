package untyped

import (
	"context"
	"net/http"

	"github.com/verge-io/go-verge-client/core"
)

type Group struct {
	*core.VergeResource
}

// AddMemberWithContext adds a user to the group.
func (g *Group) AddMemberWithContext(ctx context.Context, groupId, userId any) (core.Record, error) {
	path := core.BuildResourcePathWithID(g.GetResourcePath(), groupId, "members")
	return core.Request[core.Record](ctx, g, http.MethodPost, path, nil, core.Params{"member": userId})
}

// AddMember adds a user to the group using the bound REST context.
func (g *Group) AddMember(groupId, userId any) (core.Record, error) {
	return g.AddMemberWithContext(g.Rest.GetCtx(), groupId, userId)
}

// MembersWithContext lists the members of the group.
func (g *Group) MembersWithContext(ctx context.Context, groupId any) (core.RecordSet, error) {
	path := core.BuildResourcePathWithID(g.GetResourcePath(), groupId, "members")
	return core.Request[core.RecordSet](ctx, g, http.MethodGet, path, nil, nil)
}

// Members lists the members of the group using the bound REST context.
func (g *Group) Members(groupId any) (core.RecordSet, error) {
	return g.MembersWithContext(g.Rest.GetCtx(), groupId)
}
