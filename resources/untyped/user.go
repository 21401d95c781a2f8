package untyped

import (
	"context"

	"github.com/verge-io/go-verge-client/core"
)

type User struct {
	*core.VergeResource
}

// SetPasswordWithContext updates the user's password.
func (u *User) SetPasswordWithContext(ctx context.Context, userId any, password string) (core.Record, error) {
	return u.UpdateWithContext(ctx, userId, core.Params{"password": password})
}

// SetPassword updates the user's password using the bound REST context.
func (u *User) SetPassword(userId any, password string) (core.Record, error) {
	return u.SetPasswordWithContext(u.Rest.GetCtx(), userId, password)
}

// GetByNameWithContext fetches the user row by login name.
func (u *User) GetByNameWithContext(ctx context.Context, name string) (core.Record, error) {
	return u.GetWithContext(ctx, core.Params{"filter": filterEq("name", name)})
}

// GetByName fetches the user row by login name using the bound REST context.
func (u *User) GetByName(name string) (core.Record, error) {
	return u.GetByNameWithContext(u.Rest.GetCtx(), name)
}
