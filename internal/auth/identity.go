package auth

import (
	"context"

	"github.com/fairyhunter13/storefront/internal/model"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Email  string
	Role   model.Role
}

func (i Identity) IsAdmin() bool { return i.Role == model.RoleAdmin }

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
