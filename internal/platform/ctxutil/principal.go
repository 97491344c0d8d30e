package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type principalKey struct{}

// Principal is the verified identity attached by the auth middleware.
type Principal struct {
	ID        uuid.UUID
	Username  string
	FullName  string
	AvatarURL string
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return p
	}
	return nil
}

// PrincipalID returns uuid.Nil when no principal is attached.
func PrincipalID(ctx context.Context) uuid.UUID {
	if p := GetPrincipal(ctx); p != nil {
		return p.ID
	}
	return uuid.Nil
}
