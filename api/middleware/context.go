package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type contextKey string

const ctxActor contextKey = "actor"

// WithActor stores the authenticated caller for downstream handlers.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the caller seeded by Auth, or false for anonymous requests.
func ActorFromContext(ctx context.Context) (types.Actor, bool) {
	if ctx == nil {
		return types.Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(types.Actor)
	if !ok || actor.UserID == uuid.Nil {
		return types.Actor{}, false
	}
	return actor, true
}

func UserIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	actor, _ := ActorFromContext(ctx)
	return actor.Role
}
