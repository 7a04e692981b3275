package grpcserver

import (
	"context"

	"github.com/and161185/storekeeper/internal/service"
)

type ctxKey string

const actorKey ctxKey = "sk.actor"

// WithActor stores the authenticated caller in context.
func WithActor(ctx context.Context, a service.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromCtx fetches the authenticated caller from context.
func ActorFromCtx(ctx context.Context) (service.Actor, bool) {
	v := ctx.Value(actorKey)
	if v == nil {
		return service.Actor{}, false
	}
	a, ok := v.(service.Actor)
	return a, ok
}
