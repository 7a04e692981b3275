package grpcserver

import (
	"context"
	"testing"

	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/service"
)

func TestWithActor_And_ActorFromCtx(t *testing.T) {
	t.Parallel()

	if a, ok := ActorFromCtx(context.Background()); ok || a != (service.Actor{}) {
		t.Fatalf("expected no actor in empty ctx")
	}

	want := service.Actor{UserID: "u1", Username: "owner", Role: model.RoleOwner}
	ctx := WithActor(context.Background(), want)

	got, ok := ActorFromCtx(ctx)
	if !ok {
		t.Fatalf("expected actor in ctx")
	}
	if got != want {
		t.Fatalf("mismatch: got %+v, want %+v", got, want)
	}

	bad := context.WithValue(context.Background(), actorKey, "not-an-actor")
	if a, ok := ActorFromCtx(bad); ok || a != (service.Actor{}) {
		t.Fatalf("expected miss on wrong typed value")
	}
}
