package grpcserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/service"
	"github.com/and161185/storekeeper/internal/wire"
)

type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "127.0.0.1:12345" }

func TestLoggingUnary_Passthrough(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	ic := LoggingUnary(log)

	ctx := context.Background()

	ctx = peer.NewContext(ctx, &peer.Peer{Addr: fakeAddr{}})

	h := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/sk.Service/Method"}

	resp, err := ic(ctx, "req", info, h)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s, _ := resp.(string); s != "ok" {
		t.Fatalf("resp mismatch: %v", resp)
	}

	wantErr := errors.New("boom")
	hErr := func(ctx context.Context, req any) (any, error) { return nil, wantErr }
	_, err = ic(ctx, "req", info, hErr)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want original error, got: %v", err)
	}
}

func TestRecoverUnary_CatchesPanic(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	ic := RecoverUnary(log)

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: "/sk.Service/Panic"}

	panicH := func(ctx context.Context, req any) (any, error) {
		panic("oh no")
	}

	_, err := ic(ctx, "req", info, panicH)
	if err == nil {
		t.Fatalf("expected error from panic")
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Internal {
		t.Fatalf("want codes.Internal, got: %v", err)
	}
}

func TestRecoverUnary_NoPanicPassThrough(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	ic := RecoverUnary(log)

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: "/sk.Service/Ok"}

	h := func(ctx context.Context, req any) (any, error) { return 42, nil }

	resp, err := ic(ctx, "req", info, h)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.(int) != 42 {
		t.Fatalf("resp mismatch: %v", resp)
	}
}

// actorEcho returns the actor the interceptor put into context.
func actorEcho(ctx context.Context, _ any) (any, error) {
	a, ok := ActorFromCtx(ctx)
	if !ok {
		return "anonymous", nil
	}
	return a.Username, nil
}

// jwtAuth checks signatures like the auth service and refuses ids listed in gone.
type jwtAuth struct {
	key    []byte
	leeway time.Duration
	gone   map[string]bool
}

var _ Authenticator = (*jwtAuth)(nil)

func (a *jwtAuth) Authenticate(_ context.Context, token string) (service.Actor, error) {
	actor, err := service.ParseAccessToken(a.key, token, a.leeway)
	if err != nil {
		return service.Actor{}, err
	}
	if a.gone[actor.UserID] {
		return service.Actor{}, errs.ErrUnauthorized
	}
	return actor, nil
}

func TestAuthUnary_ProtectedMethods(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	ic := AuthUnary(&jwtAuth{key: key, leeway: 30 * time.Second, gone: map[string]bool{"u9": true}})
	info := &grpc.UnaryServerInfo{FullMethod: wire.FullMethod(wire.MethodListProducts)}
	now := time.Now().UTC()

	cases := []struct {
		name string
		ctx  context.Context
		want codes.Code
	}{
		{"no metadata", context.Background(), codes.Unauthenticated},
		{"garbage", ctxWithAuth("not-a-jwt"), codes.Unauthenticated},
		{"expired", ctxWithAuth(makeJWT(t, "u1", "alice", model.RoleAdmin, key, jwt.SigningMethodHS256, now.Add(-2*time.Hour), time.Hour)), codes.Unauthenticated},
		{"wrong key", ctxWithAuth(makeJWT(t, "u1", "alice", model.RoleAdmin, []byte("other"), jwt.SigningMethodHS256, now, time.Hour)), codes.Unauthenticated},
		{"wrong alg", ctxWithAuth(makeJWT(t, "u1", "alice", model.RoleAdmin, key, jwt.SigningMethodHS384, now, time.Hour)), codes.Unauthenticated},
		{"bad role", ctxWithAuth(makeJWT(t, "u1", "alice", model.Role("root"), key, jwt.SigningMethodHS256, now, time.Hour)), codes.Unauthenticated},
		{"deleted account", ctxWithAuth(makeJWT(t, "u9", "mallory", model.RoleAdmin, key, jwt.SigningMethodHS256, now, time.Hour)), codes.Unauthenticated},
		{"valid", ctxWithAuth(makeJWT(t, "u1", "alice", model.RoleAdmin, key, jwt.SigningMethodHS256, now, time.Hour)), codes.OK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := ic(tc.ctx, nil, info, actorEcho)
			if got := status.Code(err); got != tc.want {
				t.Fatalf("code=%s want %s (err=%v)", got, tc.want, err)
			}
			if tc.want == codes.OK && resp != "alice" {
				t.Fatalf("actor not in context: %v", resp)
			}
		})
	}
}

func TestAuthUnary_PublicMethods(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	ic := AuthUnary(&jwtAuth{key: key, gone: map[string]bool{"u9": true}})
	info := &grpc.UnaryServerInfo{FullMethod: wire.FullMethod(wire.MethodGetSettings)}

	resp, err := ic(context.Background(), nil, info, actorEcho)
	if err != nil || resp != "anonymous" {
		t.Fatalf("public without token: resp=%v err=%v", resp, err)
	}

	resp, err = ic(ctxWithAuth("junk"), nil, info, actorEcho)
	if err != nil || resp != "anonymous" {
		t.Fatalf("public with bad token must still pass: resp=%v err=%v", resp, err)
	}

	tok := makeJWT(t, "u1", "owner", model.RoleOwner, key, jwt.SigningMethodHS256, time.Now().UTC(), time.Hour)
	resp, err = ic(ctxWithAuth(tok), nil, info, actorEcho)
	if err != nil || resp != "owner" {
		t.Fatalf("public with valid token: resp=%v err=%v", resp, err)
	}

	gone := makeJWT(t, "u9", "mallory", model.RoleOwner, key, jwt.SigningMethodHS256, time.Now().UTC(), time.Hour)
	resp, err = ic(ctxWithAuth(gone), nil, info, actorEcho)
	if err != nil || resp != "anonymous" {
		t.Fatalf("public with deleted account: resp=%v err=%v", resp, err)
	}
}
