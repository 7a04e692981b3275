package wire

import (
	"context"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/test/bufconn"
)

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	require.Equal(t, CodecName, c.Name())
}

func TestCodec_DecimalsKeepPrecision(t *testing.T) {
	in := RecordSaleRequest{ProductID: "p1", Quantity: decimal.RequireFromString("0.125")}
	b, err := Codec{}.Marshal(&in)
	require.NoError(t, err)
	require.JSONEq(t, `{"productId":"p1","quantity":"0.125"}`, string(b))

	var out RecordSaleRequest
	require.NoError(t, Codec{}.Unmarshal(b, &out))
	require.True(t, out.Quantity.Equal(in.Quantity))

	// clients may send plain numbers too
	require.NoError(t, Codec{}.Unmarshal([]byte(`{"quantity":2.5}`), &out))
	require.Equal(t, "2.5", out.Quantity.String())
}

func TestCodec_EmptyPayloadAndGarbage(t *testing.T) {
	var e Empty
	require.NoError(t, Codec{}.Unmarshal(nil, &e))
	require.Error(t, Codec{}.Unmarshal([]byte("{"), &e))
}

func TestServiceDesc_MethodsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range ServiceDesc.Methods {
		require.False(t, seen[m.MethodName], "duplicate %s", m.MethodName)
		seen[m.MethodName] = true
	}
	require.Len(t, seen, 20)
	require.Equal(t, "/storekeeper.v1.StoreKeeper/Login", FullMethod(MethodLogin))
}

type echoServer struct {
	StoreKeeperServer
	gotMethod string
}

func (e *echoServer) Login(_ context.Context, in *LoginRequest) (*LoginResponse, error) {
	return &LoginResponse{AccessToken: "tok-" + in.Username, User: User{Username: in.Username}}, nil
}

func TestClient_RoundTripThroughInterceptor(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := &echoServer{}
	s := grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		srv.gotMethod = info.FullMethod
		return h(ctx, req)
	}))
	RegisterStoreKeeperServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })

	resp, err := NewClient(cc).Login(context.Background(), &LoginRequest{Username: "bob", Password: "x"})
	require.NoError(t, err)
	require.Equal(t, "tok-bob", resp.AccessToken)
	require.Equal(t, "bob", resp.User.Username)
	require.Equal(t, FullMethod(MethodLogin), srv.gotMethod)
}
