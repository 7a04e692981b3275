package wire

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed StoreKeeper client. Every call is sent with the JSON content-subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *Client) RequestVerification(ctx context.Context, in *RequestVerificationRequest, opts ...grpc.CallOption) (*RequestVerificationResponse, error) {
	return invoke[RequestVerificationResponse](ctx, c.cc, MethodRequestVerification, in, opts)
}

func (c *Client) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodVerifyEmail, in, opts)
}

func (c *Client) GetSettings(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, MethodGetSettings, in, opts)
}

func (c *Client) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, MethodUpdateSettings, in, opts)
}

func (c *Client) ListUsers(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c.cc, MethodListUsers, in, opts)
}

func (c *Client) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodCreateUser, in, opts)
}

func (c *Client) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodUpdateUser, in, opts)
}

func (c *Client) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteUser, in, opts)
}

func (c *Client) ResetLoginAttempts(ctx context.Context, in *ResetLoginAttemptsRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodResetLoginAttempts, in, opts)
}

func (c *Client) ListProducts(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, MethodListProducts, in, opts)
}

func (c *Client) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*CreateProductResponse, error) {
	return invoke[CreateProductResponse](ctx, c.cc, MethodCreateProduct, in, opts)
}

func (c *Client) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*Product, error) {
	return invoke[Product](ctx, c.cc, MethodUpdateProduct, in, opts)
}

func (c *Client) DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteProduct, in, opts)
}

func (c *Client) RecordStock(ctx context.Context, in *RecordStockRequest, opts ...grpc.CallOption) (*RecordStockResponse, error) {
	return invoke[RecordStockResponse](ctx, c.cc, MethodRecordStock, in, opts)
}

func (c *Client) ListStockTransactions(ctx context.Context, in *ListStockTransactionsRequest, opts ...grpc.CallOption) (*ListStockTransactionsResponse, error) {
	return invoke[ListStockTransactionsResponse](ctx, c.cc, MethodListStockTransactions, in, opts)
}

func (c *Client) RecordSale(ctx context.Context, in *RecordSaleRequest, opts ...grpc.CallOption) (*RecordSaleResponse, error) {
	return invoke[RecordSaleResponse](ctx, c.cc, MethodRecordSale, in, opts)
}

func (c *Client) ListSales(ctx context.Context, in *SalesQuery, opts ...grpc.CallOption) (*ListSalesResponse, error) {
	return invoke[ListSalesResponse](ctx, c.cc, MethodListSales, in, opts)
}

func (c *Client) SalesSummary(ctx context.Context, in *SalesQuery, opts ...grpc.CallOption) (*Summary, error) {
	return invoke[Summary](ctx, c.cc, MethodSalesSummary, in, opts)
}

func (c *Client) Dashboard(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Dashboard, error) {
	return invoke[Dashboard](ctx, c.cc, MethodDashboard, in, opts)
}
