package wire

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "storekeeper.v1.StoreKeeper"

// Method names.
const (
	MethodLogin                 = "Login"
	MethodRequestVerification   = "RequestVerification"
	MethodVerifyEmail           = "VerifyEmail"
	MethodGetSettings           = "GetSettings"
	MethodUpdateSettings        = "UpdateSettings"
	MethodListUsers             = "ListUsers"
	MethodCreateUser            = "CreateUser"
	MethodUpdateUser            = "UpdateUser"
	MethodDeleteUser            = "DeleteUser"
	MethodResetLoginAttempts    = "ResetLoginAttempts"
	MethodListProducts          = "ListProducts"
	MethodCreateProduct         = "CreateProduct"
	MethodUpdateProduct         = "UpdateProduct"
	MethodDeleteProduct         = "DeleteProduct"
	MethodRecordStock           = "RecordStock"
	MethodListStockTransactions = "ListStockTransactions"
	MethodRecordSale            = "RecordSale"
	MethodListSales             = "ListSales"
	MethodSalesSummary          = "SalesSummary"
	MethodDashboard             = "Dashboard"
)

// FullMethod returns "/storekeeper.v1.StoreKeeper/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// StoreKeeperServer is the server API of the StoreKeeper service.
type StoreKeeperServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RequestVerification(context.Context, *RequestVerificationRequest) (*RequestVerificationResponse, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*Empty, error)
	GetSettings(context.Context, *Empty) (*Settings, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*Settings, error)
	ListUsers(context.Context, *Empty) (*ListUsersResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*User, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*User, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*Empty, error)
	ResetLoginAttempts(context.Context, *ResetLoginAttemptsRequest) (*Empty, error)
	ListProducts(context.Context, *Empty) (*ListProductsResponse, error)
	CreateProduct(context.Context, *CreateProductRequest) (*CreateProductResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*Product, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*Empty, error)
	RecordStock(context.Context, *RecordStockRequest) (*RecordStockResponse, error)
	ListStockTransactions(context.Context, *ListStockTransactionsRequest) (*ListStockTransactionsResponse, error)
	RecordSale(context.Context, *RecordSaleRequest) (*RecordSaleResponse, error)
	ListSales(context.Context, *SalesQuery) (*ListSalesResponse, error)
	SalesSummary(context.Context, *SalesQuery) (*Summary, error)
	Dashboard(context.Context, *Empty) (*Dashboard, error)
}

// RegisterStoreKeeperServer attaches srv to s.
func RegisterStoreKeeperServer(s grpc.ServiceRegistrar, srv StoreKeeperServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(StoreKeeperServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StoreKeeperServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StoreKeeperServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the StoreKeeper service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StoreKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodLogin, StoreKeeperServer.Login),
		unary(MethodRequestVerification, StoreKeeperServer.RequestVerification),
		unary(MethodVerifyEmail, StoreKeeperServer.VerifyEmail),
		unary(MethodGetSettings, StoreKeeperServer.GetSettings),
		unary(MethodUpdateSettings, StoreKeeperServer.UpdateSettings),
		unary(MethodListUsers, StoreKeeperServer.ListUsers),
		unary(MethodCreateUser, StoreKeeperServer.CreateUser),
		unary(MethodUpdateUser, StoreKeeperServer.UpdateUser),
		unary(MethodDeleteUser, StoreKeeperServer.DeleteUser),
		unary(MethodResetLoginAttempts, StoreKeeperServer.ResetLoginAttempts),
		unary(MethodListProducts, StoreKeeperServer.ListProducts),
		unary(MethodCreateProduct, StoreKeeperServer.CreateProduct),
		unary(MethodUpdateProduct, StoreKeeperServer.UpdateProduct),
		unary(MethodDeleteProduct, StoreKeeperServer.DeleteProduct),
		unary(MethodRecordStock, StoreKeeperServer.RecordStock),
		unary(MethodListStockTransactions, StoreKeeperServer.ListStockTransactions),
		unary(MethodRecordSale, StoreKeeperServer.RecordSale),
		unary(MethodListSales, StoreKeeperServer.ListSales),
		unary(MethodSalesSummary, StoreKeeperServer.SalesSummary),
		unary(MethodDashboard, StoreKeeperServer.Dashboard),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storekeeper/v1/storekeeper.json",
}
