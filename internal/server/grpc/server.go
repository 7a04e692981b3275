// Package grpcserver exposes the StoreKeeper gRPC API handlers.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/storekeeper/internal/convert"
	"github.com/and161185/storekeeper/internal/ledger"
	"github.com/and161185/storekeeper/internal/service"
	"github.com/and161185/storekeeper/internal/wire"
)

// Services groups the application services the handlers call.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Settings  service.SettingsService
	Inventory service.InventoryService
	Sales     service.SalesService
}

// Server wires services into gRPC handlers.
type Server struct {
	svc Services
	log *zap.Logger
}

var _ wire.StoreKeeperServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(svc Services, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

// fail maps err to a status and logs what the caller will only see as Internal.
func (s *Server) fail(err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.log.Error("unmapped error", zap.Error(err))
	}
	return st
}

func actorFrom(ctx context.Context) (service.Actor, error) {
	a, ok := ActorFromCtx(ctx)
	if !ok {
		return service.Actor{}, status.Error(codes.Unauthenticated, "no auth")
	}
	return a, nil
}

// --- Auth ---

// Login authenticates a user through the login throttle.
func (s *Server) Login(ctx context.Context, req *wire.LoginRequest) (*wire.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "empty username/password")
	}
	tok, u, err := s.svc.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.LoginResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		User:        convert.ToWireUser(u),
	}, nil
}

// RequestVerification sends a verification code to the account's email.
func (s *Server) RequestVerification(ctx context.Context, req *wire.RequestVerificationRequest) (*wire.RequestVerificationResponse, error) {
	if req.Username == "" {
		return nil, status.Error(codes.InvalidArgument, "empty username")
	}
	v, err := s.svc.Auth.RequestVerification(ctx, req.Username)
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.RequestVerificationResponse{Destination: v.Destination, ExpiresAt: v.ExpiresAt}, nil
}

// VerifyEmail checks a verification code and unblocks the username.
func (s *Server) VerifyEmail(ctx context.Context, req *wire.VerifyEmailRequest) (*wire.Empty, error) {
	if req.Username == "" || req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "empty username/code")
	}
	if err := s.svc.Auth.VerifyEmail(ctx, req.Username, req.Code); err != nil {
		return nil, s.fail(err)
	}
	return &wire.Empty{}, nil
}

func (s *Server) ResetLoginAttempts(ctx context.Context, req *wire.ResetLoginAttemptsRequest) (*wire.Empty, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Auth.ResetLoginAttempts(ctx, actor, req.Username); err != nil {
		return nil, s.fail(err)
	}
	return &wire.Empty{}, nil
}

// --- Settings ---

func (s *Server) GetSettings(ctx context.Context, _ *wire.Empty) (*wire.Settings, error) {
	st, err := s.svc.Settings.Get(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	out := convert.ToWireSettings(st)
	if _, ok := ActorFromCtx(ctx); !ok {
		// the login screen must not learn where codes are sent
		out.OwnerEmail = ""
	}
	return &out, nil
}

func (s *Server) UpdateSettings(ctx context.Context, req *wire.UpdateSettingsRequest) (*wire.Settings, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.svc.Settings.Update(ctx, actor, convert.FromWireSettingsPatch(req))
	if err != nil {
		return nil, s.fail(err)
	}
	out := convert.ToWireSettings(st)
	return &out, nil
}

// --- Users ---

func (s *Server) ListUsers(ctx context.Context, _ *wire.Empty) (*wire.ListUsersResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	us, err := s.svc.Users.List(ctx, actor)
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.ListUsersResponse{Users: convert.ToWireUsers(us)}, nil
}

func (s *Server) CreateUser(ctx context.Context, req *wire.CreateUserRequest) (*wire.User, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.svc.Users.Create(ctx, actor, convert.FromWireNewUser(req))
	if err != nil {
		return nil, s.fail(err)
	}
	out := convert.ToWireUser(u)
	return &out, nil
}

func (s *Server) UpdateUser(ctx context.Context, req *wire.UpdateUserRequest) (*wire.User, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "empty id")
	}
	u, err := s.svc.Users.Update(ctx, actor, req.ID, convert.FromWireUserUpdate(req))
	if err != nil {
		return nil, s.fail(err)
	}
	out := convert.ToWireUser(u)
	return &out, nil
}

func (s *Server) DeleteUser(ctx context.Context, req *wire.DeleteUserRequest) (*wire.Empty, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "empty id")
	}
	if err := s.svc.Users.Delete(ctx, actor, req.ID); err != nil {
		return nil, s.fail(err)
	}
	return &wire.Empty{}, nil
}

// --- Products & stock ---

func (s *Server) ListProducts(ctx context.Context, _ *wire.Empty) (*wire.ListProductsResponse, error) {
	if _, err := actorFrom(ctx); err != nil {
		return nil, err
	}
	ps, err := s.svc.Inventory.ListProducts(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.ListProductsResponse{Products: convert.ToWireProducts(ps)}, nil
}

// CreateProduct adds a product, recording a positive opening stock as an "in" movement.
func (s *Server) CreateProduct(ctx context.Context, req *wire.CreateProductRequest) (*wire.CreateProductResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, tx, err := s.svc.Inventory.CreateProduct(ctx, actor, convert.FromWireProductInput(req))
	if err != nil {
		return nil, s.fail(err)
	}
	out := &wire.CreateProductResponse{Product: convert.ToWireProduct(p)}
	if tx != nil {
		opening := convert.ToWireStockTransaction(*tx)
		out.Opening = &opening
	}
	return out, nil
}

func (s *Server) UpdateProduct(ctx context.Context, req *wire.UpdateProductRequest) (*wire.Product, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "empty id")
	}
	p, err := s.svc.Inventory.UpdateProduct(ctx, actor, req.ID, convert.FromWireProductUpdate(req))
	if err != nil {
		return nil, s.fail(err)
	}
	out := convert.ToWireProduct(p)
	return &out, nil
}

func (s *Server) DeleteProduct(ctx context.Context, req *wire.DeleteProductRequest) (*wire.Empty, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "empty id")
	}
	if err := s.svc.Inventory.DeleteProduct(ctx, actor, req.ID); err != nil {
		return nil, s.fail(err)
	}
	return &wire.Empty{}, nil
}

func (s *Server) RecordStock(ctx context.Context, req *wire.RecordStockRequest) (*wire.RecordStockResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	tx, p, err := s.svc.Inventory.RecordStock(ctx, actor, convert.FromWireStockRequest(req))
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.RecordStockResponse{
		Transaction: convert.ToWireStockTransaction(tx),
		Product:     convert.ToWireProduct(p),
	}, nil
}

func (s *Server) ListStockTransactions(ctx context.Context, req *wire.ListStockTransactionsRequest) (*wire.ListStockTransactionsResponse, error) {
	if _, err := actorFrom(ctx); err != nil {
		return nil, err
	}
	ts, err := s.svc.Inventory.ListStockTransactions(ctx, req.ProductID)
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.ListStockTransactionsResponse{Transactions: convert.ToWireStockTransactions(ts)}, nil
}

// --- Sales ---

// RecordSale stores a sale together with its paired stock-out.
func (s *Server) RecordSale(ctx context.Context, req *wire.RecordSaleRequest) (*wire.RecordSaleResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "empty product id")
	}
	sale, tx, err := s.svc.Sales.RecordSale(ctx, actor, req.ProductID, req.Quantity)
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.RecordSaleResponse{
		Sale:        convert.ToWireSale(sale),
		Transaction: convert.ToWireStockTransaction(tx),
	}, nil
}

func (s *Server) ListSales(ctx context.Context, req *wire.SalesQuery) (*wire.ListSalesResponse, error) {
	view, ref, err := s.salesQuery(ctx, req)
	if err != nil {
		return nil, err
	}
	sales, err := s.svc.Sales.ListSales(ctx, view, ref)
	if err != nil {
		return nil, s.fail(err)
	}
	return &wire.ListSalesResponse{Sales: convert.ToWireSales(sales)}, nil
}

func (s *Server) SalesSummary(ctx context.Context, req *wire.SalesQuery) (*wire.Summary, error) {
	view, ref, err := s.salesQuery(ctx, req)
	if err != nil {
		return nil, err
	}
	sum, err := s.svc.Sales.SalesSummary(ctx, view, ref)
	if err != nil {
		return nil, s.fail(err)
	}
	out := convert.ToWireSummary(sum)
	return &out, nil
}

func (s *Server) Dashboard(ctx context.Context, _ *wire.Empty) (*wire.Dashboard, error) {
	if _, err := actorFrom(ctx); err != nil {
		return nil, err
	}
	d, err := s.svc.Sales.Dashboard(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	out := convert.ToWireDashboard(d)
	return &out, nil
}

// salesQuery resolves the view and the reference day. The day is read in the store timezone.
func (s *Server) salesQuery(ctx context.Context, req *wire.SalesQuery) (ledger.View, time.Time, error) {
	if _, err := actorFrom(ctx); err != nil {
		return "", time.Time{}, err
	}
	view, err := ledger.ParseView(req.View)
	if err != nil {
		return "", time.Time{}, s.fail(err)
	}
	if req.Date == "" {
		return view, time.Time{}, nil
	}
	st, err := s.svc.Settings.Get(ctx)
	if err != nil {
		return "", time.Time{}, s.fail(err)
	}
	ref, err := time.ParseInLocation(wire.DateLayout, req.Date, st.Location())
	if err != nil {
		return "", time.Time{}, status.Errorf(codes.InvalidArgument, "bad date %q, want YYYY-MM-DD", req.Date)
	}
	return view, ref, nil
}
