// Command sk-server starts the StoreKeeper gRPC server.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/storekeeper/internal/config"
	"github.com/and161185/storekeeper/internal/httpapi"
	"github.com/and161185/storekeeper/internal/limiter"
	"github.com/and161185/storekeeper/internal/logger"
	"github.com/and161185/storekeeper/internal/metrics"
	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/notify"
	"github.com/and161185/storekeeper/internal/repository"
	"github.com/and161185/storekeeper/internal/scheduler"
	grpcserver "github.com/and161185/storekeeper/internal/server/grpc"
	"github.com/and161185/storekeeper/internal/service"
	"github.com/and161185/storekeeper/internal/wire"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the document store and serves gRPC plus the ops HTTP port.
func main() {
	envFile := flag.String("env", "", "optional .env file")
	dev := flag.Bool("dev", false, "enable server reflection and development logging")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development || *dev)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.Addr),
		zap.String("store", cfg.Store.Driver),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Store, logger.Named(log, "store"))
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer closeStore()
	repo := repository.New(store)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewRecorder(reg)

	var notifier notify.Notifier = notify.NewLog(log)
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(notify.WebhookConfig{
			URL:     cfg.Notify.WebhookURL,
			Token:   cfg.Notify.WebhookToken,
			Timeout: cfg.Notify.Timeout,
		})
	}

	// Services
	deps := service.Deps{Repo: repo, Log: logger.Named(log, "service"), Metrics: rec}
	authSvc := service.NewAuthService(deps, service.AuthConfig{
		SignKey:   []byte(cfg.Auth.JWTKey),
		AccessTTL: cfg.Auth.AccessTTL,
		Policy: limiter.Policy{
			LockAfter:   cfg.Auth.LockAfter,
			VerifyAfter: cfg.Auth.VerifyAfter,
			LockFor:     cfg.Auth.LockFor,
		},
		CodeTTL:      cfg.Auth.CodeTTL,
		MaxCodeTries: cfg.Auth.MaxCodeTries,
		Leeway:       cfg.Auth.Leeway,
	}, notifier)
	lowStock := decimal.NewFromInt(int64(cfg.Reports.LowStockThreshold))
	svc := grpcserver.Services{
		Auth:      authSvc,
		Users:     service.NewUserService(deps),
		Settings:  service.NewSettingsService(deps),
		Inventory: service.NewInventoryService(deps),
		Sales: service.NewSalesService(deps, service.SalesConfig{
			StrictStock:       cfg.Reports.StrictStock,
			LowStockThreshold: lowStock,
		}),
	}

	if cfg.Owner.Username != "" {
		created, err := authSvc.Bootstrap(ctx, cfg.Owner.Username, cfg.Owner.Password, cfg.Owner.Email)
		if err != nil {
			log.Fatal("bootstrap owner", zap.Error(err))
		}
		if created {
			log.Info("owner bootstrapped", zap.String("username", cfg.Owner.Username))
		}
	} else if users, err := repo.Users(ctx); err != nil {
		log.Fatal("read store", zap.Error(err))
	} else if len(users) == 0 {
		log.Warn("store has no users; set SK_OWNER_USERNAME and SK_OWNER_PASSWORD")
	}

	sched := scheduler.NewScheduler(scheduler.Config{
		LowStockSpec:      cfg.Reports.LowStockCron,
		CodeSweepSpec:     cfg.Reports.CodeSweepCron,
		LowStockThreshold: lowStock,
	}, repo, notifier, rec, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("scheduler", zap.Error(err))
	}

	// gRPC server with interceptors
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(log),
			grpcserver.LoggingUnary(log),
			grpcserver.AuthUnary(authSvc),
		),
	}
	if cfg.Server.TLS() {
		creds, err := credentials.NewServerTLSFromFile(cfg.Server.TLSCert, cfg.Server.TLSKey)
		if err != nil {
			log.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		log.Warn("TLS disabled; bearer tokens travel in clear text")
	}
	s := grpc.NewServer(opts...)
	wire.RegisterStoreKeeperServer(s, grpcserver.New(svc, logger.Named(log, "grpc")))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(wire.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if *dev || cfg.Server.Reflection {
		reflection.Register(s)
	}

	// Listen
	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		log.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.Bool("tls", cfg.Server.TLS()))
		errCh <- s.Serve(lis)
	}()

	var httpSrv *http.Server
	if cfg.Server.HTTPAddr != "" {
		ready := func(ctx context.Context) error {
			return repo.View(ctx, func(*model.Snapshot) error { return nil })
		}
		httpSrv = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           httpapi.NewRouter(reg, ready, logger.Named(log, "http")),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("ops http listening", zap.String("addr", cfg.Server.HTTPAddr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Wait for stop
	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		exitCode = 1
	}

	// graceful shutdown
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		s.Stop()
	}
	if httpSrv != nil {
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	sched.Stop(shutdownCtx)

	log.Info("shutdown complete")
	if exitCode != 0 {
		closeStore()
		_ = log.Sync()
		os.Exit(exitCode)
	}
}
