// Package scheduler runs periodic maintenance over the store snapshot.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/and161185/storekeeper/internal/ledger"
	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/notify"
	"github.com/and161185/storekeeper/internal/repository"
	"github.com/and161185/storekeeper/internal/service"
)

// Job names used in logs and metrics.
const (
	JobLowStock  = "low_stock_report"
	JobCodeSweep = "verification_code_sweep"
)

// JobMetrics receives job and low-stock observations.
type JobMetrics interface {
	ObserveJob(job string, d time.Duration, err error)
	SetLowStock(n int)
}

// Config holds cron specs in standard 5-field form. An empty spec disables the job.
type Config struct {
	LowStockSpec      string
	CodeSweepSpec     string
	LowStockThreshold decimal.Decimal
	JobTimeout        time.Duration
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	repo     service.Repository
	notifier notify.Notifier
	metrics  JobMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. notifier and metrics may be nil.
func NewScheduler(cfg Config, repo service.Repository, notifier notify.Notifier, metrics JobMetrics, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LowStockThreshold.IsZero() {
		cfg.LowStockThreshold = decimal.NewFromInt(10)
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.Named("scheduler"),
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")
	if s.cfg.LowStockSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.LowStockSpec, s.wrap(JobLowStock, s.lowStockJob)); err != nil {
			return fmt.Errorf("schedule %s: %w", JobLowStock, err)
		}
	}
	if s.cfg.CodeSweepSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.CodeSweepSpec, s.wrap(JobCodeSweep, s.codeSweepJob)); err != nil {
			return fmt.Errorf("schedule %s: %w", JobCodeSweep, err)
		}
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("stopping scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) wrap(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()

		start := time.Now()
		err := job(ctx)
		if s.metrics != nil {
			s.metrics.ObserveJob(name, time.Since(start), err)
		}
		if err != nil {
			s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
		}
	}
}

func (s *Scheduler) lowStockJob(ctx context.Context) error {
	_, err := s.LowStockReport(ctx)
	return err
}

func (s *Scheduler) codeSweepJob(ctx context.Context) error {
	n, err := s.SweepExpiredCodes(ctx)
	if err == nil && n > 0 {
		s.logger.Info("expired verification codes dropped", zap.Int("count", n))
	}
	return err
}

// LowStockReport publishes the low-stock gauge and mails the list to the owner email, if any.
func (s *Scheduler) LowStockReport(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.repo.Settings(ctx)
	if err != nil {
		return nil, err
	}
	low := ledger.LowStock(products, s.cfg.LowStockThreshold)
	to := settings.OwnerEmail
	if s.metrics != nil {
		s.metrics.SetLowStock(len(low))
	}
	if len(low) == 0 || to == "" || s.notifier == nil {
		return low, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d product(s) below %s:\n", len(low), s.cfg.LowStockThreshold)
	for _, p := range low {
		fmt.Fprintf(&b, "- %s: %s %s\n", p.Name, p.Stock, p.Unit)
	}
	msg := notify.Message{To: to, Subject: "Low stock report", Body: b.String()}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return low, fmt.Errorf("send low stock report: %w", err)
	}
	return low, nil
}

// SweepExpiredCodes drops verification codes past their expiry. Failure counts stay.
func (s *Scheduler) SweepExpiredCodes(ctx context.Context) (int, error) {
	now := s.now()
	n := 0
	err := s.repo.Update(ctx, func(snap *model.Snapshot) error {
		for name, a := range snap.LoginAttempts {
			if a.CodeExpiresAt == nil || a.CodeExpiresAt.After(now) {
				continue
			}
			a.ClearCode()
			snap.LoginAttempts[name] = a
			n++
		}
		if n == 0 {
			return repository.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
