package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/and161185/storekeeper/internal/ledger"
	"github.com/and161185/storekeeper/internal/model"
)

// SalesService records sales and answers sales reports.
type SalesService interface {
	// RecordSale stores the sale together with its paired stock-out.
	RecordSale(ctx context.Context, actor Actor, productID string, quantity decimal.Decimal) (model.Sale, model.StockTransaction, error)
	// ListSales returns the sales of view around ref (zero ref means now).
	ListSales(ctx context.Context, view ledger.View, ref time.Time) ([]model.Sale, error)
	SalesSummary(ctx context.Context, view ledger.View, ref time.Time) (ledger.Summary, error)
	Dashboard(ctx context.Context) (ledger.Dashboard, error)
}

// SalesConfig tunes the sales service.
type SalesConfig struct {
	// StrictStock refuses sales larger than the current stock.
	StrictStock bool
	// LowStockThreshold marks products with less stock on the dashboard.
	LowStockThreshold decimal.Decimal
}

type SalesServiceImpl struct {
	d   Deps
	cfg SalesConfig
}

// NewSalesService constructs SalesService.
func NewSalesService(d Deps, cfg SalesConfig) *SalesServiceImpl {
	if cfg.LowStockThreshold.IsZero() {
		cfg.LowStockThreshold = decimal.NewFromInt(10)
	}
	return &SalesServiceImpl{d: d.withDefaults(), cfg: cfg}
}

func (s *SalesServiceImpl) RecordSale(ctx context.Context, actor Actor, productID string, quantity decimal.Decimal) (model.Sale, model.StockTransaction, error) {
	if err := requireActor(actor); err != nil {
		return model.Sale{}, model.StockTransaction{}, err
	}
	saleID, err := s.d.NewID()
	if err != nil {
		return model.Sale{}, model.StockTransaction{}, err
	}
	txID, err := s.d.NewID()
	if err != nil {
		return model.Sale{}, model.StockTransaction{}, err
	}

	var (
		sale model.Sale
		tx   model.StockTransaction
	)
	err = s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		var err error
		sale, tx, err = ledger.RecordSale(snap, ledger.SaleInput{
			ProductID: productID,
			Quantity:  quantity,
			Strict:    s.cfg.StrictStock,
		}, ledger.Meta{ID: saleID, At: s.d.Now(), By: actor.Username}, txID)
		return err
	})
	if err != nil {
		return model.Sale{}, model.StockTransaction{}, err
	}
	s.d.Metrics.SaleRecorded(sale)
	s.d.Metrics.StockRecorded(tx)
	s.d.Log.Debug("sale recorded",
		zap.String("id", sale.ID),
		zap.String("product", sale.ProductName),
		zap.Stringer("qty", sale.Quantity),
	)
	return sale, tx, nil
}

func (s *SalesServiceImpl) ref(t time.Time) time.Time {
	if t.IsZero() {
		return s.d.Now()
	}
	return t
}

// salesIn loads the sales together with the store timezone the views are cut in.
func (s *SalesServiceImpl) salesIn(ctx context.Context) ([]model.Sale, *time.Location, error) {
	st, err := s.d.Repo.Settings(ctx)
	if err != nil {
		return nil, nil, err
	}
	sales, err := s.d.Repo.Sales(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sales, st.Location(), nil
}

func (s *SalesServiceImpl) ListSales(ctx context.Context, view ledger.View, ref time.Time) ([]model.Sale, error) {
	sales, loc, err := s.salesIn(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.FilterSales(sales, view, s.ref(ref), loc), nil
}

func (s *SalesServiceImpl) SalesSummary(ctx context.Context, view ledger.View, ref time.Time) (ledger.Summary, error) {
	sales, loc, err := s.salesIn(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(sales, view, s.ref(ref), loc), nil
}

func (s *SalesServiceImpl) Dashboard(ctx context.Context) (ledger.Dashboard, error) {
	var out ledger.Dashboard
	err := s.d.Repo.View(ctx, func(snap *model.Snapshot) error {
		out = ledger.BuildDashboard(snap, s.d.Now(), snap.Settings.Location(), s.cfg.LowStockThreshold)
		return nil
	})
	return out, err
}
