package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/ledger"
	"github.com/and161185/storekeeper/internal/model"
)

// InventoryService manages products and stock movements. Any authenticated user may call it.
type InventoryService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	// CreateProduct adds a product; a positive opening stock is recorded as an "in" movement
	// in the same save.
	CreateProduct(ctx context.Context, actor Actor, in ProductInput) (model.Product, *model.StockTransaction, error)
	UpdateProduct(ctx context.Context, actor Actor, id string, in ProductUpdate) (model.Product, error)
	DeleteProduct(ctx context.Context, actor Actor, id string) error
	RecordStock(ctx context.Context, actor Actor, in StockRequest) (model.StockTransaction, model.Product, error)
	// ListStockTransactions returns the ledger, newest last; productID filters when set.
	ListStockTransactions(ctx context.Context, productID string) ([]model.StockTransaction, error)
}

// ProductInput is the input for a new product.
type ProductInput struct {
	Name         string `validate:"required,max=200"`
	SKU          string `validate:"max=64"`
	Unit         string `validate:"max=32"`
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
	OpeningStock decimal.Decimal
}

// ProductUpdate carries optional product changes. Stock is changed through RecordStock only.
type ProductUpdate struct {
	Name      *string `validate:"omitempty,min=1,max=200"`
	SKU       *string `validate:"omitempty,max=64"`
	Unit      *string `validate:"omitempty,max=32"`
	BuyPrice  *decimal.Decimal
	SellPrice *decimal.Decimal
}

// StockRequest is one manual stock movement.
type StockRequest struct {
	ProductID string `validate:"required"`
	Type      model.StockType
	Quantity  decimal.Decimal
	BuyPrice  *decimal.Decimal
	SellPrice *decimal.Decimal
	Notes     string `validate:"max=500"`
}

// DefaultUnit is used when a product is created without a unit.
const DefaultUnit = "pcs"

type InventoryServiceImpl struct {
	d Deps
}

// NewInventoryService constructs InventoryService.
func NewInventoryService(d Deps) *InventoryServiceImpl {
	return &InventoryServiceImpl{d: d.withDefaults()}
}

func checkPrice(name string, v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return errs.Validationf("%s must not be negative", name)
	}
	return nil
}

func (s *InventoryServiceImpl) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.d.Repo.Products(ctx)
}

func (s *InventoryServiceImpl) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (model.Product, *model.StockTransaction, error) {
	if err := requireActor(actor); err != nil {
		return model.Product{}, nil, err
	}
	if err := validateStruct(in); err != nil {
		return model.Product{}, nil, err
	}
	if err := checkPrice("buy price", &in.BuyPrice); err != nil {
		return model.Product{}, nil, err
	}
	if err := checkPrice("sell price", &in.SellPrice); err != nil {
		return model.Product{}, nil, err
	}
	if in.OpeningStock.IsNegative() {
		return model.Product{}, nil, errs.ErrInvalidQuantity
	}
	if in.Unit == "" {
		in.Unit = DefaultUnit
	}
	pid, err := s.d.NewID()
	if err != nil {
		return model.Product{}, nil, err
	}
	var tid string
	if in.OpeningStock.IsPositive() {
		if tid, err = s.d.NewID(); err != nil {
			return model.Product{}, nil, err
		}
	}

	np := ledger.NewProduct{
		Name:      in.Name,
		SKU:       in.SKU,
		Unit:      in.Unit,
		BuyPrice:  in.BuyPrice,
		SellPrice: in.SellPrice,
	}
	meta := ledger.Meta{ID: pid, At: s.d.Now(), By: actor.Username}
	if tid == "" {
		p, err := s.d.Repo.UpsertProduct(ctx, pid, ledger.NewProductPatch(np, meta))
		if err != nil {
			return model.Product{}, nil, err
		}
		s.d.Log.Info("product created", zap.String("id", p.ID), zap.String("name", p.Name), zap.String("by", actor.Username))
		return p, nil, nil
	}

	// product and opening movement share one save
	var (
		p  model.Product
		tx *model.StockTransaction
	)
	err = s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		ledger.CreateProduct(snap, np, meta)
		opening, err := ledger.RecordStockTransaction(snap, ledger.StockInput{
			ProductID: pid,
			Type:      model.StockIn,
			Quantity:  in.OpeningStock,
			Notes:     "opening stock",
		}, ledger.Meta{ID: tid, At: meta.At, By: actor.Username})
		if err != nil {
			return err
		}
		tx = &opening
		p = *snap.ProductByID(pid)
		return nil
	})
	if err != nil {
		return model.Product{}, nil, err
	}
	s.d.Metrics.StockRecorded(*tx)
	s.d.Log.Info("product created", zap.String("id", p.ID), zap.String("name", p.Name), zap.String("by", actor.Username))
	return p, tx, nil
}

// UpdateProduct recomputes the profit percentage only when both prices are given.
func (s *InventoryServiceImpl) UpdateProduct(ctx context.Context, actor Actor, id string, in ProductUpdate) (model.Product, error) {
	if err := requireActor(actor); err != nil {
		return model.Product{}, err
	}
	if err := validateStruct(in); err != nil {
		return model.Product{}, err
	}
	if err := checkPrice("buy price", in.BuyPrice); err != nil {
		return model.Product{}, err
	}
	if err := checkPrice("sell price", in.SellPrice); err != nil {
		return model.Product{}, err
	}
	patch := model.ProductPatch{
		Name:      in.Name,
		SKU:       in.SKU,
		Unit:      in.Unit,
		BuyPrice:  in.BuyPrice,
		SellPrice: in.SellPrice,
	}
	if in.BuyPrice != nil && in.SellPrice != nil {
		pct := ledger.ProfitPercentage(*in.BuyPrice, *in.SellPrice)
		patch.ProfitPercentage = &pct
	}

	var out model.Product
	err := s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		var err error
		out, err = ledger.UpdateProduct(snap, id, patch, s.d.Now(), actor.Username)
		return err
	})
	return out, err
}

// DeleteProduct removes the product. Its stock and sales history stays. Unknown ids are a no-op.
func (s *InventoryServiceImpl) DeleteProduct(ctx context.Context, actor Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	ok, err := s.d.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		s.d.Log.Info("product deleted", zap.String("id", id), zap.String("by", actor.Username))
	}
	return nil
}

func (s *InventoryServiceImpl) RecordStock(ctx context.Context, actor Actor, in StockRequest) (model.StockTransaction, model.Product, error) {
	if err := requireActor(actor); err != nil {
		return model.StockTransaction{}, model.Product{}, err
	}
	if err := validateStruct(in); err != nil {
		return model.StockTransaction{}, model.Product{}, err
	}
	if err := checkPrice("buy price", in.BuyPrice); err != nil {
		return model.StockTransaction{}, model.Product{}, err
	}
	if err := checkPrice("sell price", in.SellPrice); err != nil {
		return model.StockTransaction{}, model.Product{}, err
	}
	id, err := s.d.NewID()
	if err != nil {
		return model.StockTransaction{}, model.Product{}, err
	}

	var (
		tx model.StockTransaction
		p  model.Product
	)
	err = s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		var err error
		tx, err = ledger.RecordStockTransaction(snap, ledger.StockInput{
			ProductID: in.ProductID,
			Type:      in.Type,
			Quantity:  in.Quantity,
			BuyPrice:  in.BuyPrice,
			SellPrice: in.SellPrice,
			Notes:     in.Notes,
		}, ledger.Meta{ID: id, At: s.d.Now(), By: actor.Username})
		if err != nil {
			return err
		}
		p = *snap.ProductByID(in.ProductID)
		return nil
	})
	if err != nil {
		return model.StockTransaction{}, model.Product{}, err
	}
	s.d.Metrics.StockRecorded(tx)
	return tx, p, nil
}

func (s *InventoryServiceImpl) ListStockTransactions(ctx context.Context, productID string) ([]model.StockTransaction, error) {
	all, err := s.d.Repo.StockTransactions(ctx)
	if err != nil || productID == "" {
		return all, err
	}
	out := []model.StockTransaction{}
	for _, tx := range all {
		if tx.ProductID == productID {
			out = append(out, tx)
		}
	}
	return out, nil
}
