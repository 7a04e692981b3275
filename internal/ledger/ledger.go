// Package ledger holds the inventory and sales rules applied to a loaded snapshot.
//
// Functions here mutate the snapshot they are given and never touch storage; callers run them
// inside one repository Update so that every write they make lands in a single save.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Meta stamps a new record.
type Meta struct {
	ID string
	At time.Time
	By string
}

// ProfitPercentage returns (sell-buy)/buy*100 rounded to 4 places, or 0 when buy is 0.
func ProfitPercentage(buy, sell decimal.Decimal) decimal.Decimal {
	if buy.IsZero() {
		return decimal.Zero
	}
	return sell.Sub(buy).Mul(hundred).DivRound(buy, 4)
}

// NewProduct carries the fields of a product being created.
type NewProduct struct {
	Name      string
	SKU       string
	Unit      string
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
}

// NewProductPatch is the patch that creates a product with zero stock through an upsert.
// The profit percentage is computed once here.
func NewProductPatch(in NewProduct, m Meta) model.ProductPatch {
	pct := ProfitPercentage(in.BuyPrice, in.SellPrice)
	return model.ProductPatch{
		Name:             &in.Name,
		SKU:              &in.SKU,
		Unit:             &in.Unit,
		BuyPrice:         &in.BuyPrice,
		SellPrice:        &in.SellPrice,
		ProfitPercentage: &pct,
		CreatedAt:        &m.At,
		CreatedBy:        &m.By,
	}
}

// CreateProduct appends a product with zero stock.
func CreateProduct(s *model.Snapshot, in NewProduct, m Meta) model.Product {
	p := model.Product{ID: m.ID, Stock: decimal.Zero}
	NewProductPatch(in, m).Apply(&p)
	s.Products = append(s.Products, p)
	return p
}

// UpdateProduct applies patch and stamps the update. The profit percentage only changes when
// the patch carries one.
func UpdateProduct(s *model.Snapshot, id string, patch model.ProductPatch, at time.Time, by string) (model.Product, error) {
	p := s.ProductByID(id)
	if p == nil {
		return model.Product{}, fmt.Errorf("%w: %s", errs.ErrProductNotFound, id)
	}
	patch.UpdatedAt = &at
	patch.UpdatedBy = &by
	patch.Apply(p)
	return *p, nil
}

// StockInput describes one stock movement.
type StockInput struct {
	ProductID string
	Type      model.StockType
	Quantity  decimal.Decimal
	BuyPrice  *decimal.Decimal
	SellPrice *decimal.Decimal
	Notes     string
	SaleID    string
}

// RecordStockTransaction applies the movement to the product's stock and appends the ledger entry.
// Nothing is changed when it fails. Stock may go negative.
//
// Without explicit prices an "in" carries the product's buy price and an "out" its sell price.
func RecordStockTransaction(s *model.Snapshot, in StockInput, m Meta) (model.StockTransaction, error) {
	if !in.Quantity.IsPositive() {
		return model.StockTransaction{}, errs.ErrInvalidQuantity
	}
	if !in.Type.Valid() {
		return model.StockTransaction{}, errs.Validationf("unknown stock type %q", in.Type)
	}
	p := s.ProductByID(in.ProductID)
	if p == nil {
		return model.StockTransaction{}, fmt.Errorf("%w: %s", errs.ErrProductNotFound, in.ProductID)
	}

	tx := model.StockTransaction{
		ID:          m.ID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Type:        in.Type,
		Quantity:    in.Quantity,
		BuyPrice:    in.BuyPrice,
		SellPrice:   in.SellPrice,
		Date:        m.At,
		CreatedBy:   m.By,
		Notes:       in.Notes,
		SaleID:      in.SaleID,
	}
	switch {
	case in.Type == model.StockIn && tx.BuyPrice == nil:
		v := p.BuyPrice
		tx.BuyPrice = &v
	case in.Type == model.StockOut && tx.SellPrice == nil:
		v := p.SellPrice
		tx.SellPrice = &v
	}

	p.Stock = p.Stock.Add(tx.Delta())
	s.StockTransactions = append(s.StockTransactions, tx)
	return tx, nil
}

// LowStock returns products whose stock is below threshold.
func LowStock(products []model.Product, threshold decimal.Decimal) []model.Product {
	var out []model.Product
	for _, p := range products {
		if p.Stock.LessThan(threshold) {
			out = append(out, p)
		}
	}
	return out
}
