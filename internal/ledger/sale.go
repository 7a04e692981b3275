package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

// SaleNote marks the stock-out paired with a sale.
const SaleNote = "sale"

// SaleInput describes a sale. With Strict set a sale larger than the current stock is refused.
type SaleInput struct {
	ProductID string
	Quantity  decimal.Decimal
	Strict    bool
}

// RecordSale appends a sale with prices frozen from the product and applies its paired stock-out
// (id txID) to the same snapshot. Either both records are written or neither.
func RecordSale(s *model.Snapshot, in SaleInput, m Meta, txID string) (model.Sale, model.StockTransaction, error) {
	p := s.ProductByID(in.ProductID)
	if p == nil {
		return model.Sale{}, model.StockTransaction{}, fmt.Errorf("%w: %s", errs.ErrProductNotFound, in.ProductID)
	}
	if !in.Quantity.IsPositive() {
		return model.Sale{}, model.StockTransaction{}, errs.ErrInvalidQuantity
	}
	if in.Strict && p.Stock.LessThan(in.Quantity) {
		return model.Sale{}, model.StockTransaction{}, fmt.Errorf("%w: %s has %s, asked %s",
			errs.ErrInsufficientStock, p.Name, p.Stock, in.Quantity)
	}

	sale := model.Sale{
		ID:               m.ID,
		ProductID:        p.ID,
		ProductName:      p.Name,
		Quantity:         in.Quantity,
		BuyPrice:         p.BuyPrice,
		SellPrice:        p.SellPrice,
		Profit:           p.SellPrice.Sub(p.BuyPrice),
		ProfitPercentage: p.ProfitPercentage,
		Date:             m.At,
		CreatedBy:        m.By,
	}

	sell := sale.SellPrice
	tx, err := RecordStockTransaction(s, StockInput{
		ProductID: p.ID,
		Type:      model.StockOut,
		Quantity:  in.Quantity,
		SellPrice: &sell,
		Notes:     SaleNote,
		SaleID:    sale.ID,
	}, Meta{ID: txID, At: m.At, By: m.By})
	if err != nil {
		return model.Sale{}, model.StockTransaction{}, err
	}
	s.Sales = append(s.Sales, sale)
	return sale, tx, nil
}
