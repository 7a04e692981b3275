// Package convert maps domain models to wire messages and back.
package convert

import (
	"time"

	"github.com/and161185/storekeeper/internal/ledger"
	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/service"
	"github.com/and161185/storekeeper/internal/wire"
)

// ToWireUser drops credentials.
func ToWireUser(u model.User) wire.User {
	return wire.User{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		CreatedBy: u.CreatedBy,
	}
}

func ToWireUsers(us []model.User) []wire.User {
	out := make([]wire.User, 0, len(us))
	for _, u := range us {
		out = append(out, ToWireUser(u))
	}
	return out
}

func ToWireProduct(p model.Product) wire.Product {
	var updated *time.Time
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		updated = &t
	}
	return wire.Product{
		ID:               p.ID,
		Name:             p.Name,
		SKU:              p.SKU,
		Unit:             p.Unit,
		BuyPrice:         p.BuyPrice,
		SellPrice:        p.SellPrice,
		ProfitPercentage: p.ProfitPercentage,
		Stock:            p.Stock,
		CreatedAt:        p.CreatedAt,
		CreatedBy:        p.CreatedBy,
		UpdatedAt:        updated,
		UpdatedBy:        p.UpdatedBy,
	}
}

func ToWireProducts(ps []model.Product) []wire.Product {
	out := make([]wire.Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToWireProduct(p))
	}
	return out
}

func ToWireStockTransaction(t model.StockTransaction) wire.StockTransaction {
	return wire.StockTransaction{
		ID:          t.ID,
		ProductID:   t.ProductID,
		ProductName: t.ProductName,
		Type:        string(t.Type),
		Quantity:    t.Quantity,
		BuyPrice:    t.BuyPrice,
		SellPrice:   t.SellPrice,
		Date:        t.Date,
		CreatedBy:   t.CreatedBy,
		Notes:       t.Notes,
		SaleID:      t.SaleID,
	}
}

func ToWireStockTransactions(ts []model.StockTransaction) []wire.StockTransaction {
	out := make([]wire.StockTransaction, 0, len(ts))
	for _, t := range ts {
		out = append(out, ToWireStockTransaction(t))
	}
	return out
}

func ToWireSale(s model.Sale) wire.Sale {
	return wire.Sale{
		ID:               s.ID,
		ProductID:        s.ProductID,
		ProductName:      s.ProductName,
		Quantity:         s.Quantity,
		BuyPrice:         s.BuyPrice,
		SellPrice:        s.SellPrice,
		Profit:           s.Profit,
		ProfitPercentage: s.ProfitPercentage,
		Date:             s.Date,
		CreatedBy:        s.CreatedBy,
	}
}

func ToWireSales(ss []model.Sale) []wire.Sale {
	out := make([]wire.Sale, 0, len(ss))
	for _, s := range ss {
		out = append(out, ToWireSale(s))
	}
	return out
}

func ToWireSettings(s model.Settings) wire.Settings {
	return wire.Settings{
		StoreName:    s.StoreName,
		StoreAddress: s.StoreAddress,
		StoreLogo:    s.StoreLogo,
		StoreAdmin:   s.StoreAdmin,
		StoreCS:      s.StoreCS,
		Theme:        s.Theme,
		Language:     s.Language,
		Currency:     s.Currency,
		Timezone:     s.Timezone,
		LoginMessage: s.LoginMessage,
		LoginImage:   s.LoginImage,
		OwnerEmail:   s.OwnerEmail,
	}
}

func ToWireSummary(s ledger.Summary) wire.Summary {
	return wire.Summary{
		View:     string(s.View),
		From:     s.From,
		To:       s.To,
		Count:    s.Count,
		Quantity: s.Quantity,
		Revenue:  s.Revenue,
		Profit:   s.Profit,
	}
}

func ToWireDashboard(d ledger.Dashboard) wire.Dashboard {
	return wire.Dashboard{
		ProductCount: d.ProductCount,
		TotalStock:   d.TotalStock,
		Today:        ToWireSummary(d.Today),
		Month:        ToWireSummary(d.Month),
		LowStock:     ToWireProducts(d.LowStock),
	}
}

// FromWireSettingsPatch keeps nil fields unset.
func FromWireSettingsPatch(in *wire.UpdateSettingsRequest) model.SettingsPatch {
	if in == nil {
		return model.SettingsPatch{}
	}
	return model.SettingsPatch{
		StoreName:    in.StoreName,
		StoreAddress: in.StoreAddress,
		StoreLogo:    in.StoreLogo,
		StoreAdmin:   in.StoreAdmin,
		StoreCS:      in.StoreCS,
		Theme:        in.Theme,
		Language:     in.Language,
		Currency:     in.Currency,
		Timezone:     in.Timezone,
		LoginMessage: in.LoginMessage,
		LoginImage:   in.LoginImage,
		OwnerEmail:   in.OwnerEmail,
	}
}

func FromWireNewUser(in *wire.CreateUserRequest) service.NewUser {
	return service.NewUser{Username: in.Username, Password: in.Password, Email: in.Email}
}

func FromWireUserUpdate(in *wire.UpdateUserRequest) service.UserUpdate {
	return service.UserUpdate{Username: in.Username, Password: in.Password, Email: in.Email}
}

func FromWireProductInput(in *wire.CreateProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:         in.Name,
		SKU:          in.SKU,
		Unit:         in.Unit,
		BuyPrice:     in.BuyPrice,
		SellPrice:    in.SellPrice,
		OpeningStock: in.OpeningStock,
	}
}

func FromWireProductUpdate(in *wire.UpdateProductRequest) service.ProductUpdate {
	return service.ProductUpdate{
		Name:      in.Name,
		SKU:       in.SKU,
		Unit:      in.Unit,
		BuyPrice:  in.BuyPrice,
		SellPrice: in.SellPrice,
	}
}

func FromWireStockRequest(in *wire.RecordStockRequest) service.StockRequest {
	return service.StockRequest{
		ProductID: in.ProductID,
		Type:      model.StockType(in.Type),
		Quantity:  in.Quantity,
		BuyPrice:  in.BuyPrice,
		SellPrice: in.SellPrice,
		Notes:     in.Notes,
	}
}
