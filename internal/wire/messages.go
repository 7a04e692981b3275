package wire

import (
	"time"

	"github.com/shopspring/decimal"
)

type Empty struct{}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	SKU              string          `json:"sku,omitempty"`
	Unit             string          `json:"unit"`
	BuyPrice         decimal.Decimal `json:"buyPrice"`
	SellPrice        decimal.Decimal `json:"sellPrice"`
	ProfitPercentage decimal.Decimal `json:"profitPercentage"`
	Stock            decimal.Decimal `json:"stock"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
	UpdatedBy        string          `json:"updatedBy,omitempty"`
}

type StockTransaction struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"productId"`
	ProductName string           `json:"productName"`
	Type        string           `json:"type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	BuyPrice    *decimal.Decimal `json:"buyPrice,omitempty"`
	SellPrice   *decimal.Decimal `json:"sellPrice,omitempty"`
	Date        time.Time        `json:"date"`
	CreatedBy   string           `json:"createdBy"`
	Notes       string           `json:"notes,omitempty"`
	SaleID      string           `json:"saleId,omitempty"`
}

type Sale struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName"`
	Quantity         decimal.Decimal `json:"quantity"`
	BuyPrice         decimal.Decimal `json:"buyPrice"`
	SellPrice        decimal.Decimal `json:"sellPrice"`
	Profit           decimal.Decimal `json:"profit"`
	ProfitPercentage decimal.Decimal `json:"profitPercentage"`
	Date             time.Time       `json:"date"`
	CreatedBy        string          `json:"createdBy"`
}

type Settings struct {
	StoreName    string `json:"storeName"`
	StoreAddress string `json:"storeAddress"`
	StoreLogo    string `json:"storeLogo,omitempty"`
	StoreAdmin   string `json:"storeAdmin"`
	StoreCS      string `json:"storeCS"`
	Theme        string `json:"theme"`
	Language     string `json:"language"`
	Currency     string `json:"currency"`
	Timezone     string `json:"timezone"`
	LoginMessage string `json:"loginMessage"`
	LoginImage   string `json:"loginImage,omitempty"`
	OwnerEmail   string `json:"ownerEmail,omitempty"`
}

type Summary struct {
	View     string          `json:"view"`
	From     time.Time       `json:"from,omitzero"`
	To       time.Time       `json:"to,omitzero"`
	Count    int             `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Profit   decimal.Decimal `json:"profit"`
}

type Dashboard struct {
	ProductCount int             `json:"productCount"`
	TotalStock   decimal.Decimal `json:"totalStock"`
	Today        Summary         `json:"today"`
	Month        Summary         `json:"month"`
	LowStock     []Product       `json:"lowStock"`
}

// ---- auth ----

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        User      `json:"user"`
}

type RequestVerificationRequest struct {
	Username string `json:"username"`
}

type RequestVerificationResponse struct {
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type VerifyEmailRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type ResetLoginAttemptsRequest struct {
	Username string `json:"username"`
}

// ---- settings ----

// UpdateSettingsRequest changes only the fields that are set.
type UpdateSettingsRequest struct {
	StoreName    *string `json:"storeName,omitempty"`
	StoreAddress *string `json:"storeAddress,omitempty"`
	StoreLogo    *string `json:"storeLogo,omitempty"`
	StoreAdmin   *string `json:"storeAdmin,omitempty"`
	StoreCS      *string `json:"storeCS,omitempty"`
	Theme        *string `json:"theme,omitempty"`
	Language     *string `json:"language,omitempty"`
	Currency     *string `json:"currency,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
	LoginMessage *string `json:"loginMessage,omitempty"`
	LoginImage   *string `json:"loginImage,omitempty"`
	OwnerEmail   *string `json:"ownerEmail,omitempty"`
}

// ---- users ----

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type UpdateUserRequest struct {
	ID       string  `json:"id"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

// ---- products & stock ----

type ListProductsResponse struct {
	Products []Product `json:"products"`
}

type CreateProductRequest struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	BuyPrice     decimal.Decimal `json:"buyPrice"`
	SellPrice    decimal.Decimal `json:"sellPrice"`
	OpeningStock decimal.Decimal `json:"openingStock"`
}

type CreateProductResponse struct {
	Product Product `json:"product"`
	// Opening is the "in" movement recorded for a positive opening stock.
	Opening *StockTransaction `json:"opening,omitempty"`
}

type UpdateProductRequest struct {
	ID        string           `json:"id"`
	Name      *string          `json:"name,omitempty"`
	SKU       *string          `json:"sku,omitempty"`
	Unit      *string          `json:"unit,omitempty"`
	BuyPrice  *decimal.Decimal `json:"buyPrice,omitempty"`
	SellPrice *decimal.Decimal `json:"sellPrice,omitempty"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}

type RecordStockRequest struct {
	ProductID string           `json:"productId"`
	Type      string           `json:"type"`
	Quantity  decimal.Decimal  `json:"quantity"`
	BuyPrice  *decimal.Decimal `json:"buyPrice,omitempty"`
	SellPrice *decimal.Decimal `json:"sellPrice,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

type RecordStockResponse struct {
	Transaction StockTransaction `json:"transaction"`
	Product     Product          `json:"product"`
}

type ListStockTransactionsRequest struct {
	ProductID string `json:"productId,omitempty"`
}

type ListStockTransactionsResponse struct {
	Transactions []StockTransaction `json:"transactions"`
}

// ---- sales ----

type RecordSaleRequest struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type RecordSaleResponse struct {
	Sale        Sale             `json:"sale"`
	Transaction StockTransaction `json:"transaction"`
}

// SalesQuery selects a report period. Date is a calendar day (YYYY-MM-DD) in the store
// timezone; empty means today.
type SalesQuery struct {
	View string `json:"view"`
	Date string `json:"date,omitempty"`
}

type ListSalesResponse struct {
	Sales []Sale `json:"sales"`
}

// DateLayout is the calendar day format of SalesQuery.Date.
const DateLayout = "2006-01-02"
