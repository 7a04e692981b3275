// Package model defines domain entities used by services and repositories.
package model

import (
	"time"
	_ "time/tzdata" // store timezones resolve without system zoneinfo

	"github.com/shopspring/decimal"
)

// Role is a user's permission level.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleOwner || r == RoleAdmin }

// StockType is the direction of a stock transaction.
type StockType string

const (
	StockIn  StockType = "in"
	StockOut StockType = "out"
)

// Valid reports whether t is a known direction.
func (t StockType) Valid() bool { return t == StockIn || t == StockOut }

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User is an account allowed to operate the store. Passwords are never stored in plaintext.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"` // unique, case-sensitive
	PwdHash   []byte    `json:"pwdHash"`  // Argon2id(password, SaltAuth)
	SaltAuth  []byte    `json:"saltAuth"`
	Role      Role      `json:"role"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

// Product is a sellable item. Stock only changes through StockTransactions.
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	SKU              string          `json:"sku,omitempty"`
	Unit             string          `json:"unit"`
	BuyPrice         decimal.Decimal `json:"buyPrice"`
	SellPrice        decimal.Decimal `json:"sellPrice"`
	ProfitPercentage decimal.Decimal `json:"profitPercentage"`
	Stock            decimal.Decimal `json:"stock"` // may go negative
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
	UpdatedBy        string          `json:"updatedBy,omitempty"`
}

// StockTransaction is an immutable ledger entry moving stock of one product.
type StockTransaction struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"productId"`
	ProductName string           `json:"productName"` // snapshot at write time
	Type        StockType        `json:"type"`
	Quantity    decimal.Decimal  `json:"quantity"` // positive magnitude
	BuyPrice    *decimal.Decimal `json:"buyPrice,omitempty"`
	SellPrice   *decimal.Decimal `json:"sellPrice,omitempty"`
	Date        time.Time        `json:"date"`
	CreatedBy   string           `json:"createdBy"`
	Notes       string           `json:"notes,omitempty"`
	SaleID      string           `json:"saleId,omitempty"` // set on the stock-out paired with a sale
}

// Delta returns the signed stock change this transaction applies.
func (t StockTransaction) Delta() decimal.Decimal {
	if t.Type == StockOut {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// Sale records one sale with prices frozen at sale time.
type Sale struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName"`
	Quantity         decimal.Decimal `json:"quantity"`
	BuyPrice         decimal.Decimal `json:"buyPrice"`
	SellPrice        decimal.Decimal `json:"sellPrice"`
	Profit           decimal.Decimal `json:"profit"` // per unit
	ProfitPercentage decimal.Decimal `json:"profitPercentage"`
	Date             time.Time       `json:"date"`
	CreatedBy        string          `json:"createdBy"`
}

// Revenue is sell price times quantity.
func (s Sale) Revenue() decimal.Decimal { return s.SellPrice.Mul(s.Quantity) }

// TotalProfit is per-unit profit times quantity.
func (s Sale) TotalProfit() decimal.Decimal { return s.Profit.Mul(s.Quantity) }

// LoginAttempt tracks failed logins for one username.
type LoginAttempt struct {
	Username                  string     `json:"username"`
	Count                     int        `json:"count"`
	LastAttempt               time.Time  `json:"lastAttempt"`
	LockedUntil               *time.Time `json:"lockedUntil,omitempty"`
	RequiresEmailVerification bool       `json:"requiresEmailVerification,omitempty"`

	// Out-of-band verification code issued while RequiresEmailVerification is set.
	CodeHash      []byte     `json:"codeHash,omitempty"`
	CodeSalt      []byte     `json:"codeSalt,omitempty"`
	CodeExpiresAt *time.Time `json:"codeExpiresAt,omitempty"`
	CodeTries     int        `json:"codeTries,omitempty"`
}

// ClearCode drops any issued verification code.
func (a *LoginAttempt) ClearCode() {
	a.CodeHash = nil
	a.CodeSalt = nil
	a.CodeExpiresAt = nil
	a.CodeTries = 0
}

// Settings is the singleton store configuration.
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

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		StoreName:    "Toko Saya",
		Theme:        "light",
		Language:     "id",
		Currency:     "IDR",
		Timezone:     "Asia/Jakarta",
		LoginMessage: "Silahkan Masukkan Username dan Password",
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
