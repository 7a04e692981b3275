package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserPatch carries optional user field updates; nil fields are left unchanged.
// The creation stamps are only set when an upsert creates the user.
type UserPatch struct {
	Username  *string
	PwdHash   []byte
	SaltAuth  []byte
	Role      *Role
	Email     *string
	CreatedAt *time.Time
	CreatedBy *string
}

// Apply copies the set fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PwdHash != nil {
		u.PwdHash = append([]byte(nil), p.PwdHash...)
		u.SaltAuth = append([]byte(nil), p.SaltAuth...)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.CreatedAt != nil {
		u.CreatedAt = *p.CreatedAt
	}
	if p.CreatedBy != nil {
		u.CreatedBy = *p.CreatedBy
	}
}

// ProductPatch carries optional product field updates. Stock is deliberately absent.
type ProductPatch struct {
	Name             *string
	SKU              *string
	Unit             *string
	BuyPrice         *decimal.Decimal
	SellPrice        *decimal.Decimal
	ProfitPercentage *decimal.Decimal
	CreatedAt        *time.Time
	CreatedBy        *string
	UpdatedAt        *time.Time
	UpdatedBy        *string
}

// Apply copies the set fields onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.SKU != nil {
		p.SKU = *pp.SKU
	}
	if pp.Unit != nil {
		p.Unit = *pp.Unit
	}
	if pp.BuyPrice != nil {
		p.BuyPrice = *pp.BuyPrice
	}
	if pp.SellPrice != nil {
		p.SellPrice = *pp.SellPrice
	}
	if pp.ProfitPercentage != nil {
		p.ProfitPercentage = *pp.ProfitPercentage
	}
	if pp.CreatedAt != nil {
		p.CreatedAt = *pp.CreatedAt
	}
	if pp.CreatedBy != nil {
		p.CreatedBy = *pp.CreatedBy
	}
	if pp.UpdatedAt != nil {
		t := *pp.UpdatedAt
		p.UpdatedAt = &t
	}
	if pp.UpdatedBy != nil {
		p.UpdatedBy = *pp.UpdatedBy
	}
}

// SettingsPatch carries optional settings updates.
type SettingsPatch struct {
	StoreName    *string `validate:"omitempty,min=1,max=120"`
	StoreAddress *string `validate:"omitempty,max=500"`
	StoreLogo    *string
	StoreAdmin   *string `validate:"omitempty,max=120"`
	StoreCS      *string `validate:"omitempty,max=120"`
	Theme        *string `validate:"omitempty,oneof=light dark"`
	Language     *string `validate:"omitempty,oneof=id en"`
	Currency     *string `validate:"omitempty,len=3,uppercase"`
	Timezone     *string `validate:"omitempty,timezone"`
	LoginMessage *string `validate:"omitempty,max=500"`
	LoginImage   *string
	OwnerEmail   *string `validate:"omitempty,email"`
}

// Apply copies the set fields onto s.
func (p SettingsPatch) Apply(s *Settings) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.StoreName, p.StoreName)
	set(&s.StoreAddress, p.StoreAddress)
	set(&s.StoreLogo, p.StoreLogo)
	set(&s.StoreAdmin, p.StoreAdmin)
	set(&s.StoreCS, p.StoreCS)
	set(&s.Theme, p.Theme)
	set(&s.Language, p.Language)
	set(&s.Currency, p.Currency)
	set(&s.Timezone, p.Timezone)
	set(&s.LoginMessage, p.LoginMessage)
	set(&s.LoginImage, p.LoginImage)
	set(&s.OwnerEmail, p.OwnerEmail)
}
