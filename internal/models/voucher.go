package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// VoucherStatus is active until the usage limit is reached, then used.
type VoucherStatus string

const (
	VoucherActive VoucherStatus = "active"
	VoucherUsed   VoucherStatus = "used"
)

// Voucher is a prepaid voucher owned by the user who purchased it.
type Voucher struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Price           decimal.Decimal `json:"price"`
	ValidityStart   time.Time       `json:"validity_start"`
	ValidityEnd     time.Time       `json:"validity_end"`
	PurchasedByUser uuid.UUID       `json:"purchased_by_user"`
	Status          VoucherStatus   `json:"status"`
	CurrentUses     int             `json:"current_uses"`
	UsageLimit      int             `json:"usage_limit"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Redeemable reports whether the voucher can be applied at t.
func (v *Voucher) Redeemable(t time.Time) bool {
	return v.Status == VoucherActive && !t.Before(v.ValidityStart) && !t.After(v.ValidityEnd)
}

// VoucherSummary is the subset of a voucher exposed by validation.
type VoucherSummary struct {
	ID    uuid.UUID       `json:"id"`
	Code  string          `json:"code"`
	Price decimal.Decimal `json:"price"`
}

// Summary strips ownership and usage details.
func (v *Voucher) Summary() VoucherSummary {
	return VoucherSummary{ID: v.ID, Code: v.Code, Price: v.Price}
}
