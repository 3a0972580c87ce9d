package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freestay/backend/internal/models"
)

// Rejection messages. They do not say which condition failed.
const (
	MsgInvalidOrExpired      = "Invalid or expired voucher"
	MsgInvalidOrUnauthorized = "Invalid or unauthorized voucher"
)

// DefaultCommissionRate is the share of the booking price removed by a voucher.
var DefaultCommissionRate = decimal.RequireFromString("0.15")

// Config tunes voucher issuance and redemption.
type Config struct {
	UsageLimit     int
	Validity       time.Duration
	CommissionRate decimal.Decimal
	// Now and NewCode default to time.Now and GenerateCode.
	Now     func() time.Time
	NewCode func() string
}

// ValidateResult is the outcome of a validation lookup.
type ValidateResult struct {
	Valid   bool                   `json:"valid"`
	Voucher *models.VoucherSummary `json:"voucher,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ApplyResult is the outcome of a redemption.
type ApplyResult struct {
	Success           bool             `json:"success"`
	OriginalPrice     *decimal.Decimal `json:"originalPrice,omitempty"`
	FinalPrice        *decimal.Decimal `json:"finalPrice,omitempty"`
	CommissionRemoved *decimal.Decimal `json:"commissionRemoved,omitempty"`
	VoucherApplied    bool             `json:"voucherApplied,omitempty"`
	Error             string           `json:"error,omitempty"`
}

// Service implements the voucher lifecycle on top of a Store.
type Service struct {
	store  Store
	cfg    Config
	logger *zap.Logger
}

// NewService creates a voucher service. Zero config fields take the defaults.
func NewService(store Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UsageLimit < 1 {
		cfg.UsageLimit = 1
	}
	if cfg.Validity <= 0 {
		cfg.Validity = 365 * 24 * time.Hour
	}
	if cfg.CommissionRate.IsZero() {
		cfg.CommissionRate = DefaultCommissionRate
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewCode == nil {
		cfg.NewCode = GenerateCode
	}
	return &Service{store: store, cfg: cfg, logger: logger}
}

// List returns the caller's vouchers, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Voucher, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	if list == nil {
		list = []models.Voucher{}
	}
	return list, nil
}

// Purchase issues a new active voucher for userID valid from now.
// The amount is recorded as given.
func (s *Service) Purchase(ctx context.Context, amount decimal.Decimal, userID uuid.UUID) (*models.Voucher, error) {
	start := s.cfg.Now().UTC().Truncate(time.Microsecond)
	v := &models.Voucher{
		Code:            s.cfg.NewCode(),
		Price:           amount,
		ValidityStart:   start,
		ValidityEnd:     start.Add(s.cfg.Validity),
		PurchasedByUser: userID,
		Status:          models.VoucherActive,
		CurrentUses:     0,
		UsageLimit:      s.cfg.UsageLimit,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create voucher: %w", err)
	}
	s.logger.Info("voucher purchased",
		zap.String("voucher_id", v.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("price", amount.String()),
	)
	return v, nil
}

// Validate reports whether code names an active, in-window voucher. It never mutates state.
func (s *Service) Validate(ctx context.Context, code string) (ValidateResult, error) {
	v, err := s.store.FindRedeemable(ctx, NormalizeCode(code))
	if errors.Is(err, ErrNotFound) {
		return ValidateResult{Valid: false, Error: MsgInvalidOrExpired}, nil
	}
	if err != nil {
		return ValidateResult{}, fmt.Errorf("find voucher: %w", err)
	}
	summary := v.Summary()
	return ValidateResult{Valid: true, Voucher: &summary}, nil
}

// Apply redeems one use of the caller's voucher and computes the discounted price.
func (s *Service) Apply(ctx context.Context, code string, totalPrice decimal.Decimal, userID uuid.UUID) (ApplyResult, error) {
	v, err := s.store.Redeem(ctx, NormalizeCode(code), userID)
	if errors.Is(err, ErrNotFound) {
		return ApplyResult{Success: false, Error: MsgInvalidOrUnauthorized}, nil
	}
	if err != nil {
		return ApplyResult{}, fmt.Errorf("redeem voucher: %w", err)
	}
	original, final, removed := s.Discount(totalPrice)
	s.logger.Info("voucher applied",
		zap.String("voucher_id", v.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("current_uses", v.CurrentUses),
		zap.String("status", string(v.Status)),
	)
	return ApplyResult{
		Success:           true,
		OriginalPrice:     &original,
		FinalPrice:        &final,
		CommissionRemoved: &removed,
		VoucherApplied:    true,
	}, nil
}

// Discount splits totalPrice into the final price and the commission removed.
func (s *Service) Discount(totalPrice decimal.Decimal) (original, final, removed decimal.Decimal) {
	removed = totalPrice.Mul(s.cfg.CommissionRate)
	return totalPrice, totalPrice.Sub(removed), removed
}
