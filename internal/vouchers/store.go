package vouchers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/freestay/backend/internal/models"
)

var (
	// ErrNotFound means no voucher matched the code, owner, status and validity window.
	ErrNotFound = errors.New("voucher not found")
	// ErrDuplicateCode means the generated code already exists.
	ErrDuplicateCode = errors.New("voucher code already exists")
)

// Store persists vouchers. Implementations evaluate the validity window against their own clock.
type Store interface {
	// Create inserts v and fills in the store-assigned fields.
	Create(ctx context.Context, v *models.Voucher) error
	// ListByUser returns the vouchers purchased by userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Voucher, error)
	// FindRedeemable returns the active, in-window voucher with the given code.
	FindRedeemable(ctx context.Context, code string) (*models.Voucher, error)
	// Redeem atomically consumes one use of the active, in-window voucher with the given
	// code owned by userID and returns its post-update state.
	Redeem(ctx context.Context, code string, userID uuid.UUID) (*models.Voucher, error)
}
