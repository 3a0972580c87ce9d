package vouchers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freestay/backend/internal/models"
)

const pgUniqueViolation = "23505"

const voucherColumns = `id, code, price, validity_start, validity_end, purchased_by_user,
	status, current_uses, usage_limit, created_at, updated_at`

// Repository is the PostgreSQL Store. The validity window is checked against the server clock.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a voucher repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanVoucher(row pgx.Row) (*models.Voucher, error) {
	var v models.Voucher
	err := row.Scan(&v.ID, &v.Code, &v.Price, &v.ValidityStart, &v.ValidityEnd, &v.PurchasedByUser,
		&v.Status, &v.CurrentUses, &v.UsageLimit, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a voucher.
func (r *Repository) Create(ctx context.Context, v *models.Voucher) error {
	const q = `INSERT INTO vouchers (code, price, validity_start, validity_end, purchased_by_user, status, current_uses, usage_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + voucherColumns
	created, err := scanVoucher(r.pool.QueryRow(ctx, q, v.Code, v.Price, v.ValidityStart, v.ValidityEnd,
		v.PurchasedByUser, string(v.Status), v.CurrentUses, v.UsageLimit))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateCode
		}
		return err
	}
	*v = *created
	return nil
}

// ListByUser returns a user's vouchers, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Voucher, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+voucherColumns+` FROM vouchers
		WHERE purchased_by_user = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// FindRedeemable returns the active voucher with code whose window contains NOW().
func (r *Repository) FindRedeemable(ctx context.Context, code string) (*models.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers
		WHERE code = $1
		AND status = 'active'
		AND validity_start <= NOW()
		AND validity_end >= NOW()`
	return scanVoucher(r.pool.QueryRow(ctx, q, code))
}

// Redeem matches and consumes a use in one statement. A concurrent redeemer blocks on the
// row lock and then re-checks status against the committed row, so the last use is taken once.
func (r *Repository) Redeem(ctx context.Context, code string, userID uuid.UUID) (*models.Voucher, error) {
	const q = `UPDATE vouchers
		SET current_uses = current_uses + 1,
			status = CASE WHEN current_uses + 1 >= usage_limit THEN 'used' ELSE 'active' END,
			updated_at = NOW()
		WHERE code = $1
		AND purchased_by_user = $2
		AND status = 'active'
		AND validity_start <= NOW()
		AND validity_end >= NOW()
		RETURNING ` + voucherColumns
	return scanVoucher(r.pool.QueryRow(ctx, q, code, userID))
}
