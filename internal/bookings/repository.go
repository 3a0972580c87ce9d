package bookings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freestay/backend/internal/models"
)

const bookingColumns = `id, user_id, hotel_name, check_in, check_out, guests, total_price, voucher_code, status, created_at`

// Repository handles booking persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a bookings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a booking and fills in the generated fields.
func (r *Repository) Create(ctx context.Context, b *models.Booking) error {
	const q = `INSERT INTO bookings (user_id, hotel_name, check_in, check_out, guests, total_price, voucher_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, b.UserID, b.HotelName, b.CheckIn, b.CheckOut, b.Guests, b.TotalPrice, b.VoucherCode, b.Status).
		Scan(&b.ID, &b.CreatedAt)
}

// ListByUser returns a user's bookings, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.HotelName, &b.CheckIn, &b.CheckOut, &b.Guests,
			&b.TotalPrice, &b.VoucherCode, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
