package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus values.
const (
	BookingConfirmed = "confirmed"
)

// Booking is a hotel stay recorded for a user.
type Booking struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	HotelName   string          `json:"hotel_name"`
	CheckIn     time.Time       `json:"check_in"`
	CheckOut    time.Time       `json:"check_out"`
	Guests      int             `json:"guests"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	VoucherCode *string         `json:"voucher_code,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
