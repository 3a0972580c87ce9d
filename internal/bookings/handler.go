package bookings

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freestay/backend/internal/middleware"
	"github.com/freestay/backend/internal/models"
	"github.com/freestay/backend/internal/vouchers"
	"github.com/freestay/backend/pkg/response"
)

const dateLayout = "2006-01-02"

// Store is the persistence the handler needs.
type Store interface {
	Create(ctx context.Context, b *models.Booking) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
}

// CreateRequest is the body for POST /bookings.
type CreateRequest struct {
	HotelName   string          `json:"hotelName" binding:"required"`
	CheckIn     string          `json:"checkIn" binding:"required"`
	CheckOut    string          `json:"checkOut" binding:"required"`
	Guests      int             `json:"guests" binding:"required,min=1"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	VoucherCode string          `json:"voucherCode"` // code already applied via /vouchers/apply
}

// Handler handles booking HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a bookings handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /bookings.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.store.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list bookings failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to list bookings")
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// Create handles POST /bookings.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		response.BadRequest(c, "invalid checkIn")
		return
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		response.BadRequest(c, "invalid checkOut")
		return
	}
	if !checkIn.Before(checkOut) {
		response.BadRequest(c, "checkOut must be after checkIn")
		return
	}
	if req.TotalPrice.IsNegative() {
		response.BadRequest(c, "totalPrice must not be negative")
		return
	}

	b := &models.Booking{
		UserID:     c.MustGet(middleware.ContextUserID).(uuid.UUID),
		HotelName:  strings.TrimSpace(req.HotelName),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
		TotalPrice: req.TotalPrice,
		Status:     models.BookingConfirmed,
	}
	if code := vouchers.NormalizeCode(req.VoucherCode); code != "" {
		b.VoucherCode = &code
	}
	if err := h.store.Create(c.Request.Context(), b); err != nil {
		h.logger.Error("create booking failed", zap.Error(err), zap.String("user_id", b.UserID.String()))
		response.Internal(c, "failed to create booking")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": b})
}
