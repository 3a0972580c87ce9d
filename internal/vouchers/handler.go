package vouchers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freestay/backend/internal/middleware"
	"github.com/freestay/backend/pkg/response"
)

// PurchaseRequest is the body for POST /vouchers/purchase.
type PurchaseRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BookingData carries the booking total a voucher is applied to.
type BookingData struct {
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// ApplyRequest is the body for POST /vouchers/apply.
type ApplyRequest struct {
	VoucherCode string      `json:"voucherCode" binding:"required"`
	BookingData BookingData `json:"bookingData"`
}

// Handler handles voucher HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a voucher handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /vouchers.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list vouchers failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": list})
}

// Purchase handles POST /vouchers/purchase.
func (h *Handler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	v, err := h.svc.Purchase(c.Request.Context(), req.Amount, userID)
	if err != nil {
		h.logger.Error("purchase voucher failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to purchase voucher")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "voucher": v})
}

// Validate handles GET /vouchers/validate/:code.
func (h *Handler) Validate(c *gin.Context) {
	res, err := h.svc.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.logger.Error("validate voucher failed", zap.Error(err))
		response.Internal(c, "failed to validate voucher")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Apply handles POST /vouchers/apply.
func (h *Handler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	res, err := h.svc.Apply(c.Request.Context(), req.VoucherCode, req.BookingData.TotalPrice, userID)
	if err != nil {
		h.logger.Error("apply voucher failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to apply voucher")
		return
	}
	c.JSON(http.StatusOK, res)
}
