package environment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freestay/backend/internal/middleware"
	"github.com/freestay/backend/internal/models"
	"github.com/freestay/backend/pkg/response"
)

// Store is the persistence the handler needs.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Environment, error)
	Put(ctx context.Context, userID uuid.UUID, section Section, doc json.RawMessage) error
}

// Handler serves the caller's dashboard config and preferences.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an environment handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Get handles GET /users/environment.
func (h *Handler) Get(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	env, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get environment failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load environment")
		return
	}
	c.JSON(http.StatusOK, env)
}

// UpdateConfig handles PUT /users/environment/config.
func (h *Handler) UpdateConfig(c *gin.Context) { h.put(c, SectionDashboardConfig) }

// UpdatePreferences handles PUT /users/environment/preferences.
func (h *Handler) UpdatePreferences(c *gin.Context) { h.put(c, SectionPreferences) }

func (h *Handler) put(c *gin.Context, section Section) {
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		response.BadRequest(c, "body must be a JSON object")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.store.Put(c.Request.Context(), userID, section, raw); err != nil {
		h.logger.Error("update environment failed", zap.Error(err),
			zap.String("user_id", userID.String()), zap.String("section", string(section)))
		response.Internal(c, "failed to update environment")
		return
	}
	response.OK(c, nil)
}
