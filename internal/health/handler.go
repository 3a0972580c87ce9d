package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Handler reports database and cache connectivity.
type Handler struct {
	database CheckFunc
	redis    CheckFunc
	timeout  time.Duration
	logger   *zap.Logger
}

// NewHandler creates a health handler.
func NewHandler(database, redis CheckFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{database: database, redis: redis, timeout: 2 * time.Second, logger: logger}
}

// Check handles GET /health.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.database(ctx); err != nil {
		h.unhealthy(c, "database", err)
		return
	}
	if err := h.redis(ctx); err != nil {
		h.unhealthy(c, "redis", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"redis":     "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) unhealthy(c *gin.Context, dependency string, err error) {
	h.logger.Warn("health check failed", zap.String("dependency", dependency), zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status": "unhealthy",
		"error":  dependency + " unreachable",
	})
}
