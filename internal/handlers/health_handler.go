package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// HealthHandler exposes liveness and readiness probes
type HealthHandler struct {
	db     *gorm.DB
	orders repository.OrderRepository
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db *gorm.DB, orders repository.OrderRepository) *HealthHandler {
	return &HealthHandler{db: db, orders: orders}
}

// Health handles GET /health, process liveness only
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready, which checks the database and reports Redis as a
// degraded-but-ready dependency
func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"database": "down",
		})
		return
	}

	redisStatus := "ok"
	if err := h.orders.RedisHealth(c.Request.Context()); err != nil {
		redisStatus = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "ok",
		"redis":    redisStatus,
	})
}
