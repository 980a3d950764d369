package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

const serviceName = "go-domainprompts"

// HealthHandler handles health check requests
type HealthHandler struct {
	registry *prompts.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *prompts.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// ReadinessCheck handles GET /ready. The service is ready when every
// registered template set implements its full vocabulary.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if err := h.registry.Validate(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"service":    serviceName,
		"generation": h.registry.Generation(),
	})
}
