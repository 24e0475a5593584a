package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainbin/internal/services"
)

// HealthHandler reports service readiness. The service is only ready
// once the embedding model has loaded and verified; before that every
// probe gets a 503 so load balancers keep traffic away.
type HealthHandler struct {
	inference *services.Inference
}

func NewHealthHandler(inference *services.Inference) *HealthHandler {
	return &HealthHandler{inference: inference}
}

// Health godoc
// @Summary Service health and readiness
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	model := h.inference.Model()

	if !h.inference.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "initializing",
			"model":  model.State().String(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model": gin.H{
			"state":     model.State().String(),
			"id":        model.ID(),
			"version":   model.Version(),
			"dimension": model.Dimension(),
		},
	})
}

func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
}
