package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/dto"
)

// HealthHandler answers liveness probes
type HealthHandler struct {
	BaseHandler
	service  string
	registry *views.Registry
}

// NewHealthHandler creates the handler. registry may be nil.
func NewHealthHandler(service string, registry *views.Registry) *HealthHandler {
	return &HealthHandler{service: service, registry: registry}
}

// Health reports the service as up with the number of cached views
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Service: h.service}
	if h.registry != nil {
		resp.Views = h.registry.Len()
	}
	h.Success(c, resp)
}
