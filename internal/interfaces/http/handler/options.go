package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/dto"
)

// OptionsHandler serves the lookup lists of one module
type OptionsHandler struct {
	BaseHandler
	module  string
	service *records.OptionsService
}

// NewOptionsHandler creates the handler for module
func NewOptionsHandler(module string, service *records.OptionsService) *OptionsHandler {
	return &OptionsHandler{module: module, service: service}
}

// RegisterRoutes mounts GET /options and POST /options/refresh under rg
func (h *OptionsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/options", h.Get)
	rg.POST("/options/refresh", h.Refresh)
}

// Get returns the bundle, narrowed by ?module= when given
func (h *OptionsHandler) Get(c *gin.Context) {
	var q dto.OptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.InvalidBody(c, err)
		return
	}
	bundle, err := h.service.Bundle(c.Request.Context(), h.module, q.Module)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bundle)
}

// Refresh drops the cached bundle and fetches it again
func (h *OptionsHandler) Refresh(c *gin.Context) {
	var q dto.OptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.InvalidBody(c, err)
		return
	}
	if err := h.service.Invalidate(c.Request.Context(), h.module, q.Module); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Get(c)
}
