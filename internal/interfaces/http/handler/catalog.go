package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/dto"
)

// Describer is a page that can report what it offers
type Describer interface {
	Describe() dto.PageInfo
}

// CatalogHandler lists every page the desk serves
type CatalogHandler struct {
	BaseHandler
	pages []Describer
}

// NewCatalogHandler creates the catalog of pages
func NewCatalogHandler(pages ...Describer) *CatalogHandler {
	return &CatalogHandler{pages: pages}
}

// RegisterRoutes mounts GET /pages under rg
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pages", h.List)
}

// List returns the pages in registration order
func (h *CatalogHandler) List(c *gin.Context) {
	infos := make([]dto.PageInfo, len(h.pages))
	for i, p := range h.pages {
		infos[i] = p.Describe()
	}
	h.Success(c, infos)
}
