package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/dto"
)

// Query parameters that are not upstream filters
const (
	queryParamSearch  = "q"
	queryParamRefresh = "refresh"
)

// ResourceHandler serves one document type: its listing page, export and
// record operations.
type ResourceHandler[T listview.Record] struct {
	BaseHandler
	resource *records.Resource[T]
}

// NewResourceHandler creates a handler for r
func NewResourceHandler[T listview.Record](r *records.Resource[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{resource: r}
}

// RegisterRoutes mounts the resource under rg, which is the module group.
// Writes and status routes exist only for resources that support them.
func (h *ResourceHandler[T]) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.resource.Endpoint().Resource)
	g.GET("", h.List)
	g.GET("/export", h.Export)
	g.GET("/:name", h.Get)

	if h.resource.Writable() {
		if h.resource.ByReference {
			g.POST("/by-reference", h.CreateByReference)
		} else {
			g.POST("", h.Create)
		}
		g.PUT("/:name", h.Update)
	}
	if h.resource.Flow() != nil {
		g.POST("/:name/status", h.SetStatus)
		g.POST("/:name/advance", h.Advance)
	}
}

// Describe reports what the page offers
func (h *ResourceHandler[T]) Describe() dto.PageInfo {
	ep := h.resource.Endpoint()
	page := h.resource.Lister.Page()
	info := dto.PageInfo{
		Page:        page.Name,
		Title:       page.Title,
		Module:      ep.Module,
		Resource:    ep.Resource,
		FilterKeys:  page.FilterKeys,
		Writable:    h.resource.Writable(),
		ByReference: h.resource.ByReference,
	}
	if flow := h.resource.Flow(); flow != nil {
		info.StatusFlow = flow.Name()
		info.Statuses = flow.Statuses()
	}
	return info
}

func (h *ResourceHandler[T]) listRequest(c *gin.Context) (views.ListRequest, error) {
	q := c.Request.URL.Query()
	req := views.ListRequest{
		Filter: listview.FilterFromQuery(q, queryParamSearch, queryParamRefresh),
		Search: q.Get(queryParamSearch),
	}
	if raw := q.Get(queryParamRefresh); raw != "" {
		refresh, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("refresh must be true or false, got %q", raw)
		}
		req.Refresh = refresh
	}
	return req, nil
}

// List answers the page: filtered upstream, searched locally, decorated and
// summarized.
func (h *ResourceHandler[T]) List(c *gin.Context) {
	req, err := h.listRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	result, err := h.resource.Lister.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Export sends the displayed rows of the page as an XLSX workbook
func (h *ResourceHandler[T]) Export(c *gin.Context) {
	req, err := h.listRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	table, err := h.resource.Lister.Export(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, table); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, table.Filename()))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// Get returns one record
func (h *ResourceHandler[T]) Get(c *gin.Context) {
	record, err := h.resource.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Create validates and posts a new record
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	in := h.resource.NewInput()
	if err := c.ShouldBindJSON(in); err != nil {
		h.InvalidBody(c, err)
		return
	}
	record, err := h.resource.Create(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// CreateByReference creates a record attached to the document named by the
// doctype and name query parameters.
func (h *ResourceHandler[T]) CreateByReference(c *gin.Context) {
	var ref dto.ReferenceQuery
	if err := c.ShouldBindQuery(&ref); err != nil {
		h.InvalidBody(c, err)
		return
	}
	in := h.resource.NewInput()
	if err := c.ShouldBindJSON(in); err != nil {
		h.InvalidBody(c, err)
		return
	}
	record, err := h.resource.CreateByReference(c.Request.Context(), ref.Doctype, ref.Name, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// Update validates and puts a record
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	in := h.resource.NewInput()
	if err := c.ShouldBindJSON(in); err != nil {
		h.InvalidBody(c, err)
		return
	}
	record, err := h.resource.Update(c.Request.Context(), c.Param("name"), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// SetStatus moves a record to an explicit status of its flow
func (h *ResourceHandler[T]) SetStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidBody(c, err)
		return
	}
	record, err := h.resource.SetStatus(c.Request.Context(), c.Param("name"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Advance moves a record one step forward in its flow
func (h *ResourceHandler[T]) Advance(c *gin.Context) {
	record, err := h.resource.Advance(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}
