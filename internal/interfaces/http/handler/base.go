// Package handler holds the gin handlers of the desk service.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/dto"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InvalidBody answers a request whose body or query could not be bound
func (h *BaseHandler) InvalidBody(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, middleware.ValidationMessage(err))
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
}

// HandleError converts domain, upstream and unexpected errors to responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	if errors.Is(err, context.DeadlineExceeded) {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeUpstream, "The ERP server did not answer in time")
		return
	}

	var apiErr *erp.APIError
	if errors.As(err, &apiErr) {
		code, status := upstreamStatus(apiErr.StatusCode)
		h.Error(c, status, code, apiErr.Message())
		return
	}

	var transportErr *erp.TransportError
	if errors.As(err, &transportErr) {
		h.ErrorWithCode(c, dto.ErrCodeUpstream, shared.ErrUpstream.Message)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// upstreamStatus maps an ERP answer to the code and status of the desk
// response. Only 404, 409 and rejected input reach the caller as client
// errors, every other answer is a bad gateway.
func upstreamStatus(status int) (string, int) {
	switch {
	case status == http.StatusNotFound:
		return dto.ErrCodeNotFound, http.StatusNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return dto.ErrCodeValidation, http.StatusBadRequest
	case status == http.StatusConflict:
		return dto.ErrCodeConflict, http.StatusConflict
	case status >= 400 && status < 500:
		return dto.ErrCodeUpstreamRejected, http.StatusBadGateway
	default:
		return dto.ErrCodeUpstream, http.StatusBadGateway
	}
}
