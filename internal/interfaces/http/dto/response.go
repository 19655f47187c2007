package dto

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// StatusRequest is the body of an explicit status change
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OptionsQuery narrows an options bundle to one sub-module
type OptionsQuery struct {
	Module string `form:"module"`
}

// ReferenceQuery names the parent document of a by-reference create
type ReferenceQuery struct {
	Doctype string `form:"doctype" binding:"required"`
	Name    string `form:"name" binding:"required"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Views   int    `json:"views"`
}

// PageInfo describes one listing page of the desk
type PageInfo struct {
	Page        string   `json:"page"`
	Title       string   `json:"title"`
	Module      string   `json:"module"`
	Resource    string   `json:"resource"`
	FilterKeys  []string `json:"filter_keys"`
	Writable    bool     `json:"writable"`
	ByReference bool     `json:"by_reference"`
	StatusFlow  string   `json:"status_flow,omitempty"`
	Statuses    []string `json:"statuses,omitempty"`
}
