package erp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
)

// ErrMalformedResponse is returned when a 2xx body does not carry the
// expected envelope.
var ErrMalformedResponse = errors.New("erp: malformed response envelope")

// APIError is a non-2xx answer from the ERP server.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Details is the "details" string of the error body, if any.
	Details string
	Body    []byte
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, StatusCode: status, Body: body}
	var payload struct {
		Details any `json:"details"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if s, ok := payload.Details.(string); ok {
			e.Details = strings.TrimSpace(s)
		}
	}
	return e
}

// Message is the text shown to the user.
func (e *APIError) Message() string {
	if e.Details != "" {
		return e.Details
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}

func (e *APIError) Error() string {
	return e.Message()
}

// Is maps well-known statuses onto the shared domain errors.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusNotFound:
		return errors.Is(shared.ErrNotFound, target)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.Is(shared.ErrValidation, target)
	case http.StatusConflict:
		return errors.Is(shared.ErrConflict, target)
	}
	if e.StatusCode >= 500 {
		return errors.Is(shared.ErrUpstream, target)
	}
	return false
}

// TransportError means no HTTP answer was received.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", shared.ErrUpstream.Message, e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return errors.Is(shared.ErrUpstream, target)
}

// UserMessage converts any client error into the message shown to users.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return shared.ErrUpstream.Message
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
