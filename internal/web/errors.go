package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (HTMX, JSON, or HTML)
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), which picks the status via statusFor
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/civilcsv/internal/collaborator"
	"github.com/JonMunkholm/civilcsv/internal/core"
	"github.com/JonMunkholm/civilcsv/internal/logging"
	"github.com/JonMunkholm/civilcsv/internal/web/templates"
)

var (
	// errNoFile is returned when a required upload field is empty.
	errNoFile = errors.New("no file provided")

	// errFileTooLarge is returned when an upload exceeds the configured limit.
	errFileTooLarge = errors.New("file too large")

	// errInvalidEdit is returned for malformed editor request bodies.
	errInvalidEdit = errors.New("invalid edit request")

	// errUnknownOperation is returned for drawing operations with no handler.
	errUnknownOperation = errors.New("unknown drawing operation")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// statusFor picks the HTTP status for an error returned by core or the
// collaborator client.
func statusFor(err error) int {
	var callErr *collaborator.CallError
	switch {
	case errors.Is(err, core.ErrSessionNotFound), errors.Is(err, errUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrCellOutOfRange),
		errors.Is(err, errInvalidEdit),
		errors.Is(err, errNoFile),
		errors.Is(err, collaborator.ErrMissingInput),
		errors.Is(err, collaborator.ErrNotDrawing),
		strings.Contains(err.Error(), "unsupported encoding"):
		return http.StatusBadRequest
	case errors.Is(err, collaborator.ErrTooManyCalls):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &callErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type (HTMX, JSON, or HTML).
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	userMsg := core.MapError(err)

	attrs := append([]any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}, core.ClientAttrs(r.Context())...)

	logger := logging.FromContext(r.Context())
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	// Collaborator failures carry the underlying error text for the user.
	var detail string
	var callErr *collaborator.CallError
	if errors.As(err, &callErr) {
		detail = callErr.Error()
	}

	if isHTMX(r) {
		s.renderErrorPartial(w, r, userMsg, detail, statusCode)
	} else if wantsJSON(r) {
		respondErrorJSON(w, userMsg, detail, statusCode)
	} else {
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, detail string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Detail:  detail,
	})
}

// respondErrorHTML writes a plain HTML error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func (s *Server) renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, detail string, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	action := msg.Action
	if detail != "" {
		action = detail + ". " + action
	}
	templates.ErrorAlert(msg.Message, action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	contentType := r.Header.Get("Content-Type")

	if strings.Contains(accept, "application/json") {
		return true
	}

	if strings.Contains(contentType, "application/json") {
		return true
	}

	// API routes default to JSON
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}

	return false
}
