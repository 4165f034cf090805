package web

// errors.go maps errors to responses. The technical error is logged with
// the request ID; the client gets the mapped user message as JSON, an HTML
// fragment or plain text depending on the request.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/examgrid/internal/core"
	"github.com/JonMunkholm/examgrid/internal/logging"
	"github.com/JonMunkholm/examgrid/internal/schedule"
	"github.com/JonMunkholm/examgrid/internal/store"
	"github.com/JonMunkholm/examgrid/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error. Error is the single line
// upload clients show: the workbook detail (which file, column or row) when
// there is one, the user message otherwise.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user-facing version of it.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request error", attrs...)
	}

	switch {
	case isPartial(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// statusFor picks the HTTP status of a service error.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrMissingUploadFile),
		errors.Is(err, core.ErrUnknownDataset),
		errors.Is(err, schedule.ErrInvalidWorkbook),
		errors.Is(err, schedule.ErrEmptyWorkbook),
		errors.Is(err, schedule.ErrMissingColumn),
		errors.Is(err, schedule.ErrInvalidNumber):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrNoRooms):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyGenerations):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Text(),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Text()+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial replaces a view fragment with an alert. The alert has
// no viewFrame, so the script hides filter, downloads and pagination.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Detail, msg.Action, msg.Code).Render(r.Context(), w)
}

// isPartial reports whether the client asked for an HTML fragment.
func isPartial(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// Upload and API routes default to JSON.
	return r.URL.Path == "/upload" || strings.HasPrefix(r.URL.Path, "/api/")
}
