package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"grow104.org/internal/apperr"
	"grow104.org/internal/obs"
)

// errorBody is the wire envelope for failures. statusCode is repeated
// in the body so browser clients never need to read the HTTP status.
type errorBody struct {
	Success          bool              `json:"success"`
	Error            string            `json:"error"`
	StatusCode       int               `json:"statusCode"`
	ValidationErrors []apperr.Violation `json:"validationErrors,omitempty"`
	Data             any               `json:"data,omitempty"`
}

type successBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any, message string) {
	writeJSON(w, code, successBody{Success: true, Data: data, Message: message})
}

// writeErr maps an error onto the envelope exactly once, at the
// boundary. Unrecognized errors surface as a generic 500; their cause
// is logged, never leaked.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		obs.Emit("error", map[string]any{
			"msg":        "unhandled error",
			"path":       r.URL.Path,
			"method":     r.Method,
			"request_id": RequestIDFromContext(r.Context()),
			"error":      err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:      "Internal server error",
			StatusCode: http.StatusInternalServerError,
		})
		return
	}

	code := apperr.Status(appErr.Kind)
	if code >= http.StatusInternalServerError {
		obs.Emit("error", map[string]any{
			"msg":        "internal error",
			"path":       r.URL.Path,
			"method":     r.Method,
			"request_id": RequestIDFromContext(r.Context()),
			"error":      appErr.Error(),
		})
	}
	msg := appErr.Message
	if msg == "" {
		msg = string(appErr.Kind)
	}
	writeJSON(w, code, errorBody{
		Error:            msg,
		StatusCode:       code,
		ValidationErrors: appErr.Violations,
		Data:             appErr.Data,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{
		Error:      "Method not allowed",
		StatusCode: http.StatusMethodNotAllowed,
	})
}
