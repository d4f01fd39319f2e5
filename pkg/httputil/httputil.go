// Package httputil centralizes JSON response writing and request decoding
// so handlers never hardcode status numbers or envelope shapes.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "demogate/pkg/domain-errors"
	httpErrors "demogate/pkg/http-errors"
)

// Envelope is the uniform response body for all JSON endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes an arbitrary JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so encoding
	// errors are ignored; the headers are already sent.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteData writes a success envelope with the given payload.
func WriteData(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteError translates a domain error into an HTTP error envelope. Errors
// without a domain code fall back to 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteJSON(w, httpErrors.ToHTTPStatus(domainErr.Code), Envelope{
			Success: false,
			Error:   string(domainErr.Code),
			Message: domainErr.Message,
		})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, Envelope{
		Success: false,
		Error:   string(dErrors.CodeInternal),
	})
}

// DecodeJSON decodes a JSON request body into the target type.
// On failure it writes the error response and returns nil, false.
//
// Usage:
//
//	req, ok := httputil.DecodeJSON[trackRequest](w, r, h.logger, ctx)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeMalformedPayload, "invalid request body"))
		return nil, false
	}
	return &req, true
}
