package httpext

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/lenderlist/lenders-proxy/internal/logger"
)

// ErrorResponse represents a standardised JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Marshal encodes v as compact JSON without HTML escaping or a trailing
// newline, so bodies match what browsers' JSON.stringify would produce.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON writes v as the response body with the given status code
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := Marshal(v)
	if err != nil {
		logger.Error(logger.HANDLER, "Failed to encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		logger.Debug(logger.HANDLER, "Failed to write response: %v", err)
	}
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, ErrorResponse{Error: message})
}

// JsonErrorWithDetails writes a JSON error response that carries extra detail
func JsonErrorWithDetails(w http.ResponseWriter, code int, err ErrorResponse) {
	WriteJSON(w, code, err)
}
