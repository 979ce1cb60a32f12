package httpext

import (
	"net/http"
	"strings"
)

// CORSOptions are the values sent in the Access-Control-* response headers.
type CORSOptions struct {
	AllowOrigin  string
	AllowHeaders []string
	AllowMethods []string
}

// DefaultCORSOptions allows any origin to GET with a Content-Type header.
var DefaultCORSOptions = CORSOptions{
	AllowOrigin:  "*",
	AllowHeaders: []string{"Content-Type"},
	AllowMethods: []string{http.MethodGet, http.MethodOptions},
}

// SetCORSHeaders writes the CORS headers and the JSON content type.
func SetCORSHeaders(h http.Header, opts CORSOptions) {
	h.Set("Access-Control-Allow-Origin", opts.AllowOrigin)
	h.Set("Access-Control-Allow-Headers", strings.Join(opts.AllowHeaders, ", "))
	h.Set("Access-Control-Allow-Methods", strings.Join(opts.AllowMethods, ", "))
	h.Set("Content-Type", "application/json")
}
