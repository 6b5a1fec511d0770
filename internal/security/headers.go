// Package security holds the HTTP hardening middleware shared by every route.
package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

var baseHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cache-Control", "no-store"},
}

// HeaderPolicy sets the response headers every API reply carries.
type HeaderPolicy struct {
	Disabled bool
	// HSTS is advertised on TLS requests when positive.
	HSTS           time.Duration
	HSTSSubdomains bool
}

func (p HeaderPolicy) hsts() string {
	v := fmt.Sprintf("max-age=%d", int64(p.HSTS/time.Second))
	if p.HSTSSubdomains {
		v += "; includeSubDomains"
	}
	return v
}

// Middleware applies the policy before the handler writes.
func (p HeaderPolicy) Middleware(next http.Handler) http.Handler {
	if p.Disabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range baseHeaders {
			h.Set(kv[0], kv[1])
		}
		if p.HSTS > 0 && r.TLS != nil {
			h.Set("Strict-Transport-Security", p.hsts())
		}
		next.ServeHTTP(w, r)
	})
}

// CORS allows the admin panel and storefront origins. With no origins
// configured any origin is accepted, without credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
		opts.AllowCredentials = true
	}
	return cors.Handler(opts)
}
