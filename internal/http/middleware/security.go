package middleware

import (
	"fmt"
	"net/http"

	"github.com/straye-as/agency-pipeline/internal/config"
)

type header struct {
	name, value string
}

// securityHeaders resolves the configured headers once; empty values are not sent
func securityHeaders(cfg *config.SecurityConfig) []header {
	var headers []header
	add := func(name, value string) {
		if value != "" {
			headers = append(headers, header{name, value})
		}
	}

	if cfg.ContentTypeNosniff {
		add("X-Content-Type-Options", "nosniff")
	}
	add("X-Frame-Options", cfg.FrameOptions)
	add("Content-Security-Policy", cfg.ContentSecurityPolicy)
	add("Referrer-Policy", cfg.ReferrerPolicy)
	if cfg.EnableHSTS {
		add("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge))
	}
	return headers
}

// SecurityHeaders sets the configured response headers and strips Server
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	headers := securityHeaders(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, sh := range headers {
				h.Set(sh.name, sh.value)
			}
			h.Del("Server")
			next.ServeHTTP(w, r)
		})
	}
}
