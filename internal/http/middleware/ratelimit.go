package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/straye-as/agency-pipeline/internal/config"
	"go.uber.org/zap"
)

// RateLimiter applies a per client IP request budget per minute
type RateLimiter struct {
	enabled  bool
	logger   *zap.Logger
	limit    func(http.Handler) http.Handler
	exact    map[string]struct{}
	prefixes []string
}

// NewRateLimiter builds the limiter. Whitelist entries are exact paths, or
// prefixes when they end in "/*".
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled: cfg.Enabled,
		logger:  logger,
		exact:   make(map[string]struct{}, len(cfg.WhitelistPaths)),
	}
	for _, path := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(path, "/*"); ok {
			rl.prefixes = append(rl.prefixes, prefix)
			continue
		}
		rl.exact[path] = struct{}{}
	}

	rl.limit = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rl.tooManyRequests),
	)

	logger.Info("rate limiter configured",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Strings("whitelist_paths", cfg.WhitelistPaths))

	return rl
}

// LimitByIP is the router middleware; it passes everything through when disabled
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}

	limited := rl.limit(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(path string) bool {
	if _, ok := rl.exact[path]; ok {
		return true
	}
	for _, prefix := range rl.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	rl.logger.Warn("rate limit exceeded",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"type":   "rate_limited",
		"title":  http.StatusText(http.StatusTooManyRequests),
		"status": http.StatusTooManyRequests,
		"detail": "Too many requests. Please try again later.",
	})
}
