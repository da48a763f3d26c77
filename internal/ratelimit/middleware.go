package ratelimit

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

type KeyFunc func(r *http.Request) string

// RejectHook é chamado a cada 429 (métricas).
type RejectHook func(policy string)

type rejection struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter"`
}

// Middleware aplica a política a cada requisição. KeyFn nil usa ClientIP.
func (l *Limiter) Middleware(p Policy, keyFn KeyFunc, onReject RejectHook) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := keyFn(r)
			d := l.Allow(r.Context(), p, ip)

			w.Header().Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.ResetAt.IsZero() {
				w.Header().Set("RateLimit-Reset", strconv.Itoa(secondsUntil(l.now(), d.ResetAt)))
			}

			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			log.Printf("🚫 Rate limit exceeded for IP: %s on path: %s (%s)", ip, r.URL.Path, p.Name)
			if onReject != nil {
				onReject(p.Name)
			}

			w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(rejection{
				Success:    false,
				Message:    p.Message,
				Code:       p.Code,
				RetryAfter: d.RetryAfter,
			})
		})
	}
}
