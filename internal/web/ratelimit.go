package web

import (
	"net/http"

	"golang.org/x/time/rate"
)

// UploadLimiter throttles the parse endpoints with a shared token bucket.
// Parsing is CPU-bound and uploads can be large, so the limit guards the
// whole process rather than individual clients.
type UploadLimiter struct {
	limiter *rate.Limiter
}

// NewUploadLimiter creates a limiter allowing rps uploads per second with
// the given burst.
func NewUploadLimiter(rps float64, burst int) *UploadLimiter {
	return &UploadLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Middleware rejects requests exceeding the limit with 429.
func (l *UploadLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter.Allow() {
			http.Error(w, "too many uploads, retry later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
