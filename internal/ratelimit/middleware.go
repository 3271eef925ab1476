package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/toko-margin/internal/common"
)

// KeyByClientIP keys requests by common.ClientIP. That is the socket peer unless the
// router trusts a proxy and runs chi's RealIP in front of the limiter.
func KeyByClientIP(r *http.Request) string {
	return "ip:" + common.ClientIP(r)
}

// Handler throttles pricing requests per key.
type Handler struct {
	Limiter Limiter
	Key     func(*http.Request) string
	Rate    limiter.Rate
	OnError func(error)
}

func (h Handler) enabled() bool {
	return h.Limiter != nil && h.Key != nil && h.Rate.Limit > 0 && h.Rate.Period > 0
}

// Middleware answers 429 with the canonical error body once the key has used its quota.
// A failing store lets the request through and reports the error to OnError.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if !h.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := h.Limiter.Take(r.Context(), h.Key(r), h.Rate)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))
		if res.Reached {
			headers.Set("Retry-After", strconv.Itoa(retryAfter(res.Reset)))
			common.JSONError(w, http.StatusTooManyRequests, common.CodeRateLimited, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfter(reset int64) int {
	secs := math.Ceil(time.Until(time.Unix(reset, 0)).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}
