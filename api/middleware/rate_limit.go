package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/shopmithra/mithra-backend/api/responses"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

const (
	checkoutRateLimit  = int64(10)
	checkoutRateWindow = time.Minute
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// CheckoutRateLimit throttles checkout attempts per cart session with a
// fixed window. It sits in front of the session claim so a hammering client
// is refused before touching the gateway.
func CheckoutRateLimit(limiter rateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			sessionKey := CartSessionFromContext(r.Context())
			if sessionKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := limiter.FixedWindowAllow(r.Context(), "checkout:"+sessionKey, checkoutRateLimit, checkoutRateWindow)
			if err != nil {
				// Rate limiting is best effort, a broken counter must not
				// block checkouts.
				if logg != nil {
					logg.Warn(r.Context(), "rate limit check failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{"attempts": count})
					logg.Warn(ctx, "checkout rate limit exceeded")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many checkout attempts, please wait a moment"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
