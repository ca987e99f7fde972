package middleware

import (
	"net/http"
	"strings"

	"github.com/shopmithra/mithra-backend/api/responses"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

const cartSessionHeader = "X-Cart-Session"

// CartSession requires the storefront's opaque session header on every
// shopper route and threads it through the context and log fields.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionKey := strings.TrimSpace(r.Header.Get(cartSessionHeader))
			if sessionKey == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, cartSessionHeader+" header required"))
				return
			}
			if len(sessionKey) > 128 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, cartSessionHeader+" header too long"))
				return
			}

			ctx := WithCartSession(r.Context(), sessionKey)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionKey)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
