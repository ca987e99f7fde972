package controllers

import (
	"net/http"

	"github.com/shopmithra/mithra-backend/api/middleware"
	"github.com/shopmithra/mithra-backend/api/responses"
	"github.com/shopmithra/mithra-backend/api/validators"
	"github.com/shopmithra/mithra-backend/internal/checkout"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

type validateCouponPayload struct {
	Code string `json:"code" validate:"required"`
}

// CouponValidate checks a coupon against the caller's current cart and
// returns the discounted breakdown. Rejection reasons come back verbatim in
// the error message so the storefront can show them under the input field.
func CouponValidate(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		var payload validateCouponPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		breakdown, err := svc.Quote(ctx, sessionKey, payload.Code)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"valid":     true,
			"breakdown": breakdown,
		})
	}
}
