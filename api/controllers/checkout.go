package controllers

import (
	"net/http"

	"github.com/shopmithra/mithra-backend/api/middleware"
	"github.com/shopmithra/mithra-backend/api/responses"
	"github.com/shopmithra/mithra-backend/api/validators"
	"github.com/shopmithra/mithra-backend/internal/checkout"
	"github.com/shopmithra/mithra-backend/internal/orders"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

// CheckoutBegin claims the cart session, prices the cart server side, and
// creates the gateway order the payment widget opens against.
func CheckoutBegin(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		var input checkout.BeginInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Begin(ctx, sessionKey, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutState is the storefront's polling view of the session.
func CheckoutState(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		state, err := svc.State(ctx, sessionKey)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// CheckoutPaymentSuccess verifies the widget's success payload and commits
// the order. The committed order comes back so the storefront can render the
// confirmation page from this one response.
func CheckoutPaymentSuccess(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		var input checkout.PaymentSuccessInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.HandleSuccess(ctx, sessionKey, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTO(order))
	}
}

// CheckoutPaymentFailed records a widget payment failure and releases the
// session so the shopper can retry. The service surfaces the gateway's
// refusal as a typed error, and that error is the response.
func CheckoutPaymentFailed(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		var input checkout.PaymentFailedInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteError(ctx, logg, w, svc.HandleFailure(ctx, sessionKey, input))
	}
}

// CheckoutDismiss handles the shopper closing the widget without paying.
func CheckoutDismiss(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		if err := svc.HandleDismiss(ctx, sessionKey); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"dismissed": true})
	}
}
