package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopmithra/mithra-backend/api/middleware"
	"github.com/shopmithra/mithra-backend/api/responses"
	"github.com/shopmithra/mithra-backend/api/validators"
	"github.com/shopmithra/mithra-backend/internal/orders"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

// OrdersList returns the orders placed under the caller's cart session.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		records, err := svc.List(ctx, sessionKey)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dtos := make([]orders.OrderDTO, 0, len(records))
		for i := range records {
			dtos = append(dtos, orders.ToDTO(&records[i]))
		}
		responses.WriteSuccess(w, dtos)
	}
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionKey := middleware.CartSessionFromContext(ctx)
		if sessionKey == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		record, err := svc.Get(ctx, sessionKey, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTO(record))
	}
}

// OrderUpdateStatus is the back-office fulfillment transition. It enforces
// the processing -> shipped -> delivered lifecycle.
func OrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var input orders.UpdateStatusInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.UpdateStatus(ctx, orderID, input.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTO(record))
	}
}
