package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopmithra/mithra-backend/api/responses"
	"github.com/shopmithra/mithra-backend/api/validators"
	"github.com/shopmithra/mithra-backend/internal/coupons"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

func AdminCouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input coupons.CreateCouponInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		coupon, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupons.ToDTO(coupon))
	}
}

func AdminCouponList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		records, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dtos := make([]coupons.CouponDTO, 0, len(records))
		for i := range records {
			dtos = append(dtos, coupons.ToDTO(&records[i]))
		}
		responses.WriteSuccess(w, dtos)
	}
}

func AdminCouponDeactivate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}

		if err := svc.Deactivate(ctx, code); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}
