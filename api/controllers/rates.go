package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/api/responses"
	"github.com/angelmondragon/eventpos-backend/api/validators"
	"github.com/angelmondragon/eventpos-backend/internal/rates"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
)

type rateBody struct {
	Rate *decimal.Decimal `json:"rate" validate:"required"`
}

func ListRates(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// PutRate sets the units of code per one USD.
func PutRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := enums.ParseCurrency(chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("code", err.Error()))
			return
		}
		var body rateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Upsert(r.Context(), code, *body.Rate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(r.Context(), "currency", code.String()), "exchange rate updated")
		responses.WriteSuccess(w, out)
	}
}
