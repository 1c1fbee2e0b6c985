package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/eventpos-backend/api/responses"
	"github.com/angelmondragon/eventpos-backend/api/validators"
	"github.com/angelmondragon/eventpos-backend/internal/transactions"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
)

type updateTransactionBody struct {
	Email         *string `json:"email" validate:"omitempty,max=254"`
	PaymentMethod *string `json:"payment_method" validate:"omitempty,payment_method"`
	Note          *string `json:"note" validate:"omitempty,max=500"`
}

func ListTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), eventID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, id, err := eventAndID(r, paramTxID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txn, err := svc.Get(r.Context(), eventID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

func UpdateTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, id, err := eventAndID(r, paramTxID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateTransactionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := transactions.UpdateInput{Email: body.Email, Note: body.Note}
		if body.PaymentMethod != nil {
			method, err := enums.ParsePaymentMethod(*body.PaymentMethod)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("payment_method", err.Error()))
				return
			}
			input.PaymentMethod = &method
		}

		txn, err := svc.Update(r.Context(), eventID, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

func DeleteTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteForEvent(paramTxID, func(r *http.Request, eventID, id uuid.UUID) error {
		return svc.Delete(r.Context(), eventID, id)
	}, logg)
}

// TransactionTotals reports per-currency revenue for the event.
func TransactionTotals(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return listForEvent(func(r *http.Request, eventID uuid.UUID) (*transactions.Totals, error) {
		return svc.Totals(r.Context(), eventID)
	}, logg)
}
