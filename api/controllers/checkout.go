package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/api/responses"
	"github.com/angelmondragon/eventpos-backend/api/validators"
	"github.com/angelmondragon/eventpos-backend/internal/checkout"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
)

type cartLineBody struct {
	ProductID     uuid.UUID        `json:"product_id" validate:"required"`
	Quantity      int              `json:"quantity" validate:"required,min=1"`
	OverridePrice *decimal.Decimal `json:"override_price"`
}

type quoteBody struct {
	Lines           []cartLineBody   `json:"lines" validate:"required,min=1,dive"`
	DisplayCurrency string           `json:"display_currency" validate:"omitempty,currency"`
	OverrideTotal   *decimal.Decimal `json:"override_total"`
}

type checkoutBody struct {
	Lines           []cartLineBody   `json:"lines" validate:"required,min=1,dive"`
	DisplayCurrency string           `json:"display_currency" validate:"omitempty,currency"`
	OverrideTotal   *decimal.Decimal `json:"override_total"`
	PaymentMethod   string           `json:"payment_method" validate:"required,payment_method"`
	Email           *string          `json:"email" validate:"omitempty,max=254"`
	Note            *string          `json:"note" validate:"omitempty,max=500"`
}

func (b quoteBody) input() checkout.QuoteInput {
	lines := make([]checkout.CartLine, 0, len(b.Lines))
	for _, line := range b.Lines {
		lines = append(lines, checkout.CartLine{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			OverridePrice: line.OverridePrice,
		})
	}
	display, _ := enums.ParseCurrency(b.DisplayCurrency)
	return checkout.QuoteInput{
		Lines:           lines,
		DisplayCurrency: display,
		OverrideTotal:   b.OverrideTotal,
	}
}

// QuoteCart prices a cart without recording anything.
func QuoteCart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body quoteBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), eventID, body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// Checkout prices the cart and records the sale.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body checkoutBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, _ := enums.ParsePaymentMethod(body.PaymentMethod)
		txn, err := svc.Checkout(r.Context(), eventID, checkout.CheckoutInput{
			QuoteInput:    quoteBody{Lines: body.Lines, DisplayCurrency: body.DisplayCurrency, OverrideTotal: body.OverrideTotal}.input(),
			PaymentMethod: method,
			Email:         body.Email,
			Note:          body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
