package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/api/responses"
	"github.com/angelmondragon/eventpos-backend/api/validators"
	"github.com/angelmondragon/eventpos-backend/internal/catalog"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
)

type typeBody struct {
	Name         string `json:"name" validate:"required,max=80"`
	DisplayOrder int    `json:"display_order" validate:"min=0"`
	Enabled      *bool  `json:"enabled"`
}

type updateTypeBody struct {
	Name         *string `json:"name" validate:"omitempty,max=80"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,min=0"`
	Enabled      *bool   `json:"enabled"`
}

type productBody struct {
	TypeID        uuid.UUID        `json:"type_id" validate:"required"`
	Name          string           `json:"name" validate:"required,max=120"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	PromoEligible bool             `json:"promo_eligible"`
	DisplayOrder  int              `json:"display_order" validate:"min=0"`
}

type updateProductBody struct {
	TypeID        *uuid.UUID       `json:"type_id"`
	Name          *string          `json:"name" validate:"omitempty,max=120"`
	Price         *decimal.Decimal `json:"price"`
	PromoEligible *bool            `json:"promo_eligible"`
	DisplayOrder  *int             `json:"display_order" validate:"omitempty,min=0"`
}

type promoBody struct {
	Name                   string                  `json:"name" validate:"required,max=120"`
	Mode                   string                  `json:"mode" validate:"required,promo_mode"`
	DisplayOrder           int                     `json:"display_order" validate:"min=0"`
	TypeID                 *uuid.UUID              `json:"type_id"`
	MaxQuantity            int                     `json:"max_quantity" validate:"min=0"`
	PriceTable             map[int]decimal.Decimal `json:"price_table"`
	IncrementalPrice       *decimal.Decimal        `json:"incremental_price"`
	IncrementalPrice10Plus *decimal.Decimal        `json:"incremental_price_10_plus"`
	ProductIDs             []uuid.UUID             `json:"product_ids"`
	ComboPrice             *decimal.Decimal        `json:"combo_price"`
}

type updatePromoBody struct {
	Name                   *string                  `json:"name" validate:"omitempty,max=120"`
	DisplayOrder           *int                     `json:"display_order" validate:"omitempty,min=0"`
	TypeID                 *uuid.UUID               `json:"type_id"`
	MaxQuantity            *int                     `json:"max_quantity" validate:"omitempty,min=0"`
	PriceTable             *map[int]decimal.Decimal `json:"price_table"`
	IncrementalPrice       *decimal.Decimal         `json:"incremental_price"`
	IncrementalPrice10Plus *decimal.Decimal         `json:"incremental_price_10_plus"`
	ProductIDs             *[]uuid.UUID             `json:"product_ids"`
	ComboPrice             *decimal.Decimal         `json:"combo_price"`
}

// listForEvent serves the catalog list endpoints, which only differ by loader.
func listForEvent[T any](load func(r *http.Request, eventID uuid.UUID) (T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := load(r, eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func deleteForEvent(param string, remove func(r *http.Request, eventID, id uuid.UUID) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, id, err := eventAndID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := remove(r, eventID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListProductTypes(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listForEvent(func(r *http.Request, eventID uuid.UUID) ([]catalog.ProductTypeDTO, error) {
		return svc.ListTypes(r.Context(), eventID)
	}, logg)
}

func CreateProductType(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body typeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.CreateType(r.Context(), eventID, catalog.TypeInput{
			Name:         validators.SanitizeString(body.Name, 80),
			DisplayOrder: body.DisplayOrder,
			Enabled:      body.Enabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

func UpdateProductType(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, typeID, err := eventAndID(r, paramTypeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateTypeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.UpdateType(r.Context(), eventID, typeID, catalog.UpdateTypeInput{
			Name:         body.Name,
			DisplayOrder: body.DisplayOrder,
			Enabled:      body.Enabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func DeleteProductType(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteForEvent(paramTypeID, func(r *http.Request, eventID, id uuid.UUID) error {
		return svc.DeleteType(r.Context(), eventID, id)
	}, logg)
}

func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listForEvent(func(r *http.Request, eventID uuid.UUID) ([]catalog.ProductDTO, error) {
		return svc.ListProducts(r.Context(), eventID)
	}, logg)
}

func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body productBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.CreateProduct(r.Context(), eventID, catalog.ProductInput{
			TypeID:        body.TypeID,
			Name:          validators.SanitizeString(body.Name, 120),
			Price:         *body.Price,
			PromoEligible: body.PromoEligible,
			DisplayOrder:  body.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, productID, err := eventAndID(r, paramProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateProductBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.UpdateProduct(r.Context(), eventID, productID, catalog.UpdateProductInput{
			TypeID:        body.TypeID,
			Name:          body.Name,
			Price:         body.Price,
			PromoEligible: body.PromoEligible,
			DisplayOrder:  body.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteForEvent(paramProductID, func(r *http.Request, eventID, id uuid.UUID) error {
		return svc.DeleteProduct(r.Context(), eventID, id)
	}, logg)
}

func ListPromos(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listForEvent(func(r *http.Request, eventID uuid.UUID) ([]catalog.PromoDTO, error) {
		return svc.ListPromos(r.Context(), eventID)
	}, logg)
}

func CreatePromo(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body promoBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, _ := enums.ParsePromoMode(body.Mode)
		out, err := svc.CreatePromo(r.Context(), eventID, catalog.PromoInput{
			Name:                   validators.SanitizeString(body.Name, 120),
			Mode:                   mode,
			DisplayOrder:           body.DisplayOrder,
			TypeID:                 body.TypeID,
			MaxQuantity:            body.MaxQuantity,
			PriceTable:             body.PriceTable,
			IncrementalPrice:       body.IncrementalPrice,
			IncrementalPrice10Plus: body.IncrementalPrice10Plus,
			ProductIDs:             body.ProductIDs,
			ComboPrice:             body.ComboPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

func UpdatePromo(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, promoID, err := eventAndID(r, paramPromoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updatePromoBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.UpdatePromo(r.Context(), eventID, promoID, catalog.UpdatePromoInput{
			Name:                   body.Name,
			DisplayOrder:           body.DisplayOrder,
			TypeID:                 body.TypeID,
			MaxQuantity:            body.MaxQuantity,
			PriceTable:             body.PriceTable,
			IncrementalPrice:       body.IncrementalPrice,
			IncrementalPrice10Plus: body.IncrementalPrice10Plus,
			ProductIDs:             body.ProductIDs,
			ComboPrice:             body.ComboPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func DeletePromo(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteForEvent(paramPromoID, func(r *http.Request, eventID, id uuid.UUID) error {
		return svc.DeletePromo(r.Context(), eventID, id)
	}, logg)
}
