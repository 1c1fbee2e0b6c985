package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/internal/pricing"
	"github.com/angelmondragon/eventpos-backend/internal/promotions"
	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// ProductTypeDTO is the API view of a product type.
type ProductTypeDTO struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"display_order"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductDTO is the API view of a product.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	TypeID        uuid.UUID       `json:"type_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	PromoEligible bool            `json:"promo_eligible"`
	DisplayOrder  int             `json:"display_order"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PromoDTO is the API view of a promo. Fields that do not apply to the mode are omitted.
type PromoDTO struct {
	ID                     uuid.UUID               `json:"id"`
	EventID                uuid.UUID               `json:"event_id"`
	Name                   string                  `json:"name"`
	Mode                   enums.PromoMode         `json:"mode"`
	DisplayOrder           int                     `json:"display_order"`
	TypeID                 *uuid.UUID              `json:"type_id,omitempty"`
	MaxQuantity            int                     `json:"max_quantity,omitempty"`
	PriceTable             map[int]decimal.Decimal `json:"price_table,omitempty"`
	IncrementalPrice       *decimal.Decimal        `json:"incremental_price,omitempty"`
	IncrementalPrice10Plus *decimal.Decimal        `json:"incremental_price_10_plus,omitempty"`
	ProductIDs             []uuid.UUID             `json:"product_ids,omitempty"`
	ComboPrice             *decimal.Decimal        `json:"combo_price,omitempty"`
	CreatedAt              time.Time               `json:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at"`
}

// TypeFromModel maps a persisted product type into a DTO.
func TypeFromModel(m *models.ProductType) *ProductTypeDTO {
	if m == nil {
		return nil
	}
	return &ProductTypeDTO{
		ID:           m.ID,
		EventID:      m.EventID,
		Name:         m.Name,
		DisplayOrder: m.DisplayOrder,
		Enabled:      m.Enabled,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ProductFromModel maps a persisted product into a DTO.
func ProductFromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:            m.ID,
		EventID:       m.EventID,
		TypeID:        m.TypeID,
		Name:          m.Name,
		Price:         m.Price,
		PromoEligible: m.PromoEligible,
		DisplayOrder:  m.DisplayOrder,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// PromoFromModel maps a persisted promo into a DTO.
func PromoFromModel(m *models.Promo) *PromoDTO {
	if m == nil {
		return nil
	}
	dto := &PromoDTO{
		ID:                     m.ID,
		EventID:                m.EventID,
		Name:                   m.Name,
		Mode:                   m.Mode,
		DisplayOrder:           m.DisplayOrder,
		TypeID:                 m.TypeID,
		MaxQuantity:            m.MaxQuantity,
		IncrementalPrice:       nullToPtr(m.IncrementalPrice),
		IncrementalPrice10Plus: nullToPtr(m.IncrementalPrice10Plus),
		ComboPrice:             nullToPtr(m.ComboPrice),
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
	if len(m.PriceTable) > 0 {
		dto.PriceTable = make(map[int]decimal.Decimal, len(m.PriceTable))
		for qty, price := range m.PriceTable {
			dto.PriceTable[qty] = price
		}
	}
	if len(m.ProductIDs) > 0 {
		dto.ProductIDs = append([]uuid.UUID{}, m.ProductIDs...)
	}
	return dto
}

// ToPricingType converts a stored product type into engine input.
func ToPricingType(m models.ProductType) pricing.ProductType {
	return pricing.ProductType{ID: m.ID, Name: m.Name, DisplayOrder: m.DisplayOrder, Enabled: m.Enabled}
}

// ToPricingProduct converts a stored product into engine input.
func ToPricingProduct(m models.Product) pricing.Product {
	return pricing.Product{ID: m.ID, TypeID: m.TypeID, Name: m.Name, Price: m.Price, PromoEligible: m.PromoEligible}
}

// ToPromotion converts a stored promo into the catalog representation.
func ToPromotion(m models.Promo) promotions.Promo {
	p := promotions.Promo{
		ID:                     m.ID,
		Name:                   m.Name,
		Mode:                   m.Mode,
		DisplayOrder:           m.DisplayOrder,
		MaxQuantity:            m.MaxQuantity,
		IncrementalPrice:       nullToPtr(m.IncrementalPrice),
		IncrementalPrice10Plus: nullToPtr(m.IncrementalPrice10Plus),
		ProductIDs:             append([]uuid.UUID{}, m.ProductIDs...),
	}
	if m.TypeID != nil {
		p.TypeID = *m.TypeID
	}
	if m.ComboPrice.Valid {
		p.ComboPrice = m.ComboPrice.Decimal
	}
	p.PriceTable = make(map[int]decimal.Decimal, len(m.PriceTable))
	for qty, price := range m.PriceTable {
		p.PriceTable[qty] = price
	}
	return p
}

func nullToPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	out := v.Decimal
	return &out
}

func ptrToNull(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}
