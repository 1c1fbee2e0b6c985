package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// ItemDTO is one sold line.
type ItemDTO struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	TypeID         uuid.UUID       `json:"type_id"`
	PromoEligible  bool            `json:"promo_eligible"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Quantity       int             `json:"quantity"`
}

// TransactionDTO is the API view of a finalized sale.
type TransactionDTO struct {
	ID                uuid.UUID           `json:"id"`
	EventID           uuid.UUID           `json:"event_id"`
	Items             []ItemDTO           `json:"items"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	Discount          decimal.Decimal     `json:"discount"`
	Total             decimal.Decimal     `json:"total"`
	Currency          enums.Currency      `json:"currency"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	AppliedPromotions []string            `json:"applied_promotions"`
	Email             *string             `json:"email,omitempty"`
	Note              *string             `json:"note,omitempty"`
	ManualOverride    bool                `json:"manual_override"`
	OverrideTotal     *decimal.Decimal    `json:"override_total,omitempty"`
	OriginalCurrency  *enums.Currency     `json:"original_currency,omitempty"`
	OriginalSubtotal  *decimal.Decimal    `json:"original_subtotal,omitempty"`
	OriginalTotal     *decimal.Decimal    `json:"original_total,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

// FromModel maps a persisted transaction into a DTO.
func FromModel(m *models.Transaction) *TransactionDTO {
	if m == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, ItemDTO{
			ProductID:      item.ProductID,
			Name:           item.Name,
			TypeID:         item.TypeID,
			PromoEligible:  item.PromoEligible,
			EffectivePrice: item.EffectivePrice,
			Quantity:       item.Quantity,
		})
	}
	promotions := append([]string{}, m.AppliedPromotions...)
	return &TransactionDTO{
		ID:                m.ID,
		EventID:           m.EventID,
		Items:             items,
		Subtotal:          m.Subtotal,
		Discount:          m.Discount,
		Total:             m.Total,
		Currency:          m.Currency,
		PaymentMethod:     m.PaymentMethod,
		AppliedPromotions: promotions,
		Email:             m.Email,
		Note:              m.Note,
		ManualOverride:    m.ManualOverride,
		OverrideTotal:     nullToPtr(m.OverrideTotal),
		OriginalCurrency:  m.OriginalCurrency,
		OriginalSubtotal:  nullToPtr(m.OriginalSubtotal),
		OriginalTotal:     nullToPtr(m.OriginalTotal),
		CreatedAt:         m.CreatedAt,
	}
}

func nullToPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}
