// Package pricing turns a cart into subtotal, discount and total using the
// event's product types and promotion catalog.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/internal/promotions"
	"github.com/angelmondragon/eventpos-backend/pkg/currency"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// Product is the snapshot of a catalog product the engine prices.
// Price is in the event's main currency.
type Product struct {
	ID            uuid.UUID
	TypeID        uuid.UUID
	Name          string
	Price         decimal.Decimal
	PromoEligible bool
}

// ProductType groups products for tiered promotions. Enabled is carried for
// callers; it does not change pricing.
type ProductType struct {
	ID           uuid.UUID
	Name         string
	DisplayOrder int
	Enabled      bool
}

// Line is one cart entry. OverridePrice replaces the unit price and disables
// automatic promotions for the whole cart.
type Line struct {
	Product       Product
	Quantity      int
	OverridePrice *decimal.Decimal
}

// UnitPrice is the override price when present, else the product price.
func (l Line) UnitPrice() decimal.Decimal {
	if l.OverridePrice != nil {
		return *l.OverridePrice
	}
	return l.Product.Price
}

// NaturalTotal is UnitPrice times quantity.
func (l Line) NaturalTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Input is everything Compute needs. OverrideTotal is expressed in the main currency.
type Input struct {
	Lines         []Line
	Types         []ProductType
	Catalog       promotions.Catalog
	OverrideTotal *decimal.Decimal
	Currency      currency.Params
}

// Result is the priced cart. Subtotal, Discount and Total are in the display
// currency; NaturalSubtotal and LineDiscounts stay in the main currency.
type Result struct {
	Subtotal          decimal.Decimal
	Discount          decimal.Decimal
	Total             decimal.Decimal
	AppliedPromotions []string
	// AppliedModes parallels AppliedPromotions.
	AppliedModes   []enums.PromoMode
	ManualOverride bool

	NaturalSubtotal     decimal.Decimal
	PromotionalSubtotal decimal.Decimal
	// LineDiscounts holds, per input line, the automatic discount attributed to
	// it. The values sum to NaturalSubtotal - PromotionalSubtotal.
	LineDiscounts []decimal.Decimal
}
