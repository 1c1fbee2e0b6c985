// Package promotions holds the read-only promotion configuration the pricing
// engine consumes.
package promotions

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// Promo is either a tiered-by-type price table or a fixed-price combo.
type Promo struct {
	ID           uuid.UUID
	Name         string
	Mode         enums.PromoMode
	DisplayOrder int

	// Tiered-by-type.
	TypeID                 uuid.UUID
	MaxQuantity            int
	PriceTable             map[int]decimal.Decimal
	IncrementalPrice       *decimal.Decimal
	IncrementalPrice10Plus *decimal.Decimal

	// Combo.
	ProductIDs []uuid.UUID
	ComboPrice decimal.Decimal
}

// IsTiered reports whether the promo prices a product type from a table.
func (p Promo) IsTiered() bool {
	return p.Mode == enums.PromoModeTieredByType
}

// IsCombo reports whether the promo is a fixed-price bundle.
func (p Promo) IsCombo() bool {
	return p.Mode == enums.PromoModeCombo
}

// TablePrice returns the fixed total for exactly qty units.
func (p Promo) TablePrice(qty int) (decimal.Decimal, bool) {
	price, ok := p.PriceTable[qty]
	return price, ok
}

// Catalog is an ordered, immutable list of promos. Order decides precedence.
type Catalog struct {
	promos []Promo
}

// NewCatalog copies promos and orders them by DisplayOrder, keeping the given
// order for ties.
func NewCatalog(promos []Promo) Catalog {
	ordered := make([]Promo, len(promos))
	copy(ordered, promos)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})
	return Catalog{promos: ordered}
}

// All returns the promos in catalog order.
func (c Catalog) All() []Promo {
	out := make([]Promo, len(c.promos))
	copy(out, c.promos)
	return out
}

// Len returns the number of promos.
func (c Catalog) Len() int {
	return len(c.promos)
}

// PromoForType returns the first tiered promo governing typeID. When several
// promos target one type only the first in catalog order is ever used.
func (c Catalog) PromoForType(typeID uuid.UUID) (Promo, bool) {
	for _, p := range c.promos {
		if p.IsTiered() && p.TypeID == typeID {
			return p, true
		}
	}
	return Promo{}, false
}

// ComboPromos returns every combo promo in catalog order.
func (c Catalog) ComboPromos() []Promo {
	var out []Promo
	for _, p := range c.promos {
		if p.IsCombo() {
			out = append(out, p)
		}
	}
	return out
}
