package promotions

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// MinTierQuantity is the smallest quantity a tier table can price.
const MinTierQuantity = 2

// Validate checks a promo configuration before it is stored and returns every
// violation combined. The pricing engine does not call this; it trusts its input.
func Validate(p Promo) error {
	var errs error
	if p.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("name is required"))
	}

	switch p.Mode {
	case enums.PromoModeTieredByType:
		errs = multierr.Append(errs, validateTiered(p))
	case enums.PromoModeCombo:
		errs = multierr.Append(errs, validateCombo(p))
	default:
		errs = multierr.Append(errs, fmt.Errorf("mode %q is not supported", p.Mode))
	}
	return errs
}

func validateTiered(p Promo) error {
	var errs error
	if p.TypeID == uuid.Nil {
		errs = multierr.Append(errs, fmt.Errorf("type_id is required for tiered promos"))
	}
	if p.MaxQuantity < MinTierQuantity {
		errs = multierr.Append(errs, fmt.Errorf("max_quantity must be at least %d", MinTierQuantity))
	}
	for qty, price := range p.PriceTable {
		if qty < MinTierQuantity || qty > p.MaxQuantity {
			errs = multierr.Append(errs, fmt.Errorf("price_table quantity %d is outside %d..%d", qty, MinTierQuantity, p.MaxQuantity))
		}
		if price.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("price_table price for %d must not be negative", qty))
		}
	}
	if p.IncrementalPrice != nil && p.IncrementalPrice.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("incremental_price must not be negative"))
	}
	if p.IncrementalPrice10Plus != nil && p.IncrementalPrice10Plus.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("incremental_price_10_plus must not be negative"))
	}
	return errs
}

func validateCombo(p Promo) error {
	var errs error
	if len(p.ProductIDs) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("combo promos need at least one product"))
	}
	seen := make(map[uuid.UUID]struct{}, len(p.ProductIDs))
	for _, id := range p.ProductIDs {
		if _, dup := seen[id]; dup {
			errs = multierr.Append(errs, fmt.Errorf("product %s is listed twice", id))
		}
		seen[id] = struct{}{}
	}
	if p.ComboPrice.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("combo_price must not be negative"))
	}
	return errs
}

// Violations flattens a Validate result into messages for API error details.
func Violations(err error) []string {
	var out []string
	for _, e := range multierr.Errors(err) {
		out = append(out, e.Error())
	}
	return out
}
