package enums

import "fmt"

// PromoMode selects how a promotion prices the cart.
type PromoMode string

const (
	// PromoModeTieredByType prices the eligible quantity of one product type from a table.
	PromoModeTieredByType PromoMode = "tiered_by_type"
	// PromoModeCombo charges a fixed price for one unit of each listed product.
	PromoModeCombo PromoMode = "combo"
)

var validPromoModes = []PromoMode{
	PromoModeTieredByType,
	PromoModeCombo,
}

// String implements fmt.Stringer.
func (m PromoMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PromoMode.
func (m PromoMode) IsValid() bool {
	for _, candidate := range validPromoModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePromoMode converts raw input into a PromoMode.
func ParsePromoMode(value string) (PromoMode, error) {
	for _, candidate := range validPromoModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promo mode %q", value)
}
