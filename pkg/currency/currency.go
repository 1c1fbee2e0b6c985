// Package currency converts amounts between currencies quoted against a common base.
package currency

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// RateLookup resolves the rate of a currency relative to the shared base.
type RateLookup interface {
	Rate(ctx context.Context, code enums.Currency) (decimal.Decimal, error)
}

// Convert returns amount * (toRate / fromRate). Rates must be positive; that
// is the caller's responsibility and is not checked here. No rounding.
func Convert(amount, fromRate, toRate decimal.Decimal) decimal.Decimal {
	if fromRate.Equal(toRate) {
		return amount
	}
	return amount.Mul(toRate).Div(fromRate)
}

// RoundUp returns the ceiling of amount.
func RoundUp(amount decimal.Decimal) decimal.Decimal {
	return amount.Ceil()
}

// ShouldRoundUp reports whether the round-up policy applies to a from->to projection.
func ShouldRoundUp(roundUp bool, from, to enums.Currency) bool {
	return roundUp && from != to
}

// Params carries what is needed to project main-currency amounts into a display currency.
type Params struct {
	MainCurrency    enums.Currency
	MainRate        decimal.Decimal
	DisplayCurrency enums.Currency
	DisplayRate     decimal.Decimal
	RoundUp         bool
}

// Same reports whether no projection is needed.
func (p Params) Same() bool {
	return p.MainCurrency == p.DisplayCurrency
}

// Project converts a main-currency amount into the display currency.
func (p Params) Project(amount decimal.Decimal) decimal.Decimal {
	if p.Same() {
		return amount
	}
	return Convert(amount, p.MainRate, p.DisplayRate)
}

// ProjectRounded is Project followed by the round-up policy.
func (p Params) ProjectRounded(amount decimal.Decimal) decimal.Decimal {
	out := p.Project(amount)
	if ShouldRoundUp(p.RoundUp, p.MainCurrency, p.DisplayCurrency) {
		return RoundUp(out)
	}
	return out
}

// Resolve looks up both rates for a main/display pair. Rates are resolved even
// when the codes match so the display rate can later feed a settlement conversion.
func Resolve(ctx context.Context, rates RateLookup, main, display enums.Currency, roundUp bool) (Params, error) {
	params := Params{MainCurrency: main, DisplayCurrency: display, RoundUp: roundUp}
	mainRate, err := rates.Rate(ctx, main)
	if err != nil {
		return Params{}, err
	}
	if main == display {
		params.MainRate = mainRate
		params.DisplayRate = mainRate
		return params, nil
	}
	displayRate, err := rates.Rate(ctx, display)
	if err != nil {
		return Params{}, err
	}
	params.MainRate = mainRate
	params.DisplayRate = displayRate
	return params, nil
}
