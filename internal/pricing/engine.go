package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/internal/promotions"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

const (
	// extra units past MaxQuantity priced at IncrementalPrice before
	// IncrementalPrice10Plus takes over.
	incrementalSteps = 5
	minTierQuantity  = promotions.MinTierQuantity
)

// Compute prices the cart. It has no side effects and never fails: missing
// table entries or unset increments fall back to natural pricing for the
// affected units.
func Compute(in Input) Result {
	lineDiscounts := make([]decimal.Decimal, len(in.Lines))
	for i := range lineDiscounts {
		lineDiscounts[i] = decimal.Zero
	}

	natural := decimal.Zero
	manual := in.OverrideTotal != nil
	for _, line := range in.Lines {
		natural = natural.Add(line.NaturalTotal())
		if line.OverridePrice != nil {
			manual = true
		}
	}

	promotional := natural
	applied := []string{}
	modes := []enums.PromoMode{}
	if !manual {
		p := newPass(in.Lines, lineDiscounts)
		for _, name := range p.applyCombos(in.Catalog.ComboPromos()) {
			applied = append(applied, name)
			modes = append(modes, enums.PromoModeCombo)
		}
		for _, name := range p.applyTiers(in.Types, in.Catalog) {
			applied = append(applied, name)
			modes = append(modes, enums.PromoModeTieredByType)
		}
		promotional = natural.Sub(p.discount)
	}

	discount := natural.Sub(promotional)
	total := promotional
	if in.OverrideTotal != nil {
		total = *in.OverrideTotal
	}

	return Result{
		Subtotal:            in.Currency.ProjectRounded(natural),
		Discount:            in.Currency.Project(discount),
		Total:               in.Currency.ProjectRounded(total),
		AppliedPromotions:   applied,
		AppliedModes:        modes,
		ManualOverride:      manual,
		NaturalSubtotal:     natural,
		PromotionalSubtotal: promotional,
		LineDiscounts:       lineDiscounts,
	}
}

// pass tracks per-line remaining quantities while promotions consume units.
type pass struct {
	lines     []Line
	remaining []int
	discounts []decimal.Decimal
	discount  decimal.Decimal
}

func newPass(lines []Line, discounts []decimal.Decimal) *pass {
	remaining := make([]int, len(lines))
	for i, l := range lines {
		remaining[i] = l.Quantity
	}
	return &pass{lines: lines, remaining: remaining, discounts: discounts, discount: decimal.Zero}
}

// productRemaining sums the unconsumed units of a product and reports whether
// it is promo-eligible (false when absent from the cart).
func (p *pass) productRemaining(productID uuid.UUID) (int, bool) {
	qty, eligible := 0, false
	for i, l := range p.lines {
		if l.Product.ID != productID {
			continue
		}
		qty += p.remaining[i]
		eligible = l.Product.PromoEligible
	}
	return qty, eligible
}

// consume removes n units of a product from its lines in cart order and
// returns the units taken from each line.
func (p *pass) consume(productID uuid.UUID, n int) []share {
	var taken []share
	for i, l := range p.lines {
		if n == 0 {
			break
		}
		if l.Product.ID != productID || p.remaining[i] == 0 {
			continue
		}
		k := min(n, p.remaining[i])
		p.remaining[i] -= k
		taken = append(taken, share{line: i, units: k})
		n -= k
	}
	return taken
}

func (p *pass) applyCombos(combos []promotions.Promo) []string {
	var applied []string
	for _, combo := range combos {
		ids := uniqueIDs(combo.ProductIDs)
		if len(ids) == 0 {
			continue
		}

		count := -1
		for _, id := range ids {
			qty, eligible := p.productRemaining(id)
			if !eligible || qty < 1 {
				count = 0
				break
			}
			if count < 0 || qty < count {
				count = qty
			}
		}
		if count <= 0 {
			continue
		}

		var shares []share
		for _, id := range ids {
			shares = append(shares, p.consume(id, count)...)
		}
		revenue := combo.ComboPrice.Mul(decimal.NewFromInt(int64(count)))
		p.allocate(shares, revenue)
		applied = append(applied, combo.Name)
	}
	return applied
}

func (p *pass) applyTiers(types []ProductType, catalog promotions.Catalog) []string {
	var applied []string
	seen := map[uuid.UUID]struct{}{}
	for _, t := range types {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}

		promo, ok := catalog.PromoForType(t.ID)
		if !ok {
			continue
		}

		var shares []share
		qty := 0
		for i, l := range p.lines {
			if l.Product.TypeID != t.ID || !l.Product.PromoEligible || p.remaining[i] == 0 {
				continue
			}
			shares = append(shares, share{line: i, units: p.remaining[i]})
			qty += p.remaining[i]
		}

		price, ok := tierPrice(promo, qty)
		if !ok {
			continue
		}
		for _, s := range shares {
			p.remaining[s.line] -= s.units
		}
		p.allocate(shares, price)
		applied = append(applied, promo.Name)
	}
	return applied
}

// tierPrice returns the promotional total for qty eligible units, or false
// when the units must be priced naturally.
func tierPrice(promo promotions.Promo, qty int) (decimal.Decimal, bool) {
	if qty < minTierQuantity {
		return decimal.Zero, false
	}
	if qty <= promo.MaxQuantity {
		return promo.TablePrice(qty)
	}

	base, ok := promo.TablePrice(promo.MaxQuantity)
	if !ok {
		base = decimal.Zero
	}
	extra := qty - promo.MaxQuantity
	if promo.IncrementalPrice == nil {
		return decimal.Zero, false
	}
	inc := *promo.IncrementalPrice
	if extra <= incrementalSteps {
		return base.Add(inc.Mul(decimal.NewFromInt(int64(extra)))), true
	}
	if promo.IncrementalPrice10Plus == nil {
		return decimal.Zero, false
	}
	return base.
		Add(inc.Mul(decimal.NewFromInt(incrementalSteps))).
		Add(promo.IncrementalPrice10Plus.Mul(decimal.NewFromInt(int64(extra - incrementalSteps)))), true
}

type share struct {
	line  int
	units int
}

// allocate records the discount granted by charging price for the given units
// and spreads it over the lines by natural value (units when that is zero).
// The last share takes the remainder so the per-line values sum exactly.
func (p *pass) allocate(shares []share, price decimal.Decimal) {
	if len(shares) == 0 {
		return
	}
	weights := make([]decimal.Decimal, len(shares))
	natural := decimal.Zero
	units := 0
	for i, s := range shares {
		weights[i] = p.lines[s.line].Product.Price.Mul(decimal.NewFromInt(int64(s.units)))
		natural = natural.Add(weights[i])
		units += s.units
	}
	denominator := natural
	if denominator.IsZero() {
		for i, s := range shares {
			weights[i] = decimal.NewFromInt(int64(s.units))
		}
		denominator = decimal.NewFromInt(int64(units))
	}

	discount := natural.Sub(price)
	p.discount = p.discount.Add(discount)

	allocated := decimal.Zero
	for i, s := range shares {
		part := discount.Sub(allocated)
		if i < len(shares)-1 {
			part = discount.Mul(weights[i]).Div(denominator)
		}
		allocated = allocated.Add(part)
		p.discounts[s.line] = p.discounts[s.line].Add(part)
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
