package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/eventpos-backend/internal/promotions"
	"github.com/angelmondragon/eventpos-backend/pkg/currency"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func usd() currency.Params {
	return currency.Params{MainCurrency: enums.CurrencyUSD, MainRate: d("1"), DisplayCurrency: enums.CurrencyUSD, DisplayRate: d("1")}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s got %s %v", want, got, msg)
}

type fixture struct {
	shirts   ProductType
	caps     ProductType
	shirt    Product
	shirtAlt Product
	cap      Product
	sticker  Product
	tier     promotions.Promo
}

func newFixture() fixture {
	shirts := ProductType{ID: uuid.New(), Name: "Shirts", Enabled: true}
	caps := ProductType{ID: uuid.New(), Name: "Caps", DisplayOrder: 1, Enabled: true}
	return fixture{
		shirts:   shirts,
		caps:     caps,
		shirt:    Product{ID: uuid.New(), TypeID: shirts.ID, Name: "Shirt", Price: d("30"), PromoEligible: true},
		shirtAlt: Product{ID: uuid.New(), TypeID: shirts.ID, Name: "Shirt XL", Price: d("30"), PromoEligible: true},
		cap:      Product{ID: uuid.New(), TypeID: caps.ID, Name: "Cap", Price: d("15"), PromoEligible: true},
		sticker:  Product{ID: uuid.New(), TypeID: caps.ID, Name: "Sticker", Price: d("2")},
		tier: promotions.Promo{
			ID:          uuid.New(),
			Name:        "Shirt tiers",
			Mode:        enums.PromoModeTieredByType,
			TypeID:      shirts.ID,
			MaxQuantity: 7,
			PriceTable: map[int]decimal.Decimal{
				2: d("50"), 3: d("70"), 4: d("90"), 5: d("110"), 6: d("130"), 7: d("150"),
			},
			IncrementalPrice:       dp("20"),
			IncrementalPrice10Plus: dp("15"),
		},
	}
}

func (f fixture) types() []ProductType { return []ProductType{f.shirts, f.caps} }

func sumLineDiscounts(r Result) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range r.LineDiscounts {
		sum = sum.Add(v)
	}
	return sum
}

func TestComputeWithoutPromotionsKeepsNaturalPrices(t *testing.T) {
	f := newFixture()
	res := Compute(Input{
		Lines:    []Line{{Product: f.shirt, Quantity: 3}, {Product: f.sticker, Quantity: 4}},
		Types:    f.types(),
		Catalog:  promotions.NewCatalog(nil),
		Currency: usd(),
	})

	assertDec(t, "98", res.Subtotal)
	assert.True(t, res.Total.Equal(res.Subtotal))
	assert.True(t, res.Discount.IsZero())
	assert.Empty(t, res.AppliedPromotions)
	assert.False(t, res.ManualOverride)
}

func TestComputeEmptyCart(t *testing.T) {
	f := newFixture()
	res := Compute(Input{Types: f.types(), Catalog: promotions.NewCatalog([]promotions.Promo{f.tier}), Currency: usd()})
	assert.True(t, res.Subtotal.IsZero())
	assert.True(t, res.Total.IsZero())
	assert.Empty(t, res.AppliedPromotions)
	assert.Empty(t, res.LineDiscounts)
}

func TestComputeTieredPricing(t *testing.T) {
	cases := []struct {
		qty      int
		eligible string
	}{
		{qty: 1, eligible: "30"},
		{qty: 2, eligible: "50"},
		{qty: 7, eligible: "150"},
		{qty: 9, eligible: "190"},  // 150 + 2*20
		{qty: 12, eligible: "250"}, // 150 + 5*20
		{qty: 13, eligible: "265"}, // 150 + 5*20 + 1*15
		{qty: 14, eligible: "280"}, // 150 + 5*20 + 2*15
	}
	for _, tc := range cases {
		f := newFixture()
		res := Compute(Input{
			Lines:    []Line{{Product: f.shirt, Quantity: tc.qty}},
			Types:    f.types(),
			Catalog:  promotions.NewCatalog([]promotions.Promo{f.tier}),
			Currency: usd(),
		})
		assertDec(t, tc.eligible, res.Total, tc.qty)
		assertDec(t, decimal.NewFromInt(int64(30*tc.qty)).String(), res.Subtotal, tc.qty)
		if tc.qty >= 2 {
			assert.Equal(t, []string{"Shirt tiers"}, res.AppliedPromotions)
		} else {
			assert.Empty(t, res.AppliedPromotions)
		}
		assert.True(t, sumLineDiscounts(res).Equal(res.Discount), tc.qty)
	}
}

func TestComputeTierQuantitySpansLinesOfTheType(t *testing.T) {
	f := newFixture()
	res := Compute(Input{
		Lines: []Line{
			{Product: f.shirt, Quantity: 4},
			{Product: f.sticker, Quantity: 1},
			{Product: f.shirtAlt, Quantity: 5},
		},
		Types:    f.types(),
		Catalog:  promotions.NewCatalog([]promotions.Promo{f.tier}),
		Currency: usd(),
	})
	// 9 shirts at 190 plus a sticker at 2.
	assertDec(t, "192", res.Total)
	assertDec(t, "80", res.Discount)
	assertDec(t, "0", res.LineDiscounts[1])
	assert.True(t, res.LineDiscounts[2].GreaterThan(res.LineDiscounts[0]))
	assertDec(t, "80", sumLineDiscounts(res))
}

func TestComputeTierFallsBackToNaturalPricing(t *testing.T) {
	f := newFixture()

	gap := f.tier
	gap.PriceTable = map[int]decimal.Decimal{2: d("50"), 7: d("150")}

	noIncrement := f.tier
	noIncrement.IncrementalPrice = nil

	no10Plus := f.tier
	no10Plus.IncrementalPrice10Plus = nil

	noBase := f.tier
	noBase.PriceTable = map[int]decimal.Decimal{2: d("50")}

	cases := []struct {
		name    string
		promo   promotions.Promo
		qty     int
		total   string
		applied bool
	}{
		{name: "table gap", promo: gap, qty: 4, total: "120"},
		{name: "missing incremental", promo: noIncrement, qty: 9, total: "270"},
		{name: "missing 10+ incremental", promo: no10Plus, qty: 13, total: "390"},
		{name: "missing 10+ incremental below threshold", promo: no10Plus, qty: 12, total: "250", applied: true},
		{name: "missing base counts as zero", promo: noBase, qty: 9, total: "40", applied: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Compute(Input{
				Lines:    []Line{{Product: f.shirt, Quantity: tc.qty}},
				Types:    f.types(),
				Catalog:  promotions.NewCatalog([]promotions.Promo{tc.promo}),
				Currency: usd(),
			})
			assertDec(t, tc.total, res.Total)
			assert.Equal(t, tc.applied, len(res.AppliedPromotions) == 1)
		})
	}
}

func TestComputeNonEligibleAndOrphanedLinesPriceNaturally(t *testing.T) {
	f := newFixture()
	plain := f.shirt
	plain.ID = uuid.New()
	plain.PromoEligible = false
	orphan := Product{ID: uuid.New(), TypeID: uuid.New(), Name: "Poster", Price: d("5"), PromoEligible: true}

	res := Compute(Input{
		Lines: []Line{
			{Product: plain, Quantity: 3},
			{Product: f.shirt, Quantity: 1},
			{Product: orphan, Quantity: 2},
		},
		Types:    f.types(),
		Catalog:  promotions.NewCatalog([]promotions.Promo{f.tier}),
		Currency: usd(),
	})
	// Only one eligible shirt: below the tier minimum.
	assertDec(t, "130", res.Total)
	assert.True(t, res.Discount.IsZero())
	assert.Empty(t, res.AppliedPromotions)
}

func TestComputeOverridesBypassPromotions(t *testing.T) {
	f := newFixture()
	catalog := promotions.NewCatalog([]promotions.Promo{f.tier})

	lineOverride := Compute(Input{
		Lines:    []Line{{Product: f.shirt, Quantity: 9}, {Product: f.cap, Quantity: 1, OverridePrice: dp("10")}},
		Types:    f.types(),
		Catalog:  catalog,
		Currency: usd(),
	})
	assert.Empty(t, lineOverride.AppliedPromotions)
	assert.True(t, lineOverride.ManualOverride)
	assertDec(t, "280", lineOverride.Subtotal)
	assertDec(t, "280", lineOverride.Total)
	assert.True(t, lineOverride.Discount.IsZero())

	totalOverride := Compute(Input{
		Lines:         []Line{{Product: f.shirt, Quantity: 9}},
		Types:         f.types(),
		Catalog:       catalog,
		OverrideTotal: dp("200"),
		Currency:      usd(),
	})
	assert.Empty(t, totalOverride.AppliedPromotions)
	assert.True(t, totalOverride.ManualOverride)
	assertDec(t, "270", totalOverride.Subtotal)
	assertDec(t, "200", totalOverride.Total)
	assert.True(t, totalOverride.Discount.IsZero())
}

func TestComputeComboPrecedence(t *testing.T) {
	f := newFixture()
	first := promotions.Promo{Name: "Shirt + Cap", Mode: enums.PromoModeCombo, DisplayOrder: 1, ProductIDs: []uuid.UUID{f.shirt.ID, f.cap.ID}, ComboPrice: d("35")}
	second := promotions.Promo{Name: "Cap + Shirt XL", Mode: enums.PromoModeCombo, DisplayOrder: 2, ProductIDs: []uuid.UUID{f.cap.ID, f.shirtAlt.ID}, ComboPrice: d("30")}

	lines := []Line{{Product: f.shirt, Quantity: 1}, {Product: f.cap, Quantity: 1}, {Product: f.shirtAlt, Quantity: 1}}
	res := Compute(Input{
		Lines:    lines,
		Types:    f.types(),
		Catalog:  promotions.NewCatalog([]promotions.Promo{second, first}),
		Currency: usd(),
	})
	assert.Equal(t, []string{"Shirt + Cap"}, res.AppliedPromotions)
	assertDec(t, "65", res.Total) // 35 + shirt XL at 30
	assertDec(t, "10", res.Discount)

	swapped := first
	swapped.DisplayOrder = 3
	res = Compute(Input{
		Lines:    lines,
		Types:    f.types(),
		Catalog:  promotions.NewCatalog([]promotions.Promo{second, swapped}),
		Currency: usd(),
	})
	assert.Equal(t, []string{"Cap + Shirt XL"}, res.AppliedPromotions)
	assertDec(t, "60", res.Total)
}

func TestComputeComboCountAndTierOnRemainder(t *testing.T) {
	f := newFixture()
	combo := promotions.Promo{Name: "Shirt + Cap", Mode: enums.PromoModeCombo, ProductIDs: []uuid.UUID{f.shirt.ID, f.cap.ID}, ComboPrice: d("40")}
	tier := f.tier
	tier.DisplayOrder = 1

	res := Compute(Input{
		Lines: []Line{
			{Product: f.shirt, Quantity: 2},
			{Product: f.cap, Quantity: 2},
			{Product: f.shirt, Quantity: 2},
		},
		Types:    f.types(),
		Catalog:  promotions.NewCatalog([]promotions.Promo{combo, tier}),
		Currency: usd(),
	})
	// Two combos (80) consume both caps and the first shirt line; the two
	// remaining shirts hit the tier table (50).
	assert.Equal(t, []string{"Shirt + Cap", "Shirt tiers"}, res.AppliedPromotions)
	assert.Equal(t, []enums.PromoMode{enums.PromoModeCombo, enums.PromoModeTieredByType}, res.AppliedModes)
	assertDec(t, "150", res.Subtotal)
	assertDec(t, "130", res.Total)
	assertDec(t, "20", res.Discount)
	assert.True(t, sumLineDiscounts(res).Equal(d("20")))
	assertDec(t, "10", res.LineDiscounts[2])
}

func TestComputeComboNeedsEveryEligibleProduct(t *testing.T) {
	f := newFixture()
	withSticker := promotions.Promo{Name: "Cap + Sticker", Mode: enums.PromoModeCombo, ProductIDs: []uuid.UUID{f.cap.ID, f.sticker.ID}, ComboPrice: d("12")}
	missing := promotions.Promo{Name: "Cap + Shirt", Mode: enums.PromoModeCombo, ProductIDs: []uuid.UUID{f.cap.ID, f.shirt.ID}, ComboPrice: d("30")}

	res := Compute(Input{
		Lines:    []Line{{Product: f.cap, Quantity: 1}, {Product: f.sticker, Quantity: 1}},
		Types:    f.types(),
		Catalog:  promotions.NewCatalog([]promotions.Promo{withSticker, missing}),
		Currency: usd(),
	})
	assert.Empty(t, res.AppliedPromotions)
	assertDec(t, "17", res.Total)
}

func TestComputeRoundUpLeavesDiscountUnrounded(t *testing.T) {
	f := newFixture()
	item := Product{ID: uuid.New(), TypeID: f.caps.ID, Name: "Cap", Price: d("12"), PromoEligible: true}
	tier := promotions.Promo{Name: "Caps x2", Mode: enums.PromoModeTieredByType, TypeID: f.caps.ID, MaxQuantity: 2, PriceTable: map[int]decimal.Decimal{2: d("21.75")}}

	res := Compute(Input{
		Lines:   []Line{{Product: item, Quantity: 2}},
		Types:   f.types(),
		Catalog: promotions.NewCatalog([]promotions.Promo{tier}),
		Currency: currency.Params{
			MainCurrency:    enums.CurrencyUSD,
			MainRate:        d("1"),
			DisplayCurrency: enums.CurrencyEUR,
			DisplayRate:     d("0.8"),
			RoundUp:         true,
		},
	})
	// 24 USD -> 19.20 EUR -> 20; 21.75 USD -> 17.40 EUR -> 18.
	assertDec(t, "20", res.Subtotal)
	assertDec(t, "18", res.Total)
	assertDec(t, "1.8", res.Discount)
	assertDec(t, "24", res.NaturalSubtotal)
}

func TestComputeProjectsWithoutRoundUp(t *testing.T) {
	f := newFixture()
	res := Compute(Input{
		Lines:   []Line{{Product: f.cap, Quantity: 1}},
		Types:   f.types(),
		Catalog: promotions.NewCatalog(nil),
		Currency: currency.Params{
			MainCurrency: enums.CurrencyUSD, MainRate: d("1"),
			DisplayCurrency: enums.CurrencyEUR, DisplayRate: d("0.9"),
		},
	})
	assertDec(t, "13.5", res.Subtotal)
	assertDec(t, "13.5", res.Total)
}

func TestComputeIsIdempotent(t *testing.T) {
	f := newFixture()
	combo := promotions.Promo{Name: "Shirt + Cap", Mode: enums.PromoModeCombo, ProductIDs: []uuid.UUID{f.shirt.ID, f.cap.ID}, ComboPrice: d("33.33")}
	in := Input{
		Lines: []Line{
			{Product: f.shirt, Quantity: 5},
			{Product: f.cap, Quantity: 3},
			{Product: f.shirtAlt, Quantity: 4},
			{Product: f.sticker, Quantity: 7},
		},
		Types:   f.types(),
		Catalog: promotions.NewCatalog([]promotions.Promo{f.tier, combo}),
		Currency: currency.Params{
			MainCurrency: enums.CurrencyUSD, MainRate: d("1"),
			DisplayCurrency: enums.CurrencyEUR, DisplayRate: d("0.93"), RoundUp: true,
		},
	}

	first := Compute(in)
	second := Compute(in)
	require.Equal(t, first, second)
	assert.True(t, sumLineDiscounts(first).Equal(first.NaturalSubtotal.Sub(first.PromotionalSubtotal)))
}
