package checkout

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/eventpos-backend/internal/pricing"
	"github.com/angelmondragon/eventpos-backend/internal/promotions"
	"github.com/angelmondragon/eventpos-backend/pkg/currency"
	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

var tolerance = decimal.New(1, -6)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func usd() currency.Params {
	return currency.Params{MainCurrency: enums.CurrencyUSD, MainRate: d("1"), DisplayCurrency: enums.CurrencyUSD, DisplayRate: d("1")}
}

func itemsTotal(txn models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range txn.Items {
		sum = sum.Add(item.EffectivePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

func requireBalanced(t *testing.T, txn models.Transaction) {
	t.Helper()
	diff := itemsTotal(txn).Sub(txn.Total).Abs()
	require.Truef(t, diff.LessThanOrEqual(tolerance), "items sum %s != total %s", itemsTotal(txn), txn.Total)
}

type catalogFixture struct {
	shirts, caps       pricing.ProductType
	shirt, cap, poster pricing.Product
	tier, combo        promotions.Promo
}

func newCatalogFixture() catalogFixture {
	shirts := pricing.ProductType{ID: uuid.New(), Name: "Shirts"}
	caps := pricing.ProductType{ID: uuid.New(), Name: "Caps", DisplayOrder: 1}
	f := catalogFixture{
		shirts: shirts,
		caps:   caps,
		shirt:  pricing.Product{ID: uuid.New(), TypeID: shirts.ID, Name: "Shirt", Price: d("30"), PromoEligible: true},
		cap:    pricing.Product{ID: uuid.New(), TypeID: caps.ID, Name: "Cap", Price: d("15"), PromoEligible: true},
		poster: pricing.Product{ID: uuid.New(), TypeID: caps.ID, Name: "Poster", Price: d("7.99")},
	}
	f.tier = promotions.Promo{
		Name: "Shirt tiers", Mode: enums.PromoModeTieredByType, TypeID: shirts.ID, MaxQuantity: 3,
		PriceTable:       map[int]decimal.Decimal{2: d("50"), 3: d("70")},
		IncrementalPrice: dp("20"), IncrementalPrice10Plus: dp("15"),
	}
	f.combo = promotions.Promo{
		Name: "Shirt + Cap", Mode: enums.PromoModeCombo, DisplayOrder: -1,
		ProductIDs: []uuid.UUID{f.shirt.ID, f.cap.ID}, ComboPrice: d("40"),
	}
	return f
}

func (f catalogFixture) quote(lines []pricing.Line, override *decimal.Decimal, params currency.Params, promos ...promotions.Promo) pricing.Result {
	return pricing.Compute(pricing.Input{
		Lines:         lines,
		Types:         []pricing.ProductType{f.shirts, f.caps},
		Catalog:       promotions.NewCatalog(promos),
		OverrideTotal: override,
		Currency:      params,
	})
}

func TestMaterializeWithoutDiscountKeepsUnitPrices(t *testing.T) {
	f := newCatalogFixture()
	lines := []pricing.Line{{Product: f.shirt, Quantity: 1}, {Product: f.poster, Quantity: 3}}
	res := f.quote(lines, nil, usd())

	txn := Materialize(MaterializeInput{EventID: uuid.New(), Lines: lines, Result: res, Currency: usd(), PaymentMethod: enums.PaymentMethodCash})

	require.Len(t, txn.Items, 2)
	assert.True(t, txn.Items[0].EffectivePrice.Equal(d("30")))
	assert.True(t, txn.Items[1].EffectivePrice.Equal(d("7.99")))
	assert.Equal(t, 1, txn.Items[1].Position)
	assert.True(t, txn.Total.Equal(d("53.97")))
	assert.Equal(t, enums.CurrencyUSD, txn.Currency)
	assert.Nil(t, txn.OriginalCurrency)
	requireBalanced(t, txn)
}

func TestMaterializeOverrideTotalSpreadsByNaturalShare(t *testing.T) {
	f := newCatalogFixture()
	lines := []pricing.Line{{Product: f.shirt, Quantity: 2}, {Product: f.cap, Quantity: 2}}
	override := dp("60")
	res := f.quote(lines, override, usd(), f.tier, f.combo)

	txn := Materialize(MaterializeInput{Lines: lines, Result: res, Currency: usd(), OverrideTotal: override, PaymentMethod: enums.PaymentMethodCash})

	assert.True(t, txn.ManualOverride)
	assert.Empty(t, txn.AppliedPromotions)
	assert.True(t, txn.OverrideTotal.Valid)
	assert.True(t, txn.Subtotal.Equal(d("90")))
	assert.True(t, txn.Discount.Equal(d("30")))
	assert.True(t, txn.Items[0].EffectivePrice.Equal(d("20")))
	assert.True(t, txn.Items[1].EffectivePrice.Equal(d("10")))
	requireBalanced(t, txn)
}

func TestMaterializeScopedDiscountOnlyTouchesScopedTypes(t *testing.T) {
	f := newCatalogFixture()
	lines := []pricing.Line{{Product: f.shirt, Quantity: 3}, {Product: f.cap, Quantity: 1}}
	res := f.quote(lines, nil, usd(), f.tier)
	require.True(t, res.Discount.Equal(d("20")))

	txn := Materialize(MaterializeInput{
		Lines: lines, Result: res, Currency: usd(), PaymentMethod: enums.PaymentMethodCash,
		DiscountScope: []uuid.UUID{f.shirts.ID},
	})

	assert.True(t, txn.Items[1].EffectivePrice.Equal(d("15")))
	assert.True(t, txn.Items[0].EffectivePrice.Sub(d("23.333333")).Abs().LessThan(tolerance))
	requireBalanced(t, txn)
}

func TestMaterializeComboDiscountFollowsEngineAllocation(t *testing.T) {
	f := newCatalogFixture()
	lines := []pricing.Line{{Product: f.cap, Quantity: 1}, {Product: f.shirt, Quantity: 1}, {Product: f.poster, Quantity: 1}}
	res := f.quote(lines, nil, usd(), f.combo)
	require.Equal(t, []string{"Shirt + Cap"}, res.AppliedPromotions)

	txn := Materialize(MaterializeInput{Lines: lines, Result: res, Currency: usd(), PaymentMethod: enums.PaymentMethodCash})

	// 5 off a 45 bundle, split 1/3 cap and 2/3 shirt; poster untouched.
	assert.True(t, txn.Items[2].EffectivePrice.Equal(d("7.99")))
	assert.True(t, txn.Items[0].EffectivePrice.Sub(d("13.333333")).Abs().LessThan(tolerance))
	assert.True(t, txn.Items[1].EffectivePrice.Sub(d("26.666667")).Abs().LessThan(tolerance))
	requireBalanced(t, txn)
}

func TestMaterializeScopedLineKeepsPriceWhenDiscountCameFromOtherTypes(t *testing.T) {
	f := newCatalogFixture()
	beanie := pricing.Product{ID: uuid.New(), TypeID: f.caps.ID, Name: "Beanie", Price: d("25"), PromoEligible: true}
	combo := promotions.Promo{
		Name: "Cap + Beanie", Mode: enums.PromoModeCombo,
		ProductIDs: []uuid.UUID{f.cap.ID, beanie.ID}, ComboPrice: d("35"),
	}
	lines := []pricing.Line{{Product: f.shirt, Quantity: 1}, {Product: f.cap, Quantity: 1}, {Product: beanie, Quantity: 1}}
	res := f.quote(lines, nil, usd(), combo)
	require.Equal(t, []string{"Cap + Beanie"}, res.AppliedPromotions)
	require.True(t, res.Total.Equal(d("65")))

	txn := Materialize(MaterializeInput{
		Lines: lines, Result: res, Currency: usd(), PaymentMethod: enums.PaymentMethodCash,
		DiscountScope: []uuid.UUID{f.shirts.ID},
	})

	// 5 off the 40 bundle stays on the bundle, 15:25.
	assert.True(t, txn.Items[0].EffectivePrice.Equal(d("30")))
	assert.True(t, txn.Items[1].EffectivePrice.Sub(d("13.125")).Abs().LessThan(tolerance))
	assert.True(t, txn.Items[2].EffectivePrice.Sub(d("21.875")).Abs().LessThan(tolerance))
	requireBalanced(t, txn)
}

func TestMaterializeScopedPoolLeavesOtherDiscountsInPlace(t *testing.T) {
	f := newCatalogFixture()
	beanie := pricing.Product{ID: uuid.New(), TypeID: f.caps.ID, Name: "Beanie", Price: d("25"), PromoEligible: true}
	combo := promotions.Promo{
		Name: "Cap + Beanie", Mode: enums.PromoModeCombo, DisplayOrder: -1,
		ProductIDs: []uuid.UUID{f.cap.ID, beanie.ID}, ComboPrice: d("35"),
	}
	lines := []pricing.Line{
		{Product: f.shirt, Quantity: 2},
		{Product: f.cap, Quantity: 1},
		{Product: beanie, Quantity: 1},
	}
	res := f.quote(lines, nil, usd(), combo, f.tier)
	require.True(t, res.Total.Equal(d("85"))) // 50 for two shirts + 35 bundle

	txn := Materialize(MaterializeInput{
		Lines: lines, Result: res, Currency: usd(), PaymentMethod: enums.PaymentMethodCash,
		DiscountScope: []uuid.UUID{f.shirts.ID},
	})

	assert.True(t, txn.Items[0].EffectivePrice.Equal(d("25")))
	assert.True(t, txn.Items[1].EffectivePrice.Sub(d("13.125")).Abs().LessThan(tolerance))
	assert.True(t, txn.Items[2].EffectivePrice.Sub(d("21.875")).Abs().LessThan(tolerance))
	requireBalanced(t, txn)
}

func TestMaterializeScopeWithoutMatchingLinesFallsBackToEngineAllocation(t *testing.T) {
	f := newCatalogFixture()
	lines := []pricing.Line{{Product: f.shirt, Quantity: 2}, {Product: f.poster, Quantity: 1}}
	res := f.quote(lines, nil, usd(), f.tier)

	txn := Materialize(MaterializeInput{
		Lines: lines, Result: res, Currency: usd(), PaymentMethod: enums.PaymentMethodCash,
		DiscountScope: []uuid.UUID{uuid.New()},
	})
	assert.True(t, txn.Items[0].EffectivePrice.Equal(d("25")))
	assert.True(t, txn.Items[1].EffectivePrice.Equal(d("7.99")))
	requireBalanced(t, txn)
}

func TestMaterializeRoundUpResidueIsAbsorbed(t *testing.T) {
	f := newCatalogFixture()
	eur := currency.Params{MainCurrency: enums.CurrencyUSD, MainRate: d("1"), DisplayCurrency: enums.CurrencyEUR, DisplayRate: d("0.92"), RoundUp: true}
	lines := []pricing.Line{{Product: f.shirt, Quantity: 3}, {Product: f.poster, Quantity: 2}}
	res := f.quote(lines, nil, eur, f.tier)
	require.True(t, res.Total.Equal(res.Total.Ceil()))

	txn := Materialize(MaterializeInput{Lines: lines, Result: res, Currency: eur, PaymentMethod: enums.PaymentMethodTransfer})
	assert.Equal(t, enums.CurrencyEUR, txn.Currency)
	requireBalanced(t, txn)
}

func TestMaterializeCardSettlesInBaseCurrency(t *testing.T) {
	f := newCatalogFixture()
	eur := currency.Params{MainCurrency: enums.CurrencyUSD, MainRate: d("1"), DisplayCurrency: enums.CurrencyEUR, DisplayRate: d("0.8")}
	lines := []pricing.Line{{Product: f.shirt, Quantity: 2}, {Product: f.cap, Quantity: 1}}
	res := f.quote(lines, nil, eur, f.tier)
	require.True(t, res.Total.Equal(d("52"))) // (50 + 15) * 0.8

	settlement := &Settlement{Currency: enums.CurrencyUSD, Rate: d("1")}
	txn := Materialize(MaterializeInput{Lines: lines, Result: res, Currency: eur, PaymentMethod: enums.PaymentMethodCard, Settlement: settlement})

	assert.Equal(t, enums.CurrencyUSD, txn.Currency)
	require.NotNil(t, txn.OriginalCurrency)
	assert.Equal(t, enums.CurrencyEUR, *txn.OriginalCurrency)
	assert.True(t, txn.OriginalTotal.Decimal.Equal(d("52")))
	assert.True(t, txn.OriginalSubtotal.Decimal.Equal(d("60")))
	assert.True(t, txn.Total.Equal(d("65")))
	assert.True(t, txn.Subtotal.Equal(d("75")))
	assert.True(t, txn.Discount.Equal(d("10")))
	assert.True(t, txn.Items[0].EffectivePrice.Equal(d("25")))
	requireBalanced(t, txn)

	cash := Materialize(MaterializeInput{Lines: lines, Result: res, Currency: eur, PaymentMethod: enums.PaymentMethodCash, Settlement: settlement})
	assert.Equal(t, enums.CurrencyEUR, cash.Currency)
	assert.Nil(t, cash.OriginalCurrency)
}

func TestMaterializeZeroNaturalSubtotalUsesQuantityShare(t *testing.T) {
	f := newCatalogFixture()
	free := pricing.Product{ID: uuid.New(), TypeID: f.caps.ID, Name: "Free pin", Price: decimal.Zero}
	lines := []pricing.Line{{Product: free, Quantity: 1}, {Product: free, Quantity: 3}}
	override := dp("8")
	res := f.quote(lines, override, usd())

	txn := Materialize(MaterializeInput{Lines: lines, Result: res, Currency: usd(), OverrideTotal: override, PaymentMethod: enums.PaymentMethodCash})
	assert.True(t, txn.Items[0].EffectivePrice.Equal(d("2")))
	assert.True(t, txn.Items[1].EffectivePrice.Equal(d("2")))
	requireBalanced(t, txn)
}

func TestMaterializeEmptyCart(t *testing.T) {
	txn := Materialize(MaterializeInput{Result: pricing.Result{}, Currency: usd(), PaymentMethod: enums.PaymentMethodCash})
	assert.Empty(t, txn.Items)
}

func TestMaterializeBalancesAcrossScenarios(t *testing.T) {
	f := newCatalogFixture()
	products := []pricing.Product{f.shirt, f.cap, f.poster}
	params := []currency.Params{
		usd(),
		{MainCurrency: enums.CurrencyUSD, MainRate: d("1"), DisplayCurrency: enums.CurrencyEUR, DisplayRate: d("0.9237"), RoundUp: true},
		{MainCurrency: enums.CurrencyUSD, MainRate: d("1"), DisplayCurrency: "MXN", DisplayRate: d("17.13")},
	}
	methods := []enums.PaymentMethod{enums.PaymentMethodCash, enums.PaymentMethodCard, enums.PaymentMethodTransfer}
	settlement := &Settlement{Currency: enums.CurrencyUSD, Rate: d("1")}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		var lines []pricing.Line
		for n := 1 + rng.Intn(5); n > 0; n-- {
			line := pricing.Line{Product: products[rng.Intn(len(products))], Quantity: 1 + rng.Intn(13)}
			if rng.Intn(10) == 0 {
				line.OverridePrice = dp("3.33")
			}
			lines = append(lines, line)
		}
		var override *decimal.Decimal
		if rng.Intn(4) == 0 {
			override = dp(decimal.NewFromInt(int64(rng.Intn(300))).Add(d("0.17")).String())
		}
		p := params[rng.Intn(len(params))]
		var scope []uuid.UUID
		if rng.Intn(2) == 0 {
			scope = []uuid.UUID{f.shirts.ID}
		}

		res := f.quote(lines, override, p, f.combo, f.tier)
		txn := Materialize(MaterializeInput{
			Lines: lines, Result: res, Currency: p, OverrideTotal: override,
			PaymentMethod: methods[rng.Intn(len(methods))], Settlement: settlement, DiscountScope: scope,
		})
		requireBalanced(t, txn)
		if override == nil || override.IsPositive() {
			for _, item := range txn.Items {
				require.Truef(t, item.EffectivePrice.GreaterThanOrEqual(tolerance.Neg()), "negative effective price %s for %s", item.EffectivePrice, item.Name)
			}
		}
	}
}
