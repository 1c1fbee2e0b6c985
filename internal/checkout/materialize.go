package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/internal/pricing"
	"github.com/angelmondragon/eventpos-backend/pkg/currency"
	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/eventpos-backend/pkg/db/types"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// Settlement is the fixed currency a payment method settles in.
type Settlement struct {
	Currency enums.Currency
	Rate     decimal.Decimal
}

// MaterializeInput is the priced cart plus checkout details.
type MaterializeInput struct {
	EventID       uuid.UUID
	Lines         []pricing.Line
	Result        pricing.Result
	Currency      currency.Params
	OverrideTotal *decimal.Decimal
	PaymentMethod enums.PaymentMethod
	// Settlement is applied only when the payment method settles in a fixed
	// currency and it differs from the display currency.
	Settlement *Settlement
	// DiscountScope restricts automatic-discount reallocation to products of
	// these types. Empty means every discounted line carries its own share.
	DiscountScope []uuid.UUID
	Email         *string
	Note          *string
}

// Materialize builds the transaction record for a priced cart. Each item's
// EffectivePrice is chosen so that the sum of EffectivePrice*Quantity equals
// the recorded Total.
func Materialize(in MaterializeInput) models.Transaction {
	res := in.Result
	txn := models.Transaction{
		EventID:           in.EventID,
		Subtotal:          res.Subtotal,
		Discount:          res.Discount,
		Total:             res.Total,
		Currency:          in.Currency.DisplayCurrency,
		PaymentMethod:     in.PaymentMethod,
		AppliedPromotions: dbtypes.StringList(append([]string{}, res.AppliedPromotions...)),
		Email:             in.Email,
		Note:              in.Note,
		ManualOverride:    res.ManualOverride,
	}
	if in.OverrideTotal != nil {
		txn.OverrideTotal = decimal.NewNullDecimal(*in.OverrideTotal)
		txn.Discount = txn.Subtotal.Sub(txn.Total)
	}

	prices := effectivePrices(in)
	txn.Items = make([]models.TransactionItem, len(in.Lines))
	for i, line := range in.Lines {
		txn.Items[i] = models.TransactionItem{
			Position:       i,
			ProductID:      line.Product.ID,
			Name:           line.Product.Name,
			TypeID:         line.Product.TypeID,
			PromoEligible:  line.Product.PromoEligible,
			EffectivePrice: prices[i],
			Quantity:       line.Quantity,
		}
	}

	if s := in.Settlement; s != nil && in.PaymentMethod.SettlesInFixedCurrency() && s.Currency != txn.Currency {
		settle(&txn, in.Currency.DisplayRate, *s)
	}
	return txn
}

// effectivePrices spreads D = sum(natural) - total over the lines by weights
// summing to one, in the display currency.
func effectivePrices(in MaterializeInput) []decimal.Decimal {
	n := len(in.Lines)
	out := make([]decimal.Decimal, n)
	if n == 0 {
		return out
	}

	natural := make([]decimal.Decimal, n)
	naturalSum := decimal.Zero
	for i, line := range in.Lines {
		natural[i] = in.Currency.Project(line.NaturalTotal())
		naturalSum = naturalSum.Add(natural[i])
	}
	gap := naturalSum.Sub(in.Result.Total)

	weights, denominator := allocationWeights(in, natural)

	allocated := decimal.Zero
	last := lastWeighted(weights)
	for i, line := range in.Lines {
		lineTotal := natural[i]
		if !weights[i].IsZero() {
			part := gap.Sub(allocated)
			if i != last {
				part = gap.Mul(weights[i]).Div(denominator)
			}
			allocated = allocated.Add(part)
			lineTotal = lineTotal.Sub(part)
		}
		out[i] = lineTotal.Div(decimal.NewFromInt(int64(line.Quantity)))
	}
	return out
}

// allocationWeights returns unnormalised weights and their sum. A zero
// denominator never escapes: quantity shares are used instead.
func allocationWeights(in MaterializeInput, natural []decimal.Decimal) ([]decimal.Decimal, decimal.Decimal) {
	res := in.Result
	automatic := !res.ManualOverride && res.NaturalSubtotal.GreaterThan(res.PromotionalSubtotal)

	if automatic && len(res.LineDiscounts) == len(in.Lines) {
		weights := make([]decimal.Decimal, len(in.Lines))
		sum := decimal.Zero
		for i, v := range res.LineDiscounts {
			weights[i] = v
			sum = sum.Add(v)
		}
		if sum.IsPositive() {
			if len(in.DiscountScope) > 0 {
				return poolScoped(in, natural, weights)
			}
			return weights, sum
		}
	}

	return shares(in.Lines, natural, nil)
}

// poolScoped spreads the discount earned by in-scope lines across every in-scope line
// by natural value. Lines outside the scope keep the discount the engine gave
// them, so a promotion never moves onto lines it did not touch.
func poolScoped(in MaterializeInput, natural, lineDiscounts []decimal.Decimal) ([]decimal.Decimal, decimal.Decimal) {
	mask := make([]bool, len(in.Lines))
	pooled := decimal.Zero
	for i, line := range in.Lines {
		mask[i] = inScope(in.DiscountScope, line.Product.TypeID)
		if mask[i] {
			pooled = pooled.Add(lineDiscounts[i])
		}
	}

	weights := make([]decimal.Decimal, len(lineDiscounts))
	copy(weights, lineDiscounts)
	if pooled.IsPositive() {
		scoped, denominator := shares(in.Lines, natural, mask)
		for i := range weights {
			if mask[i] {
				weights[i] = pooled.Mul(scoped[i]).Div(denominator)
			}
		}
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	return weights, sum
}

// shares weights the masked lines (all when mask is nil) by natural value,
// falling back to quantity when their natural value is zero.
func shares(lines []pricing.Line, natural []decimal.Decimal, mask []bool) ([]decimal.Decimal, decimal.Decimal) {
	weights := make([]decimal.Decimal, len(lines))
	sum := decimal.Zero
	for i := range lines {
		weights[i] = decimal.Zero
		if mask != nil && !mask[i] {
			continue
		}
		weights[i] = natural[i]
		sum = sum.Add(natural[i])
	}
	if !sum.IsZero() {
		return weights, sum
	}

	sum = decimal.Zero
	for i, line := range lines {
		if mask != nil && !mask[i] {
			continue
		}
		weights[i] = decimal.NewFromInt(int64(line.Quantity))
		sum = sum.Add(weights[i])
	}
	return weights, sum
}

func lastWeighted(weights []decimal.Decimal) int {
	for i := len(weights) - 1; i >= 0; i-- {
		if !weights[i].IsZero() {
			return i
		}
	}
	return -1
}

func inScope(scope []uuid.UUID, typeID uuid.UUID) bool {
	for _, id := range scope {
		if id == typeID {
			return true
		}
	}
	return false
}

// settle converts every amount into the settlement currency and keeps the
// display-currency values in the Original* fields.
func settle(txn *models.Transaction, displayRate decimal.Decimal, s Settlement) {
	original := txn.Currency
	txn.OriginalCurrency = &original
	txn.OriginalSubtotal = decimal.NewNullDecimal(txn.Subtotal)
	txn.OriginalTotal = decimal.NewNullDecimal(txn.Total)

	convert := func(v decimal.Decimal) decimal.Decimal {
		return currency.Convert(v, displayRate, s.Rate)
	}
	txn.Subtotal = convert(txn.Subtotal)
	txn.Discount = convert(txn.Discount)
	txn.Total = convert(txn.Total)
	for i := range txn.Items {
		txn.Items[i].EffectivePrice = convert(txn.Items[i].EffectivePrice)
	}
	txn.Currency = s.Currency
}
