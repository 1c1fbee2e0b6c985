package transactions

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// CurrencyTotals sums sales recorded in one currency.
type CurrencyTotals struct {
	Currency enums.Currency  `json:"currency"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// MethodTotals sums sales per payment method and currency.
type MethodTotals struct {
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Currency      enums.Currency      `json:"currency"`
	Count         int                 `json:"count"`
	Total         decimal.Decimal     `json:"total"`
}

// ProductTotals sums sold quantity and effective revenue per product and currency.
type ProductTotals struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Currency  enums.Currency  `json:"currency"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Totals is the event sales report. Amounts are never summed across currencies.
type Totals struct {
	EventID          uuid.UUID        `json:"event_id"`
	TransactionCount int              `json:"transaction_count"`
	ByCurrency       []CurrencyTotals `json:"by_currency"`
	ByPaymentMethod  []MethodTotals   `json:"by_payment_method"`
	ByProduct        []ProductTotals  `json:"by_product"`
}

type methodKey struct {
	method   enums.PaymentMethod
	currency enums.Currency
}

type productKey struct {
	id       uuid.UUID
	currency enums.Currency
}

// Summarize aggregates the report. Product names come from the latest sale.
func Summarize(eventID uuid.UUID, txns []models.Transaction) Totals {
	currencies := map[enums.Currency]*CurrencyTotals{}
	methods := map[methodKey]*MethodTotals{}
	products := map[productKey]*ProductTotals{}

	for _, txn := range txns {
		ct, ok := currencies[txn.Currency]
		if !ok {
			ct = &CurrencyTotals{Currency: txn.Currency}
			currencies[txn.Currency] = ct
		}
		ct.Count++
		ct.Subtotal = ct.Subtotal.Add(txn.Subtotal)
		ct.Discount = ct.Discount.Add(txn.Discount)
		ct.Total = ct.Total.Add(txn.Total)

		mk := methodKey{method: txn.PaymentMethod, currency: txn.Currency}
		mt, ok := methods[mk]
		if !ok {
			mt = &MethodTotals{PaymentMethod: txn.PaymentMethod, Currency: txn.Currency}
			methods[mk] = mt
		}
		mt.Count++
		mt.Total = mt.Total.Add(txn.Total)

		for _, item := range txn.Items {
			pk := productKey{id: item.ProductID, currency: txn.Currency}
			pt, ok := products[pk]
			if !ok {
				pt = &ProductTotals{ProductID: item.ProductID, Currency: txn.Currency}
				products[pk] = pt
			}
			pt.Name = item.Name
			pt.Quantity += item.Quantity
			pt.Revenue = pt.Revenue.Add(item.EffectivePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	out := Totals{
		EventID:          eventID,
		TransactionCount: len(txns),
		ByCurrency:       make([]CurrencyTotals, 0, len(currencies)),
		ByPaymentMethod:  make([]MethodTotals, 0, len(methods)),
		ByProduct:        make([]ProductTotals, 0, len(products)),
	}
	for _, ct := range currencies {
		out.ByCurrency = append(out.ByCurrency, *ct)
	}
	for _, mt := range methods {
		out.ByPaymentMethod = append(out.ByPaymentMethod, *mt)
	}
	for _, pt := range products {
		out.ByProduct = append(out.ByProduct, *pt)
	}

	sort.Slice(out.ByCurrency, func(i, j int) bool {
		return out.ByCurrency[i].Currency < out.ByCurrency[j].Currency
	})
	sort.Slice(out.ByPaymentMethod, func(i, j int) bool {
		a, b := out.ByPaymentMethod[i], out.ByPaymentMethod[j]
		if a.PaymentMethod != b.PaymentMethod {
			return a.PaymentMethod < b.PaymentMethod
		}
		return a.Currency < b.Currency
	})
	sort.Slice(out.ByProduct, func(i, j int) bool {
		a, b := out.ByProduct[i], out.ByProduct[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.ProductID != b.ProductID {
			return a.ProductID.String() < b.ProductID.String()
		}
		return a.Currency < b.Currency
	})
	return out
}
