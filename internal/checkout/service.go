package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/internal/catalog"
	"github.com/angelmondragon/eventpos-backend/internal/events"
	"github.com/angelmondragon/eventpos-backend/internal/pricing"
	"github.com/angelmondragon/eventpos-backend/internal/transactions"
	"github.com/angelmondragon/eventpos-backend/pkg/currency"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
	"github.com/angelmondragon/eventpos-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*events.EventDTO, error)
}

type catalogLoader interface {
	LoadPricingCatalog(ctx context.Context, eventID uuid.UUID) (*catalog.PricingCatalog, error)
}

// Service prices carts and records sales.
type Service interface {
	Quote(ctx context.Context, eventID uuid.UUID, input QuoteInput) (*QuoteDTO, error)
	Checkout(ctx context.Context, eventID uuid.UUID, input CheckoutInput) (*transactions.TransactionDTO, error)
}

// CartLine references a catalog product. OverridePrice is in the main currency.
type CartLine struct {
	ProductID     uuid.UUID
	Quantity      int
	OverridePrice *decimal.Decimal
}

// QuoteInput is a cart to price. An empty DisplayCurrency means the event's
// main currency; OverrideTotal is in the main currency.
type QuoteInput struct {
	Lines           []CartLine
	DisplayCurrency enums.Currency
	OverrideTotal   *decimal.Decimal
}

// CheckoutInput is a cart plus the sale details.
type CheckoutInput struct {
	QuoteInput
	PaymentMethod enums.PaymentMethod
	Email         *string
	Note          *string
}

// QuoteLineDTO echoes a priced cart line.
type QuoteLineDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// QuoteDTO is the engine result in the display currency.
type QuoteDTO struct {
	Lines             []QuoteLineDTO  `json:"lines"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	Currency          enums.Currency  `json:"currency"`
	AppliedPromotions []string        `json:"applied_promotions"`
	ManualOverride    bool            `json:"manual_override"`
}

type service struct {
	tx           txRunner
	events       eventLoader
	catalog      catalogLoader
	rates        currency.RateLookup
	transactions *transactions.Repository
	settlement   enums.Currency
	metrics      *metrics.POSMetrics
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the checkout service. settlement is the currency card
// payments settle in; empty disables conversion. metrics and logg may be nil.
func NewService(
	tx txRunner,
	eventSvc eventLoader,
	catalogSvc catalogLoader,
	rates currency.RateLookup,
	txRepo *transactions.Repository,
	settlement enums.Currency,
	m *metrics.POSMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if eventSvc == nil {
		return nil, fmt.Errorf("event service required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if rates == nil {
		return nil, fmt.Errorf("rate lookup required")
	}
	if txRepo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if settlement != "" && !settlement.IsValid() {
		return nil, fmt.Errorf("invalid settlement currency %q", settlement)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:           tx,
		events:       eventSvc,
		catalog:      catalogSvc,
		rates:        rates,
		transactions: txRepo,
		settlement:   settlement,
		metrics:      m,
		logg:         logg,
		now:          time.Now,
	}, nil
}

type priced struct {
	event  *events.EventDTO
	lines  []pricing.Line
	params currency.Params
	result pricing.Result
}

func (s *service) Quote(ctx context.Context, eventID uuid.UUID, input QuoteInput) (*QuoteDTO, error) {
	p, err := s.price(ctx, eventID, input)
	if err != nil {
		return nil, err
	}

	lines := make([]QuoteLineDTO, 0, len(p.lines))
	for _, line := range p.lines {
		lines = append(lines, QuoteLineDTO{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice(),
		})
	}
	return &QuoteDTO{
		Lines:             lines,
		Subtotal:          p.result.Subtotal,
		Discount:          p.result.Discount,
		Total:             p.result.Total,
		Currency:          p.params.DisplayCurrency,
		AppliedPromotions: append([]string{}, p.result.AppliedPromotions...),
		ManualOverride:    p.result.ManualOverride,
	}, nil
}

// Checkout prices the cart and stores the resulting transaction. All reads
// happen before the database transaction opens.
func (s *service) Checkout(ctx context.Context, eventID uuid.UUID, input CheckoutInput) (*transactions.TransactionDTO, error) {
	started := s.now()
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is invalid")
	}

	p, err := s.price(ctx, eventID, input.QuoteInput)
	if err != nil {
		return nil, err
	}

	settlement, err := s.settlementFor(ctx, input.PaymentMethod, p.params.DisplayCurrency)
	if err != nil {
		return nil, err
	}

	txn := Materialize(MaterializeInput{
		EventID:       eventID,
		Lines:         p.lines,
		Result:        p.result,
		Currency:      p.params,
		OverrideTotal: input.OverrideTotal,
		PaymentMethod: input.PaymentMethod,
		Settlement:    settlement,
		DiscountScope: p.event.PromotableTypeIDs,
		Email:         trimmed(input.Email),
		Note:          trimmed(input.Note),
	})
	txn.CreatedAt = s.now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.transactions.WithTx(tx).Create(ctx, &txn)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save transaction")
	}

	s.metrics.ObserveCheckout(string(txn.PaymentMethod), p.result.AppliedModes, s.now().Sub(started))
	s.logg.Info(s.logg.WithFields(s.logg.WithEventID(ctx, eventID), map[string]any{
		"transaction_id": txn.ID,
		"total":          txn.Total,
		"currency":       txn.Currency,
		"payment_method": txn.PaymentMethod,
	}), "checkout completed")
	return transactions.FromModel(&txn), nil
}

func (s *service) price(ctx context.Context, eventID uuid.UUID, input QuoteInput) (*priced, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if input.OverrideTotal != nil && input.OverrideTotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "override total must not be negative")
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	cat, err := s.catalog.LoadPricingCatalog(ctx, eventID)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(input.Lines))
	for i, in := range input.Lines {
		product, ok := cat.Products[in.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unknown product %s", i, in.ProductID))
		}
		if in.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be at least 1", i))
		}
		if in.OverridePrice != nil && in.OverridePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: override price must not be negative", i))
		}
		lines = append(lines, pricing.Line{Product: product, Quantity: in.Quantity, OverridePrice: in.OverridePrice})
	}

	display := input.DisplayCurrency
	if display != "" && !display.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display currency is invalid")
	}
	if display == "" {
		display = event.MainCurrency
	}
	params, err := currency.Resolve(ctx, s.rates, event.MainCurrency, display, event.RoundUp)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve exchange rates")
	}

	result := pricing.Compute(pricing.Input{
		Lines:         lines,
		Types:         cat.Types,
		Catalog:       cat.Promos,
		OverrideTotal: input.OverrideTotal,
		Currency:      params,
	})
	s.metrics.IncQuote()
	return &priced{event: event, lines: lines, params: params, result: result}, nil
}

func (s *service) settlementFor(ctx context.Context, method enums.PaymentMethod, display enums.Currency) (*Settlement, error) {
	if s.settlement == "" || !method.SettlesInFixedCurrency() || s.settlement == display {
		return nil, nil
	}
	rate, err := s.rates.Rate(ctx, s.settlement)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settlement rate")
	}
	return &Settlement{Currency: s.settlement, Rate: rate}, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
