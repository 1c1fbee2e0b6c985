package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
)

type rateRepository interface {
	Find(ctx context.Context, code enums.Currency) (*models.ExchangeRate, error)
	List(ctx context.Context) ([]models.ExchangeRate, error)
	Upsert(ctx context.Context, code enums.Currency, rate decimal.Decimal, at time.Time) (*models.ExchangeRate, error)
	InsertMissing(ctx context.Context, code enums.Currency, rate decimal.Decimal, at time.Time) error
}

// RateDTO is the API view of an exchange rate.
type RateDTO struct {
	Code      enums.Currency  `json:"code"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Service looks up and maintains exchange rates.
type Service interface {
	Rate(ctx context.Context, code enums.Currency) (decimal.Decimal, error)
	List(ctx context.Context) ([]RateDTO, error)
	Upsert(ctx context.Context, code enums.Currency, rate decimal.Decimal) (*RateDTO, error)
	Seed(ctx context.Context, seed map[string]string) error
}

type service struct {
	repo  rateRepository
	cache Cache
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds a rate service. A nil cache disables caching.
func NewService(repo rateRepository, cache Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rate repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, cache: cache, logg: logg, now: time.Now}, nil
}

// Rate returns the rate for code. Cache failures fall through to the database.
func (s *service) Rate(ctx context.Context, code enums.Currency) (decimal.Decimal, error) {
	if s.cache != nil {
		rate, ok, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "currency", code.String()), "rate cache read failed: "+err.Error())
		} else if ok {
			return rate, nil
		}
	}

	row, err := s.repo.Find(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no exchange rate for %s", code))
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exchange rate")
	}

	if s.cache != nil {
		if err := s.cache.Fill(ctx, code, row.Rate); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "currency", code.String()), "rate cache write failed: "+err.Error())
		}
	}
	return row.Rate, nil
}

func (s *service) List(ctx context.Context) ([]RateDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list exchange rates")
	}
	out := make([]RateDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, RateDTO{Code: row.Code, Rate: row.Rate, UpdatedAt: row.UpdatedAt})
	}
	return out, nil
}

func (s *service) Upsert(ctx context.Context, code enums.Currency, rate decimal.Decimal) (*RateDTO, error) {
	if !code.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency code is invalid")
	}
	if !rate.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
	}

	row, err := s.repo.Upsert(ctx, code, rate, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save exchange rate")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, code, row.Rate); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh cached rate")
		}
	}
	return &RateDTO{Code: row.Code, Rate: row.Rate, UpdatedAt: row.UpdatedAt}, nil
}

// Seed inserts configured rates for codes that have none. Existing rows win so
// edits made through the API survive restarts.
func (s *service) Seed(ctx context.Context, seed map[string]string) error {
	for raw, value := range seed {
		code, err := enums.ParseCurrency(raw)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "seed rate code")
		}
		rate, err := decimal.NewFromString(value)
		if err != nil || !rate.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("seed rate for %s must be a positive number", code))
		}
		if err := s.repo.InsertMissing(ctx, code, rate, s.now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed exchange rate")
		}
	}
	return nil
}
