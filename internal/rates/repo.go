package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// Repository persists exchange rates keyed by currency code.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to rate operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads a rate by code.
func (r *Repository) Find(ctx context.Context, code enums.Currency) (*models.ExchangeRate, error) {
	var row models.ExchangeRate
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns every rate ordered by code.
func (r *Repository) List(ctx context.Context) ([]models.ExchangeRate, error) {
	var rows []models.ExchangeRate
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts or replaces the rate for a code.
func (r *Repository) Upsert(ctx context.Context, code enums.Currency, rate decimal.Decimal, at time.Time) (*models.ExchangeRate, error) {
	row := &models.ExchangeRate{Code: code, Rate: rate, UpdatedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// InsertMissing adds the rate only when the code has no row yet.
func (r *Repository) InsertMissing(ctx context.Context, code enums.Currency, rate decimal.Decimal, at time.Time) error {
	row := &models.ExchangeRate{Code: code, Rate: rate, UpdatedAt: at}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}
