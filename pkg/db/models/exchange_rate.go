package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// ExchangeRate is a currency's value relative to the configured base currency.
type ExchangeRate struct {
	Code      enums.Currency  `gorm:"column:code;primaryKey"`
	Rate      decimal.Decimal `gorm:"column:rate;type:numeric(18,8);not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
