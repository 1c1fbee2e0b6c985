package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductType groups products for tiered promotions.
type ProductType struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EventID      uuid.UUID `gorm:"column:event_id;type:uuid;not null"`
	Name         string    `gorm:"column:name;not null"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	Enabled      bool      `gorm:"column:enabled;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *ProductType) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Product is a sellable item priced in the event's main currency.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	EventID       uuid.UUID       `gorm:"column:event_id;type:uuid;not null"`
	TypeID        uuid.UUID       `gorm:"column:type_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,4);not null"`
	PromoEligible bool            `gorm:"column:promo_eligible;not null;default:false"`
	DisplayOrder  int             `gorm:"column:display_order;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
