package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/eventpos-backend/pkg/db/types"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// Promo is either a tiered-by-type price table or a fixed-price combo.
// Columns that do not apply to the mode stay null/empty.
type Promo struct {
	ID                     uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	EventID                uuid.UUID           `gorm:"column:event_id;type:uuid;not null"`
	Name                   string              `gorm:"column:name;not null"`
	Mode                   enums.PromoMode     `gorm:"column:mode;not null"`
	DisplayOrder           int                 `gorm:"column:display_order;not null;default:0"`
	TypeID                 *uuid.UUID          `gorm:"column:type_id;type:uuid"`
	MaxQuantity            int                 `gorm:"column:max_quantity;not null;default:0"`
	PriceTable             dbtypes.PriceTable  `gorm:"column:price_table;not null"`
	IncrementalPrice       decimal.NullDecimal `gorm:"column:incremental_price;type:numeric(12,4)"`
	IncrementalPrice10Plus decimal.NullDecimal `gorm:"column:incremental_price_10_plus;type:numeric(12,4)"`
	ProductIDs             dbtypes.UUIDArray   `gorm:"column:product_ids;not null"`
	ComboPrice             decimal.NullDecimal `gorm:"column:combo_price;type:numeric(12,4)"`
	CreatedAt              time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Promo) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.PriceTable == nil {
		p.PriceTable = dbtypes.PriceTable{}
	}
	if p.ProductIDs == nil {
		p.ProductIDs = dbtypes.UUIDArray{}
	}
	return nil
}
