package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/eventpos-backend/pkg/db/types"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// Event is one selling session (a fair, a concert) with its own catalog and history.
type Event struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name              string            `gorm:"column:name;not null"`
	MainCurrency      enums.Currency    `gorm:"column:main_currency;not null"`
	RoundUp           bool              `gorm:"column:round_up;not null;default:false"`
	PromotableTypeIDs dbtypes.UUIDArray `gorm:"column:promotable_type_ids;not null"`
	Locked            bool              `gorm:"column:locked;not null;default:false"`
	LockedAt          *time.Time        `gorm:"column:locked_at"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	if e.PromotableTypeIDs == nil {
		e.PromotableTypeIDs = dbtypes.UUIDArray{}
	}
	return nil
}
