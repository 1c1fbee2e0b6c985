package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/eventpos-backend/pkg/db/types"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// Transaction is a finalized sale. Amounts are in Currency; when the payment
// settled in a different currency than the customer saw, the Original* columns
// keep the pre-conversion values.
type Transaction struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	EventID           uuid.UUID           `gorm:"column:event_id;type:uuid;not null"`
	Subtotal          decimal.Decimal     `gorm:"column:subtotal;type:numeric(14,6);not null"`
	Discount          decimal.Decimal     `gorm:"column:discount;type:numeric(14,6);not null"`
	Total             decimal.Decimal     `gorm:"column:total;type:numeric(14,6);not null"`
	Currency          enums.Currency      `gorm:"column:currency;not null"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;not null"`
	AppliedPromotions dbtypes.StringList  `gorm:"column:applied_promotions;not null"`
	Email             *string             `gorm:"column:email"`
	Note              *string             `gorm:"column:note"`
	ManualOverride    bool                `gorm:"column:manual_override;not null;default:false"`
	OverrideTotal     decimal.NullDecimal `gorm:"column:override_total;type:numeric(14,6)"`
	OriginalCurrency  *enums.Currency     `gorm:"column:original_currency"`
	OriginalSubtotal  decimal.NullDecimal `gorm:"column:original_subtotal;type:numeric(14,6)"`
	OriginalTotal     decimal.NullDecimal `gorm:"column:original_total;type:numeric(14,6)"`
	Items             []TransactionItem   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	if t.AppliedPromotions == nil {
		t.AppliedPromotions = dbtypes.StringList{}
	}
	return nil
}

// TransactionItem snapshots one cart line with its discount-adjusted unit price.
type TransactionItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID  uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null"`
	Position       int             `gorm:"column:position;not null"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name           string          `gorm:"column:name;not null"`
	TypeID         uuid.UUID       `gorm:"column:type_id;type:uuid;not null"`
	PromoEligible  bool            `gorm:"column:promo_eligible;not null;default:false"`
	EffectivePrice decimal.Decimal `gorm:"column:effective_price;type:numeric(14,6);not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
}

func (i *TransactionItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
