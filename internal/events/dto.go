package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

// EventDTO is the API view of an event.
type EventDTO struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	MainCurrency      enums.Currency `json:"main_currency"`
	RoundUp           bool           `json:"round_up"`
	PromotableTypeIDs []uuid.UUID    `json:"promotable_type_ids"`
	Locked            bool           `json:"locked"`
	LockedAt          *time.Time     `json:"locked_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// FromModel maps the persisted event into a DTO.
func FromModel(m *models.Event) *EventDTO {
	if m == nil {
		return nil
	}
	ids := make([]uuid.UUID, len(m.PromotableTypeIDs))
	copy(ids, m.PromotableTypeIDs)
	return &EventDTO{
		ID:                m.ID,
		Name:              m.Name,
		MainCurrency:      m.MainCurrency,
		RoundUp:           m.RoundUp,
		PromotableTypeIDs: ids,
		Locked:            m.Locked,
		LockedAt:          m.LockedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
