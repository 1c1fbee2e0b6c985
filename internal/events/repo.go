package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
)

// Repository handles event persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to event operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a new event row.
func (r *Repository) Create(ctx context.Context, event *models.Event) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByID loads an event by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns every event, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Update saves the provided event.
func (r *Repository) Update(ctx context.Context, event *models.Event) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	return r.db.WithContext(ctx).Save(event).Error
}

// SetLocked flips the lock flag and stamps locked_at (cleared on unlock).
func (r *Repository) SetLocked(ctx context.Context, id uuid.UUID, locked bool, at time.Time) error {
	var lockedAt *time.Time
	if locked {
		lockedAt = &at
	}
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{"locked": locked, "locked_at": lockedAt, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsLocked reads only the lock flag.
func (r *Repository) IsLocked(ctx context.Context, id uuid.UUID) (bool, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Select("locked").Where("id = ?", id).First(&event).Error; err != nil {
		return false, err
	}
	return event.Locked, nil
}
