package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/eventpos-backend/pkg/db/types"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
)

// ErrEventLocked is returned when a history mutation targets a locked event.
var ErrEventLocked = pkgerrors.New(pkgerrors.CodeStateConflict, "event is locked")

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	SetLocked(ctx context.Context, id uuid.UUID, locked bool, at time.Time) error
	IsLocked(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes event operations.
type Service interface {
	Create(ctx context.Context, input CreateEventInput) (*EventDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*EventDTO, error)
	List(ctx context.Context) ([]EventDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*EventDTO, error)
	Lock(ctx context.Context, id uuid.UUID) (*EventDTO, error)
	Unlock(ctx context.Context, id uuid.UUID) (*EventDTO, error)
	IsLocked(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateEventInput captures a new event's settings.
type CreateEventInput struct {
	Name              string
	MainCurrency      enums.Currency
	RoundUp           bool
	PromotableTypeIDs []uuid.UUID
}

// UpdateEventInput holds optional setting changes.
type UpdateEventInput struct {
	Name              *string
	MainCurrency      *enums.Currency
	RoundUp           *bool
	PromotableTypeIDs *[]uuid.UUID
}

type service struct {
	repo eventRepository
	now  func() time.Time
}

// NewService builds an event service.
func NewService(repo eventRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("event repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateEventInput) (*EventDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.MainCurrency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "main currency is invalid")
	}

	event := &models.Event{
		Name:              name,
		MainCurrency:      input.MainCurrency,
		RoundUp:           input.RoundUp,
		PromotableTypeIDs: dbtypes.Unique(input.PromotableTypeIDs),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return FromModel(event), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EventDTO, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(event), nil
}

func (s *service) List(ctx context.Context) ([]EventDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	out := make([]EventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*EventDTO, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		event.Name = name
	}
	if input.MainCurrency != nil {
		if !input.MainCurrency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "main currency is invalid")
		}
		event.MainCurrency = *input.MainCurrency
	}
	if input.RoundUp != nil {
		event.RoundUp = *input.RoundUp
	}
	if input.PromotableTypeIDs != nil {
		event.PromotableTypeIDs = dbtypes.Unique(*input.PromotableTypeIDs)
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}
	return FromModel(event), nil
}

func (s *service) Lock(ctx context.Context, id uuid.UUID) (*EventDTO, error) {
	return s.setLocked(ctx, id, true)
}

func (s *service) Unlock(ctx context.Context, id uuid.UUID) (*EventDTO, error) {
	return s.setLocked(ctx, id, false)
}

func (s *service) setLocked(ctx context.Context, id uuid.UUID, locked bool) (*EventDTO, error) {
	if err := s.repo.SetLocked(ctx, id, locked, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set event lock")
	}
	return s.Get(ctx, id)
}

func (s *service) IsLocked(ctx context.Context, id uuid.UUID) (bool, error) {
	locked, err := s.repo.IsLocked(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read event lock")
	}
	return locked, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}
