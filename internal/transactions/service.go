package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/internal/events"
	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
	"github.com/angelmondragon/eventpos-backend/pkg/metrics"
	"github.com/angelmondragon/eventpos-backend/pkg/pagination"
)

type transactionRepository interface {
	FindByID(ctx context.Context, eventID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, q listQuery) ([]models.Transaction, error)
	ListAll(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error)
	UpdateDetails(ctx context.Context, txn *models.Transaction) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
}

// LockChecker reports whether an event's history is frozen.
type LockChecker interface {
	IsLocked(ctx context.Context, eventID uuid.UUID) (bool, error)
}

// Service exposes the sales history of an event.
type Service interface {
	List(ctx context.Context, eventID uuid.UUID, params pagination.Params) (*ListResult, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*TransactionDTO, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input UpdateInput) (*TransactionDTO, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	Totals(ctx context.Context, eventID uuid.UUID) (*Totals, error)
}

// UpdateInput holds the editable fields. An empty email or note clears it.
type UpdateInput struct {
	Email         *string
	PaymentMethod *enums.PaymentMethod
	Note          *string
}

// ListResult wraps a page of transactions and the cursor for the next page.
type ListResult struct {
	Items  []TransactionDTO `json:"items"`
	Cursor string           `json:"cursor"`
}

type service struct {
	repo    transactionRepository
	locks   LockChecker
	metrics *metrics.POSMetrics
}

// NewService builds the history service. metrics may be nil.
func NewService(repo transactionRepository, locks LockChecker, m *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if locks == nil {
		return nil, fmt.Errorf("lock checker required")
	}
	return &service{repo: repo, locks: locks, metrics: m}, nil
}

func (s *service) List(ctx context.Context, eventID uuid.UUID, params pagination.Params) (*ListResult, error) {
	query := listQuery{eventID: eventID, limit: pagination.LimitWithBuffer(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(row models.Transaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})

	items := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Cursor: next}, nil
}

func (s *service) Get(ctx context.Context, eventID, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.load(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(txn), nil
}

// Update edits the receipt details. Amounts stay as recorded even when the
// payment method changes.
func (s *service) Update(ctx context.Context, eventID, id uuid.UUID, input UpdateInput) (*TransactionDTO, error) {
	txn, err := s.load(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		txn.Email = optionalText(*input.Email)
	}
	if input.Note != nil {
		txn.Note = optionalText(*input.Note)
	}
	if input.PaymentMethod != nil {
		if !input.PaymentMethod.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is invalid")
		}
		txn.PaymentMethod = *input.PaymentMethod
	}

	if err := s.ensureUnlocked(ctx, eventID, "edit"); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDetails(ctx, txn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
	}
	return FromModel(txn), nil
}

func (s *service) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	if err := s.ensureUnlocked(ctx, eventID, "delete"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, eventID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transaction")
	}
	return nil
}

func (s *service) Totals(ctx context.Context, eventID uuid.UUID) (*Totals, error) {
	rows, err := s.repo.ListAll(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transactions for totals")
	}
	totals := Summarize(eventID, rows)
	return &totals, nil
}

// ensureUnlocked reads the lock right before a mutation; a locked event is refused, not retried.
func (s *service) ensureUnlocked(ctx context.Context, eventID uuid.UUID, operation string) error {
	locked, err := s.locks.IsLocked(ctx, eventID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read event lock")
	}
	if locked {
		s.metrics.IncLockRefusal(operation)
		return events.ErrEventLocked
	}
	return nil
}

func (s *service) load(ctx context.Context, eventID, id uuid.UUID) (*models.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, eventID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func optionalText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
