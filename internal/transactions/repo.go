package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	"github.com/angelmondragon/eventpos-backend/pkg/pagination"
)

// Repository persists finalized sales and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to transaction operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

type listQuery struct {
	eventID uuid.UUID
	limit   int
	cursor  *pagination.Cursor
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

// Create inserts the transaction together with its items.
func (r *Repository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindByID loads a transaction of the event with its items.
func (r *Repository) FindByID(ctx context.Context, eventID, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := withItems(r.db.WithContext(ctx)).
		Where("id = ? AND event_id = ?", id, eventID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// List returns up to q.limit transactions, newest first, after the cursor.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Transaction, error) {
	query := withItems(r.db.WithContext(ctx)).Where("event_id = ?", q.eventID)
	if q.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			q.cursor.CreatedAt, q.cursor.CreatedAt, q.cursor.ID)
	}

	var rows []models.Transaction
	if err := query.Order("created_at DESC, id DESC").Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every transaction of the event, oldest first, for reporting.
func (r *Repository) ListAll(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := withItems(r.db.WithContext(ctx)).
		Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateDetails writes the editable columns; amounts and items are immutable.
func (r *Repository) UpdateDetails(ctx context.Context, txn *models.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND event_id = ?", txn.ID, txn.EventID).
		Updates(map[string]any{
			"email":          txn.Email,
			"payment_method": txn.PaymentMethod,
			"note":           txn.Note,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the transaction and its items.
func (r *Repository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND event_id = ?", id, eventID).Delete(&models.Transaction{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("transaction_id = ?", id).Delete(&models.TransactionItem{}).Error
	})
}
