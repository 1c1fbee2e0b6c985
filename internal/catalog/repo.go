package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
)

// Repository persists an event's product types, products and promos. Every
// query is scoped by event id.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
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

func listOrdered[T any](ctx context.Context, db *gorm.DB, eventID uuid.UUID) ([]T, error) {
	var rows []T
	err := db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("display_order ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func findScoped[T any](ctx context.Context, db *gorm.DB, eventID, id uuid.UUID) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where("event_id = ? AND id = ?", eventID, id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func deleteScoped[T any](ctx context.Context, db *gorm.DB, eventID, id uuid.UUID) error {
	res := db.WithContext(ctx).Where("event_id = ? AND id = ?", eventID, id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func create[T any](ctx context.Context, db *gorm.DB, row *T) error {
	if row == nil {
		return fmt.Errorf("row is required")
	}
	return db.WithContext(ctx).Create(row).Error
}

func save[T any](ctx context.Context, db *gorm.DB, row *T) error {
	if row == nil {
		return fmt.Errorf("row is required")
	}
	return db.WithContext(ctx).Save(row).Error
}

// ListTypes returns the event's product types in display order.
func (r *Repository) ListTypes(ctx context.Context, eventID uuid.UUID) ([]models.ProductType, error) {
	return listOrdered[models.ProductType](ctx, r.db, eventID)
}

// FindType loads one product type.
func (r *Repository) FindType(ctx context.Context, eventID, id uuid.UUID) (*models.ProductType, error) {
	return findScoped[models.ProductType](ctx, r.db, eventID, id)
}

// CreateType persists a product type.
func (r *Repository) CreateType(ctx context.Context, row *models.ProductType) error {
	return create(ctx, r.db, row)
}

// UpdateType saves a product type.
func (r *Repository) UpdateType(ctx context.Context, row *models.ProductType) error {
	return save(ctx, r.db, row)
}

// DeleteType removes a product type. Products that reference it are kept.
func (r *Repository) DeleteType(ctx context.Context, eventID, id uuid.UUID) error {
	return deleteScoped[models.ProductType](ctx, r.db, eventID, id)
}

// ListProducts returns the event's products in display order.
func (r *Repository) ListProducts(ctx context.Context, eventID uuid.UUID) ([]models.Product, error) {
	return listOrdered[models.Product](ctx, r.db, eventID)
}

// FindProduct loads one product.
func (r *Repository) FindProduct(ctx context.Context, eventID, id uuid.UUID) (*models.Product, error) {
	return findScoped[models.Product](ctx, r.db, eventID, id)
}

// FindProducts loads the products with the given ids; missing ids are skipped.
func (r *Repository) FindProducts(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("event_id = ? AND id IN ?", eventID, ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateProduct persists a product.
func (r *Repository) CreateProduct(ctx context.Context, row *models.Product) error {
	return create(ctx, r.db, row)
}

// UpdateProduct saves a product.
func (r *Repository) UpdateProduct(ctx context.Context, row *models.Product) error {
	return save(ctx, r.db, row)
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, eventID, id uuid.UUID) error {
	return deleteScoped[models.Product](ctx, r.db, eventID, id)
}

// ListPromos returns the event's promos in catalog order.
func (r *Repository) ListPromos(ctx context.Context, eventID uuid.UUID) ([]models.Promo, error) {
	return listOrdered[models.Promo](ctx, r.db, eventID)
}

// FindPromo loads one promo.
func (r *Repository) FindPromo(ctx context.Context, eventID, id uuid.UUID) (*models.Promo, error) {
	return findScoped[models.Promo](ctx, r.db, eventID, id)
}

// CreatePromo persists a promo.
func (r *Repository) CreatePromo(ctx context.Context, row *models.Promo) error {
	return create(ctx, r.db, row)
}

// UpdatePromo saves a promo.
func (r *Repository) UpdatePromo(ctx context.Context, row *models.Promo) error {
	return save(ctx, r.db, row)
}

// DeletePromo removes a promo.
func (r *Repository) DeletePromo(ctx context.Context, eventID, id uuid.UUID) error {
	return deleteScoped[models.Promo](ctx, r.db, eventID, id)
}
