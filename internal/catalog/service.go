package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/internal/pricing"
	"github.com/angelmondragon/eventpos-backend/internal/promotions"
	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/eventpos-backend/pkg/db/types"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
)

type catalogRepository interface {
	ListTypes(ctx context.Context, eventID uuid.UUID) ([]models.ProductType, error)
	FindType(ctx context.Context, eventID, id uuid.UUID) (*models.ProductType, error)
	CreateType(ctx context.Context, row *models.ProductType) error
	UpdateType(ctx context.Context, row *models.ProductType) error
	DeleteType(ctx context.Context, eventID, id uuid.UUID) error

	ListProducts(ctx context.Context, eventID uuid.UUID) ([]models.Product, error)
	FindProduct(ctx context.Context, eventID, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, row *models.Product) error
	UpdateProduct(ctx context.Context, row *models.Product) error
	DeleteProduct(ctx context.Context, eventID, id uuid.UUID) error

	ListPromos(ctx context.Context, eventID uuid.UUID) ([]models.Promo, error)
	FindPromo(ctx context.Context, eventID, id uuid.UUID) (*models.Promo, error)
	CreatePromo(ctx context.Context, row *models.Promo) error
	UpdatePromo(ctx context.Context, row *models.Promo) error
	DeletePromo(ctx context.Context, eventID, id uuid.UUID) error
}

type eventLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Service manages an event's catalog and assembles it for pricing.
type Service interface {
	ListTypes(ctx context.Context, eventID uuid.UUID) ([]ProductTypeDTO, error)
	CreateType(ctx context.Context, eventID uuid.UUID, input TypeInput) (*ProductTypeDTO, error)
	UpdateType(ctx context.Context, eventID, typeID uuid.UUID, input UpdateTypeInput) (*ProductTypeDTO, error)
	DeleteType(ctx context.Context, eventID, typeID uuid.UUID) error

	ListProducts(ctx context.Context, eventID uuid.UUID) ([]ProductDTO, error)
	CreateProduct(ctx context.Context, eventID uuid.UUID, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, eventID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, eventID, productID uuid.UUID) error

	ListPromos(ctx context.Context, eventID uuid.UUID) ([]PromoDTO, error)
	CreatePromo(ctx context.Context, eventID uuid.UUID, input PromoInput) (*PromoDTO, error)
	UpdatePromo(ctx context.Context, eventID, promoID uuid.UUID, input UpdatePromoInput) (*PromoDTO, error)
	DeletePromo(ctx context.Context, eventID, promoID uuid.UUID) error

	LoadPricingCatalog(ctx context.Context, eventID uuid.UUID) (*PricingCatalog, error)
}

// TypeInput captures a new product type.
type TypeInput struct {
	Name         string
	DisplayOrder int
	Enabled      *bool
}

// UpdateTypeInput holds optional product type changes.
type UpdateTypeInput struct {
	Name         *string
	DisplayOrder *int
	Enabled      *bool
}

// ProductInput captures a new product.
type ProductInput struct {
	TypeID        uuid.UUID
	Name          string
	Price         decimal.Decimal
	PromoEligible bool
	DisplayOrder  int
}

// UpdateProductInput holds optional product changes.
type UpdateProductInput struct {
	TypeID        *uuid.UUID
	Name          *string
	Price         *decimal.Decimal
	PromoEligible *bool
	DisplayOrder  *int
}

// PromoInput captures a new promo; fields outside the mode are ignored.
type PromoInput struct {
	Name                   string
	Mode                   enums.PromoMode
	DisplayOrder           int
	TypeID                 *uuid.UUID
	MaxQuantity            int
	PriceTable             map[int]decimal.Decimal
	IncrementalPrice       *decimal.Decimal
	IncrementalPrice10Plus *decimal.Decimal
	ProductIDs             []uuid.UUID
	ComboPrice             *decimal.Decimal
}

// UpdatePromoInput holds optional promo changes. The merged promo is validated again.
type UpdatePromoInput struct {
	Name                   *string
	DisplayOrder           *int
	TypeID                 *uuid.UUID
	MaxQuantity            *int
	PriceTable             *map[int]decimal.Decimal
	IncrementalPrice       *decimal.Decimal
	IncrementalPrice10Plus *decimal.Decimal
	ProductIDs             *[]uuid.UUID
	ComboPrice             *decimal.Decimal
}

// PricingCatalog is an event's catalog in the shape the pricing engine takes.
type PricingCatalog struct {
	Types    []pricing.ProductType
	Products map[uuid.UUID]pricing.Product
	Promos   promotions.Catalog
}

type service struct {
	repo   catalogRepository
	events eventLoader
}

// NewService builds a catalog service.
func NewService(repo catalogRepository, events eventLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event loader required")
	}
	return &service{repo: repo, events: events}, nil
}

func (s *service) ensureEvent(ctx context.Context, eventID uuid.UUID) error {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return notFoundOr(err, "event not found", "load event")
	}
	return nil
}

func (s *service) ListTypes(ctx context.Context, eventID uuid.UUID) ([]ProductTypeDTO, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTypes(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product types")
	}
	out := make([]ProductTypeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *TypeFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateType(ctx context.Context, eventID uuid.UUID, input TypeInput) (*ProductTypeDTO, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	row := &models.ProductType{EventID: eventID, Name: name, DisplayOrder: input.DisplayOrder, Enabled: true}
	if input.Enabled != nil {
		row.Enabled = *input.Enabled
	}
	if err := s.repo.CreateType(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product type")
	}
	return TypeFromModel(row), nil
}

func (s *service) UpdateType(ctx context.Context, eventID, typeID uuid.UUID, input UpdateTypeInput) (*ProductTypeDTO, error) {
	row, err := s.repo.FindType(ctx, eventID, typeID)
	if err != nil {
		return nil, notFoundOr(err, "product type not found", "load product type")
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		row.Name = name
	}
	if input.DisplayOrder != nil {
		row.DisplayOrder = *input.DisplayOrder
	}
	if input.Enabled != nil {
		row.Enabled = *input.Enabled
	}
	if err := s.repo.UpdateType(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product type")
	}
	return TypeFromModel(row), nil
}

func (s *service) DeleteType(ctx context.Context, eventID, typeID uuid.UUID) error {
	if err := s.repo.DeleteType(ctx, eventID, typeID); err != nil {
		return notFoundOr(err, "product type not found", "delete product type")
	}
	return nil
}

func (s *service) ListProducts(ctx context.Context, eventID uuid.UUID) ([]ProductDTO, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListProducts(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ProductFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateProduct(ctx context.Context, eventID uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if err := s.ensureType(ctx, eventID, input.TypeID); err != nil {
		return nil, err
	}

	row := &models.Product{
		EventID:       eventID,
		TypeID:        input.TypeID,
		Name:          name,
		Price:         input.Price,
		PromoEligible: input.PromoEligible,
		DisplayOrder:  input.DisplayOrder,
	}
	if err := s.repo.CreateProduct(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return ProductFromModel(row), nil
}

func (s *service) UpdateProduct(ctx context.Context, eventID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	row, err := s.repo.FindProduct(ctx, eventID, productID)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		row.Name = name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		row.Price = *input.Price
	}
	if input.TypeID != nil {
		if err := s.ensureType(ctx, eventID, *input.TypeID); err != nil {
			return nil, err
		}
		row.TypeID = *input.TypeID
	}
	if input.PromoEligible != nil {
		row.PromoEligible = *input.PromoEligible
	}
	if input.DisplayOrder != nil {
		row.DisplayOrder = *input.DisplayOrder
	}
	if err := s.repo.UpdateProduct(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return ProductFromModel(row), nil
}

func (s *service) DeleteProduct(ctx context.Context, eventID, productID uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, eventID, productID); err != nil {
		return notFoundOr(err, "product not found", "delete product")
	}
	return nil
}

func (s *service) ListPromos(ctx context.Context, eventID uuid.UUID) ([]PromoDTO, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPromos(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promos")
	}
	out := make([]PromoDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *PromoFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreatePromo(ctx context.Context, eventID uuid.UUID, input PromoInput) (*PromoDTO, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	row := &models.Promo{
		EventID:      eventID,
		Name:         strings.TrimSpace(input.Name),
		Mode:         input.Mode,
		DisplayOrder: input.DisplayOrder,
	}
	switch input.Mode {
	case enums.PromoModeTieredByType:
		row.TypeID = input.TypeID
		row.MaxQuantity = input.MaxQuantity
		row.PriceTable = dbtypes.PriceTable(input.PriceTable)
		row.IncrementalPrice = ptrToNull(input.IncrementalPrice)
		row.IncrementalPrice10Plus = ptrToNull(input.IncrementalPrice10Plus)
	case enums.PromoModeCombo:
		row.ProductIDs = dbtypes.UUIDArray(input.ProductIDs)
		row.ComboPrice = ptrToNull(input.ComboPrice)
	}
	if err := s.validatePromo(ctx, row); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePromo(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promo")
	}
	return PromoFromModel(row), nil
}

func (s *service) UpdatePromo(ctx context.Context, eventID, promoID uuid.UUID, input UpdatePromoInput) (*PromoDTO, error) {
	row, err := s.repo.FindPromo(ctx, eventID, promoID)
	if err != nil {
		return nil, notFoundOr(err, "promo not found", "load promo")
	}
	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.DisplayOrder != nil {
		row.DisplayOrder = *input.DisplayOrder
	}
	if row.Mode == enums.PromoModeTieredByType {
		if input.TypeID != nil {
			row.TypeID = input.TypeID
		}
		if input.MaxQuantity != nil {
			row.MaxQuantity = *input.MaxQuantity
		}
		if input.PriceTable != nil {
			row.PriceTable = dbtypes.PriceTable(*input.PriceTable)
		}
		if input.IncrementalPrice != nil {
			row.IncrementalPrice = ptrToNull(input.IncrementalPrice)
		}
		if input.IncrementalPrice10Plus != nil {
			row.IncrementalPrice10Plus = ptrToNull(input.IncrementalPrice10Plus)
		}
	} else {
		if input.ProductIDs != nil {
			row.ProductIDs = dbtypes.UUIDArray(*input.ProductIDs)
		}
		if input.ComboPrice != nil {
			row.ComboPrice = ptrToNull(input.ComboPrice)
		}
	}
	if err := s.validatePromo(ctx, row); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePromo(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promo")
	}
	return PromoFromModel(row), nil
}

func (s *service) DeletePromo(ctx context.Context, eventID, promoID uuid.UUID) error {
	if err := s.repo.DeletePromo(ctx, eventID, promoID); err != nil {
		return notFoundOr(err, "promo not found", "delete promo")
	}
	return nil
}

// validatePromo runs the configuration rules and checks the referenced type
// and products belong to the event.
func (s *service) validatePromo(ctx context.Context, row *models.Promo) error {
	if row.Mode == enums.PromoModeCombo && !row.ComboPrice.Valid {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid promo").
			WithDetails([]string{"combo_price is required for combo promos"})
	}
	if err := promotions.Validate(ToPromotion(*row)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promo").
			WithDetails(promotions.Violations(err))
	}

	if row.Mode == enums.PromoModeTieredByType {
		return s.ensureType(ctx, row.EventID, *row.TypeID)
	}
	for _, id := range row.ProductIDs {
		if _, err := s.repo.FindProduct(ctx, row.EventID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s does not belong to this event", id))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
	}
	return nil
}

func (s *service) ensureType(ctx context.Context, eventID, typeID uuid.UUID) error {
	if typeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "type_id is required")
	}
	if _, err := s.repo.FindType(ctx, eventID, typeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "product type does not belong to this event")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product type")
	}
	return nil
}

// LoadPricingCatalog returns the event's current types, products and promos
// as engine inputs, each in display order.
func (s *service) LoadPricingCatalog(ctx context.Context, eventID uuid.UUID) (*PricingCatalog, error) {
	types, err := s.repo.ListTypes(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product types")
	}
	products, err := s.repo.ListProducts(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	promos, err := s.repo.ListPromos(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promos")
	}

	out := &PricingCatalog{
		Types:    make([]pricing.ProductType, 0, len(types)),
		Products: make(map[uuid.UUID]pricing.Product, len(products)),
	}
	for _, t := range types {
		out.Types = append(out.Types, ToPricingType(t))
	}
	for _, p := range products {
		out.Products[p.ID] = ToPricingProduct(p)
	}
	converted := make([]promotions.Promo, 0, len(promos))
	for _, p := range promos {
		converted = append(converted, ToPromotion(p))
	}
	out.Promos = promotions.NewCatalog(converted)
	return out, nil
}

func notFoundOr(err error, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
