package catalog

import (
	"context"

	"github.com/ecom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRepository defines the persistence contract for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PriceRange bounds a product browse query. Either side may be nil.
type PriceRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// BrowseQuery captures the storefront filter form: category checkboxes
// plus an optional price range. Zero value means no filtering.
type BrowseQuery struct {
	CategoryIDs []uuid.UUID
	Price       PriceRange
}

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]Product, error)
	FindRelated(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]Product, error)
	Search(ctx context.Context, keyword string, filter shared.Filter) ([]Product, error)
	Browse(ctx context.Context, query BrowseQuery, filter shared.Filter) ([]Product, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
