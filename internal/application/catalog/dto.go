package catalog

import (
	"time"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryInput contains the input for category creation
type CreateCategoryInput struct {
	Name string
}

// UpdateCategoryInput contains the input for category rename
type UpdateCategoryInput struct {
	Name string
}

// CategoryInfo contains category data returned to clients
type CategoryInfo struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PhotoUpload carries an uploaded product photo
type PhotoUpload struct {
	Data        []byte
	ContentType string
}

// CreateProductInput contains the input for product creation
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	Quantity    int
	Shipping    bool
	Photo       *PhotoUpload // optional
}

// UpdateProductInput contains the input for product updates.
// Nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *uuid.UUID
	Quantity    *int
	Shipping    *bool
	Photo       *PhotoUpload
}

// ProductInfo contains product data returned to clients.
// The photo itself is never inlined; clients fetch it through the
// presigned-URL endpoint.
type ProductInfo struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	Quantity    int
	Shipping    bool
	HasPhoto    bool
	InStock     bool
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListProductsInput contains storefront pagination parameters
type ListProductsInput struct {
	Page     int
	PageSize int
}

// BrowseInput contains the storefront filter form: category checkboxes
// plus an optional price range. All fields optional, conditions ANDed.
type BrowseInput struct {
	CategoryIDs []uuid.UUID
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
}

// CategoryProductsResult pairs a category with its active products
type CategoryProductsResult struct {
	Category CategoryInfo
	Products []ProductInfo
}

func toCategoryInfo(c *catalog.Category) CategoryInfo {
	return CategoryInfo{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toProductInfo(p *catalog.Product) ProductInfo {
	return ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.Amount(),
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
		Shipping:    p.Shipping,
		HasPhoto:    p.HasPhoto(),
		InStock:     p.InStock(),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductInfos(products []catalog.Product) []ProductInfo {
	infos := make([]ProductInfo, len(products))
	for i := range products {
		infos[i] = toProductInfo(&products[i])
	}
	return infos
}
