package catalog

import (
	"strings"

	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"   // Visible on the storefront
	ProductStatusInactive ProductStatus = "inactive" // Hidden, kept for order history
)

// MaxProductNameLength bounds product display names
const MaxProductNameLength = 160

// MaxPhotoSize is the upload limit for product photos
const MaxPhotoSize = 1 << 20 // 1 MiB

// AllowedPhotoTypes lists accepted photo content types
var AllowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Product represents an item for sale.
// Products are addressed publicly by slug. The photo itself lives in object
// storage; only the object key and content type are kept here.
type Product struct {
	shared.BaseAggregateRoot
	Name             string
	Slug             string
	Description      string
	Price            valueobject.Money
	CategoryID       uuid.UUID
	Quantity         int
	Shipping         bool
	PhotoKey         string
	PhotoContentType string
	Status           ProductStatus
}

// NewProduct creates a new active product with a derived slug
func NewProduct(name, description string, price valueobject.Money, categoryID uuid.UUID, quantity int, shipping bool) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY_ID", "Category ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Product quantity cannot be negative")
	}

	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name must contain at least one letter or digit")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Description:       strings.TrimSpace(description),
		Price:             price,
		CategoryID:        categoryID,
		Quantity:          quantity,
		Shipping:          shipping,
		Status:            ProductStatusActive,
	}, nil
}

// Rename updates the product name and re-derives the slug
func (p *Product) Rename(name string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name must contain at least one letter or digit")
	}

	p.Name = name
	p.Slug = slug
	p.touch()
	return nil
}

// SetDescription updates the product description
func (p *Product) SetDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot be empty")
	}
	p.Description = strings.TrimSpace(description)
	p.touch()
	return nil
}

// SetPrice updates the selling price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Price = price
	p.touch()
	return nil
}

// SetCategory moves the product to another category
func (p *Product) SetCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY_ID", "Category ID cannot be empty")
	}
	p.CategoryID = categoryID
	p.touch()
	return nil
}

// SetQuantity replaces the stock level
func (p *Product) SetQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Product quantity cannot be negative")
	}
	p.Quantity = quantity
	p.touch()
	return nil
}

// SetShipping toggles whether the product requires shipping
func (p *Product) SetShipping(shipping bool) {
	p.Shipping = shipping
	p.touch()
}

// AttachPhoto records the stored photo's object key and content type
func (p *Product) AttachPhoto(key, contentType string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_PHOTO", "Photo object key cannot be empty")
	}
	if !AllowedPhotoTypes[contentType] {
		return shared.NewDomainError("INVALID_PHOTO", "Photo must be JPEG, PNG, or WebP")
	}
	p.PhotoKey = key
	p.PhotoContentType = contentType
	p.touch()
	return nil
}

// HasPhoto returns true if a photo has been attached
func (p *Product) HasPhoto() bool {
	return p.PhotoKey != ""
}

// Reserve decrements stock for an order.
// Returns ErrInsufficientStock when the requested quantity is not available.
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserved quantity must be positive")
	}
	if p.Status != ProductStatusActive {
		return shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available for sale")
	}
	if p.Quantity < quantity {
		return shared.ErrInsufficientStock
	}
	p.Quantity -= quantity
	p.touch()
	return nil
}

// Restock returns stock from a cancelled order
func (p *Product) Restock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restocked quantity must be positive")
	}
	p.Quantity += quantity
	p.touch()
	return nil
}

// Activate makes the product visible on the storefront
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.touch()
	return nil
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.touch()
	return nil
}

// IsActive returns true if the product is visible on the storefront
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// InStock returns true if at least one unit is available
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

func (p *Product) touch() {
	p.Touch()
	p.IncrementVersion()
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > MaxProductNameLength {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 160 characters")
	}
	return nil
}
