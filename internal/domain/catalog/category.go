package catalog

import (
	"strings"

	"github.com/ecom/backend/internal/domain/shared"
)

// MaxCategoryNameLength bounds category display names
const MaxCategoryNameLength = 60

// Category represents a product category.
// Categories are addressed publicly by slug, derived from the name.
type Category struct {
	shared.BaseAggregateRoot
	Name     string
	Slug     string
	IsActive bool
}

// NewCategory creates a new active category with a derived slug
func NewCategory(name string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name must contain at least one letter or digit")
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		IsActive:          true,
	}, nil
}

// Rename updates the category name and re-derives the slug
func (c *Category) Rename(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name must contain at least one letter or digit")
	}

	c.Name = name
	c.Slug = slug
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Activate makes the category visible to the storefront
func (c *Category) Activate() {
	if c.IsActive {
		return
	}
	c.IsActive = true
	c.Touch()
	c.IncrementVersion()
}

// Deactivate hides the category from the storefront
func (c *Category) Deactivate() {
	if !c.IsActive {
		return
	}
	c.IsActive = false
	c.Touch()
	c.IncrementVersion()
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}
	if len(name) > MaxCategoryNameLength {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot exceed 60 characters")
	}
	return nil
}
