package models

import (
	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name     string `gorm:"type:varchar(60);not null"`
	Slug     string `gorm:"type:varchar(80);not null;uniqueIndex"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Slug = c.Slug
	m.IsActive = c.IsActive
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name             string                `gorm:"type:varchar(160);not null"`
	Slug             string                `gorm:"type:varchar(180);not null;uniqueIndex"`
	Description      string                `gorm:"type:text;not null"`
	Price            decimal.Decimal       `gorm:"type:decimal(12,2);not null;index"`
	CategoryID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	Quantity         int                   `gorm:"not null;default:0"`
	Shipping         bool                  `gorm:"not null;default:false"`
	PhotoKey         string                `gorm:"type:varchar(500)"`
	PhotoContentType string                `gorm:"type:varchar(100)"`
	Status           catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		Price:             valueobject.NewMoneyUSD(m.Price),
		CategoryID:        m.CategoryID,
		Quantity:          m.Quantity,
		Shipping:          m.Shipping,
		PhotoKey:          m.PhotoKey,
		PhotoContentType:  m.PhotoContentType,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.Price = p.Price.Amount()
	m.CategoryID = p.CategoryID
	m.Quantity = p.Quantity
	m.Shipping = p.Shipping
	m.PhotoKey = p.PhotoKey
	m.PhotoContentType = p.PhotoContentType
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
