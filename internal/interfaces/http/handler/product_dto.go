package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecom/backend/internal/application/catalog"
)

// ProductResponse is the wire representation of a product
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id"`
	Quantity    int             `json:"quantity"`
	Shipping    bool            `json:"shipping"`
	HasPhoto    bool            `json:"has_photo"`
	InStock     bool            `json:"in_stock"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toProductResponse(info *catalog.ProductInfo) ProductResponse {
	return ProductResponse{
		ID:          info.ID.String(),
		Name:        info.Name,
		Slug:        info.Slug,
		Description: info.Description,
		Price:       info.Price,
		CategoryID:  info.CategoryID.String(),
		Quantity:    info.Quantity,
		Shipping:    info.Shipping,
		HasPhoto:    info.HasPhoto,
		InStock:     info.InStock,
		Status:      info.Status,
		CreatedAt:   info.CreatedAt,
		UpdatedAt:   info.UpdatedAt,
	}
}

func toProductResponses(infos []catalog.ProductInfo) []ProductResponse {
	products := make([]ProductResponse, 0, len(infos))
	for i := range infos {
		products = append(products, toProductResponse(&infos[i]))
	}
	return products
}

// CategoryProductsResponse pairs a category with its products
type CategoryProductsResponse struct {
	Category CategoryResponse  `json:"category"`
	Products []ProductResponse `json:"products"`
}

// PriceRangeRequest bounds a browse query by price. Values are decimal
// strings; either bound may be omitted.
type PriceRangeRequest struct {
	Min *decimal.Decimal `json:"min"`
	Max *decimal.Decimal `json:"max"`
}

// BrowseRequest is the request body for POST /product/filters
type BrowseRequest struct {
	Categories []uuid.UUID        `json:"categories"`
	PriceRange *PriceRangeRequest `json:"price_range"`
}

func (r *BrowseRequest) toInput() catalog.BrowseInput {
	input := catalog.BrowseInput{CategoryIDs: r.Categories}
	if r.PriceRange != nil {
		input.PriceMin = r.PriceRange.Min
		input.PriceMax = r.PriceRange.Max
	}
	return input
}
