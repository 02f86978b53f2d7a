package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecom/backend/internal/application/catalog"
	domaincatalog "github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
)

// ProductHandler serves product routes
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a ProductHandler
func NewProductHandler(productService *catalog.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers product routes under the API group. Reads and
// the filter endpoint are public; writes and the full listing require
// the admin role.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/product")
	{
		products.GET("", h.List)
		products.GET("/count", h.Count)
		products.GET("/search/:keyword", h.Search)
		products.GET("/category/:slug", h.ByCategory)
		products.GET("/:slug", h.GetBySlug)
		products.GET("/:slug/photo", h.Photo)
		products.GET("/:slug/related", h.Related)
		products.POST("/filters", h.Browse)

		products.GET("/all", middleware.RequireAdmin(), h.ListAll)
		products.POST("", middleware.RequireAdmin(), h.Create)
		products.PUT("/:slug", middleware.RequireAdmin(), h.Update)
		products.DELETE("/:slug", middleware.RequireAdmin(), h.Delete)
	}
}

// Create handles POST /product. The body is multipart form data with an
// optional photo part.
func (h *ProductHandler) Create(c *gin.Context) {
	input := catalog.CreateProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}

	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		h.BadRequest(c, "invalid price")
		return
	}
	input.Price = price

	categoryID, err := parseUUIDForm(c, "category_id")
	if err != nil {
		h.BadRequest(c, "invalid category_id")
		return
	}
	input.CategoryID = categoryID

	quantity, err := strconv.Atoi(c.DefaultPostForm("quantity", "0"))
	if err != nil || quantity < 0 {
		h.BadRequest(c, "invalid quantity")
		return
	}
	input.Quantity = quantity
	input.Shipping = c.PostForm("shipping") == "true"

	photo, err := h.readPhoto(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	input.Photo = photo

	info, err := h.productService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toProductResponse(info)
	h.Created(c, resp)
}

// Update handles PUT /product/:slug. The path parameter is the product
// ID; form fields that are absent stay unchanged.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "slug")
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	var input catalog.UpdateProductInput

	if name, ok := c.GetPostForm("name"); ok {
		input.Name = &name
	}
	if description, ok := c.GetPostForm("description"); ok {
		input.Description = &description
	}
	if priceStr, ok := c.GetPostForm("price"); ok {
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			h.BadRequest(c, "invalid price")
			return
		}
		input.Price = &price
	}
	if categoryStr, ok := c.GetPostForm("category_id"); ok {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			h.BadRequest(c, "invalid category_id")
			return
		}
		input.CategoryID = &categoryID
	}
	if quantityStr, ok := c.GetPostForm("quantity"); ok {
		quantity, err := strconv.Atoi(quantityStr)
		if err != nil || quantity < 0 {
			h.BadRequest(c, "invalid quantity")
			return
		}
		input.Quantity = &quantity
	}
	if shippingStr, ok := c.GetPostForm("shipping"); ok {
		shipping := shippingStr == "true"
		input.Shipping = &shipping
	}

	photo, err := h.readPhoto(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	input.Photo = photo

	info, err := h.productService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toProductResponse(info)
	h.Success(c, resp)
}

// Delete handles DELETE /product/:slug
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "slug")
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "product deleted"})
}

// GetBySlug handles GET /product/:slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	info, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toProductResponse(info)
	h.Success(c, resp)
}

// Photo handles GET /product/:slug/photo with a redirect to a
// time-limited download URL.
func (h *ProductHandler) Photo(c *gin.Context) {
	url, _, err := h.productService.PhotoURL(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}

// List handles GET /product, the paginated storefront listing
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	result, err := h.productService.List(c.Request.Context(), catalog.ListProductsInput{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toProductResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// ListAll handles GET /product/all, the admin listing including
// inactive products.
func (h *ProductHandler) ListAll(c *gin.Context) {
	var req struct {
		Page     int    `form:"page,default=1"`
		PageSize int    `form:"page_size,default=20"`
		Search   string `form:"search"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.productService.ListAll(c.Request.Context(), sharedFilter(req.Page, req.PageSize, req.Search))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toProductResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// Count handles GET /product/count
func (h *ProductHandler) Count(c *gin.Context) {
	count, err := h.productService.CountActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"count": count})
}

// Search handles GET /product/search/:keyword
func (h *ProductHandler) Search(c *gin.Context) {
	infos, err := h.productService.Search(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponses(infos))
}

// Related handles GET /product/:slug/related
func (h *ProductHandler) Related(c *gin.Context) {
	infos, err := h.productService.Related(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponses(infos))
}

// ByCategory handles GET /product/category/:slug
func (h *ProductHandler) ByCategory(c *gin.Context) {
	result, err := h.productService.ByCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CategoryProductsResponse{
		Category: toCategoryResponse(&result.Category),
		Products: toProductResponses(result.Products),
	})
}

// Browse handles POST /product/filters
func (h *ProductHandler) Browse(c *gin.Context) {
	var req BrowseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	infos, err := h.productService.Browse(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponses(infos))
}

// readPhoto extracts the optional photo part from a multipart request.
// Oversized uploads are rejected before the body is buffered in full.
func (h *ProductHandler) readPhoto(c *gin.Context) (*catalog.PhotoUpload, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	if header.Size > domaincatalog.MaxPhotoSize {
		return nil, shared.NewDomainError("PHOTO_TOO_LARGE", "photo exceeds the maximum size")
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, domaincatalog.MaxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > domaincatalog.MaxPhotoSize {
		return nil, shared.NewDomainError("PHOTO_TOO_LARGE", "photo exceeds the maximum size")
	}

	return &catalog.PhotoUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
