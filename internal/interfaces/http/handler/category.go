package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecom/backend/internal/application/catalog"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
)

// CategoryRequest is the request body for creating or renaming a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=60"`
}

// CategoryResponse is the wire representation of a category
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCategoryResponse(info *catalog.CategoryInfo) CategoryResponse {
	return CategoryResponse{
		ID:        info.ID.String(),
		Name:      info.Name,
		Slug:      info.Slug,
		IsActive:  info.IsActive,
		CreatedAt: info.CreatedAt,
		UpdatedAt: info.UpdatedAt,
	}
}

// CategoryHandler serves category routes
type CategoryHandler struct {
	BaseHandler
	categoryService *catalog.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a CategoryHandler
func NewCategoryHandler(categoryService *catalog.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers category routes under the API group. Reads
// are public; writes require the admin role.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/category")
	{
		categories.GET("", h.List)
		categories.GET("/:slug", h.GetBySlug)

		categories.POST("", middleware.RequireAdmin(), h.Create)
		categories.PUT("/:slug", middleware.RequireAdmin(), h.Update)
		categories.DELETE("/:slug", middleware.RequireAdmin(), h.Delete)
	}
}

// Create handles POST /category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	info, err := h.categoryService.Create(c.Request.Context(), catalog.CreateCategoryInput{
		Name: req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toCategoryResponse(info)
	h.Created(c, resp)
}

// Update handles PUT /category/:slug. The path parameter is the category
// ID; renaming changes the slug, so the ID is the stable handle.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "slug")
	if err != nil {
		h.BadRequest(c, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	info, err := h.categoryService.Update(c.Request.Context(), id, catalog.UpdateCategoryInput{
		Name: req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toCategoryResponse(info)
	h.Success(c, resp)
}

// Delete handles DELETE /category/:slug. Deletion is refused while
// products still reference the category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "slug")
	if err != nil {
		h.BadRequest(c, "invalid category id")
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "category deleted"})
}

// List handles GET /category
func (h *CategoryHandler) List(c *gin.Context) {
	infos, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	categories := make([]CategoryResponse, 0, len(infos))
	for i := range infos {
		categories = append(categories, toCategoryResponse(&infos[i]))
	}
	h.Success(c, categories)
}

// GetBySlug handles GET /category/:slug
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	info, err := h.categoryService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toCategoryResponse(info)
	h.Success(c, resp)
}
