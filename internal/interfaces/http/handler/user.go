package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecom/backend/internal/application/identity"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/interfaces/http/dto"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
)

// UserHandler serves admin account management routes
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a UserHandler
func NewUserHandler(userService *identity.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers user management routes under the API group.
// Every route requires the admin role.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/user", middleware.RequireAdmin())
	{
		users.GET("", h.List)
		users.GET("/:id", h.Get)
		users.PUT("/:id/promote", h.Promote)
		users.PUT("/:id/deactivate", h.Deactivate)
		users.PUT("/:id/unlock", h.Unlock)
	}
}

// List handles GET /user
func (h *UserHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	users := make([]UserResponse, 0, len(result.Items))
	for i := range result.Items {
		users = append(users, toUserResponse(&result.Items[i]))
	}
	h.SuccessWithMeta(c, users, result.Total, result.Page, result.PageSize)
}

// Get handles GET /user/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	info, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toUserResponse(info)
	h.Success(c, resp)
}

// Promote handles PUT /user/:id/promote
func (h *UserHandler) Promote(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	info, err := h.userService.PromoteToAdmin(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toUserResponse(info)
	h.Success(c, resp)
}

// Deactivate handles PUT /user/:id/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.DeactivateUser(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "user deactivated"})
}

// Unlock handles PUT /user/:id/unlock
func (h *UserHandler) Unlock(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.UnlockUser(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "user unlocked"})
}
