package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecom/backend/internal/application/trade"
	"github.com/ecom/backend/internal/interfaces/http/dto"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
)

// OrderItemResponse is the wire representation of one order line
type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse is the wire representation of an order
type OrderResponse struct {
	ID           string              `json:"id"`
	OrderNumber  string              `json:"order_number"`
	BuyerID      string              `json:"buyer_id"`
	Items        []OrderItemResponse `json:"items"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Status       string              `json:"status"`
	PaymentRef   string              `json:"payment_ref,omitempty"`
	ShippingAddr string              `json:"shipping_address"`
	ShippedAt    *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt  *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// UpdateOrderStatusRequest is the request body for admin status updates
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelOrderRequest is the request body for buyer cancellation
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

func toOrderResponse(info *trade.OrderInfo) OrderResponse {
	items := make([]OrderItemResponse, len(info.Items))
	for i, item := range info.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			ProductSlug: item.ProductSlug,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return OrderResponse{
		ID:           info.ID.String(),
		OrderNumber:  info.OrderNumber,
		BuyerID:      info.BuyerID.String(),
		Items:        items,
		TotalAmount:  info.TotalAmount,
		Status:       info.Status,
		PaymentRef:   info.PaymentRef,
		ShippingAddr: info.ShippingAddr,
		ShippedAt:    info.ShippedAt,
		DeliveredAt:  info.DeliveredAt,
		CancelledAt:  info.CancelledAt,
		CancelReason: info.CancelReason,
		CreatedAt:    info.CreatedAt,
		UpdatedAt:    info.UpdatedAt,
	}
}

func toOrderResponses(infos []trade.OrderInfo) []OrderResponse {
	orders := make([]OrderResponse, 0, len(infos))
	for i := range infos {
		orders = append(orders, toOrderResponse(&infos[i]))
	}
	return orders
}

// OrderHandler serves order routes
type OrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(orderService *trade.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers order routes under the API group. All routes
// require authentication; /all and status updates require admin.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/order")
	{
		orders.GET("", h.ListMine)
		orders.GET("/all", middleware.RequireAdmin(), h.ListAll)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id/status", middleware.RequireAdmin(), h.UpdateStatus)
		orders.PUT("/:id/cancel", h.Cancel)
	}
}

// ListMine handles GET /order, the buyer's own order history
func (h *OrderHandler) ListMine(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.orderService.ListByBuyer(c.Request.Context(), buyerID,
		sharedFilter(req.Page, req.PageSize, req.Search))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toOrderResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// ListAll handles GET /order/all with an optional status filter
func (h *OrderHandler) ListAll(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.orderService.ListAll(c.Request.Context(), c.Query("status"),
		sharedFilter(req.Page, req.PageSize, req.Search))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toOrderResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// Get handles GET /order/:id. Buyers see only their own orders.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	info, err := h.orderService.Get(c.Request.Context(), id, requesterID, isAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toOrderResponse(info)
	h.Success(c, resp)
}

// UpdateStatus handles PUT /order/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	info, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toOrderResponse(info)
	h.Success(c, resp)
}

// Cancel handles PUT /order/:id/cancel, buyer-initiated cancellation
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "cancelled by buyer"
	}

	info, err := h.orderService.Cancel(c.Request.Context(), id, buyerID, reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toOrderResponse(info)
	h.Success(c, resp)
}
