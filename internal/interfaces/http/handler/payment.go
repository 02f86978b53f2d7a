package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecom/backend/internal/application/trade"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
)

// CheckoutItemRequest is one cart line in a checkout request
type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest is the request body for POST /payment/checkout
type CheckoutRequest struct {
	Nonce           string                `json:"nonce" binding:"required"`
	Items           []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string                `json:"shipping_address" binding:"required,max=255"`
}

// ClientTokenResponse carries a gateway client token for the browser SDK
type ClientTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PaymentHandler serves payment routes
type PaymentHandler struct {
	BaseHandler
	checkoutService *trade.CheckoutService
	logger          *zap.Logger
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(checkoutService *trade.CheckoutService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers payment routes under the API group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payment")
	{
		payments.GET("/token", h.ClientToken)
		payments.POST("/checkout", h.Checkout)
	}
}

// ClientToken handles GET /payment/token
func (h *PaymentHandler) ClientToken(c *gin.Context) {
	info, err := h.checkoutService.ClientToken(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ClientTokenResponse{
		Token:     info.Token,
		ExpiresAt: info.ExpiresAt,
	})
}

// Checkout handles POST /payment/checkout. The cart is repriced from the
// catalog and charged in a single sale transaction.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	items := make([]trade.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = trade.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	buyerEmail := ""
	if claims, ok := middleware.GetJWTClaims(c); ok {
		buyerEmail = claims.Email
	}

	info, err := h.checkoutService.Checkout(c.Request.Context(), trade.CheckoutInput{
		BuyerID:      buyerID,
		BuyerEmail:   buyerEmail,
		Nonce:        req.Nonce,
		Items:        items,
		ShippingAddr: req.ShippingAddress,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toOrderResponse(info)
	h.Created(c, resp)
}
