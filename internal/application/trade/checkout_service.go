package trade

import (
	"context"
	"errors"
	"time"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/payment"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/ecom/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxCartLines bounds a single checkout request
const MaxCartLines = 50

// CheckoutService prices the cart, charges the gateway, and places the order.
// The cart is always repriced from the database; client-side prices are
// never trusted.
type CheckoutService struct {
	gateway       payment.Gateway
	productRepo   catalog.ProductRepository
	checkoutStore trade.CheckoutStore
	metrics       *telemetry.StoreMetrics
	logger        *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. Metrics are optional.
func NewCheckoutService(
	gateway payment.Gateway,
	productRepo catalog.ProductRepository,
	checkoutStore trade.CheckoutStore,
	metrics *telemetry.StoreMetrics,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		gateway:       gateway,
		productRepo:   productRepo,
		checkoutStore: checkoutStore,
		metrics:       metrics,
		logger:        logger,
	}
}

// ClientToken requests a short-lived tokenization token for the browser SDK
func (s *CheckoutService) ClientToken(ctx context.Context) (*ClientTokenInfo, error) {
	token, err := s.gateway.GenerateClientToken(ctx)
	if err != nil {
		s.logger.Error("Failed to generate client token", zap.Error(err))
		return nil, mapGatewayError(err)
	}
	return &ClientTokenInfo{Token: token.Token, ExpiresAt: token.ExpiresAt}, nil
}

// Checkout reprices the cart, captures the payment, and writes the order and
// its stock decrements in one transaction. No order row is written when the
// gateway declines or is unreachable.
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*OrderInfo, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "Checkout")
	defer span.End()
	started := time.Now()

	if input.Nonce == "" {
		return nil, shared.NewDomainError("INVALID_NONCE", "Payment method nonce is required")
	}
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart cannot be empty")
	}
	if len(input.Items) > MaxCartLines {
		return nil, shared.NewDomainError("CART_TOO_LARGE", "Cart has too many lines")
	}

	order, err := trade.NewOrder(trade.NewOrderNumber(time.Now()), input.BuyerID, input.ShippingAddr)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderNumber, order.OrderNumber)
	telemetry.SetAttribute(span, telemetry.SpanAttrBuyerID, input.BuyerID.String())

	decrements := make(map[uuid.UUID]int, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
		}

		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "A product in the cart no longer exists")
			}
			return nil, err
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("PRODUCT_INACTIVE", "A product in the cart is no longer for sale")
		}
		if product.Quantity < line.Quantity {
			return nil, shared.ErrInsufficientStock
		}

		if _, err := order.AddItem(product.ID, product.Name, product.Slug, line.Quantity, product.Price); err != nil {
			return nil, err
		}
		decrements[product.ID] = line.Quantity
	}

	tx, err := s.gateway.Sale(ctx, &payment.SaleRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Nonce:       input.Nonce,
		Amount:      order.TotalAmount,
		Currency:    string(order.GetTotalMoney().Currency()),
		BuyerEmail:  input.BuyerEmail,
		ClientIP:    input.ClientIP,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordPayment(ctx, paymentResult(err))
		s.logger.Warn("Payment failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("buyer_id", input.BuyerID.String()),
			zap.Error(err))
		return nil, mapGatewayError(err)
	}
	s.recordPayment(ctx, "captured")
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentRef, tx.ID)

	// Captured payments move the order to processing; an authorize-only
	// gateway response leaves it pending with the reference recorded.
	if tx.Status == payment.TransactionStatusCaptured {
		if err := order.MarkPaid(tx.ID); err != nil {
			return nil, err
		}
	} else {
		order.PaymentRef = tx.ID
	}

	if err := s.checkoutStore.PlaceOrder(ctx, order, decrements); err != nil {
		telemetry.RecordError(span, err)
		s.refundAfterFailure(ctx, order, tx)
		if errors.Is(err, shared.ErrInsufficientStock) {
			return nil, shared.ErrInsufficientStock
		}
		s.logger.Error("Failed to persist order after capture",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_ref", tx.ID),
			zap.Error(err))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx)
		s.metrics.RecordCheckoutDuration(ctx, time.Since(started))
	}
	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("buyer_id", input.BuyerID.String()),
		zap.String("payment_ref", tx.ID),
		zap.String("total", order.TotalAmount.String()))

	info := toOrderInfo(order)
	return &info, nil
}

// refundAfterFailure reverses a capture whose order could not be written.
// The refund is best effort; failures are logged for manual follow-up.
func (s *CheckoutService) refundAfterFailure(ctx context.Context, order *trade.Order, tx *payment.Transaction) {
	if tx == nil || tx.ID == "" {
		return
	}
	_, err := s.gateway.Refund(ctx, &payment.RefundRequest{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Reason:        "order placement failed",
	})
	if err != nil {
		s.logger.Error("Refund after failed order placement did not go through",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_ref", tx.ID),
			zap.Error(err))
	}
}

func (s *CheckoutService) recordPayment(ctx context.Context, result string) {
	if s.metrics != nil {
		s.metrics.RecordPaymentAttempt(ctx, result)
	}
}

func paymentResult(err error) string {
	if errors.Is(err, payment.ErrPaymentDeclined) {
		return "declined"
	}
	return "error"
}

// mapGatewayError translates gateway errors into domain error codes
func mapGatewayError(err error) error {
	switch {
	case errors.Is(err, payment.ErrPaymentDeclined):
		return shared.NewDomainError("PAYMENT_DECLINED", "Payment was declined")
	case errors.Is(err, payment.ErrInvalidNonce):
		return shared.NewDomainError("INVALID_NONCE", "Payment method nonce is invalid or expired")
	case errors.Is(err, payment.ErrInvalidAmount):
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount is invalid")
	case errors.Is(err, payment.ErrGatewayUnavailable),
		errors.Is(err, payment.ErrGatewayInvalidResponse),
		errors.Is(err, payment.ErrGatewayNotConfigured):
		return shared.NewDomainError("GATEWAY_UNAVAILABLE", "Payment service is temporarily unavailable")
	default:
		return shared.NewDomainError("GATEWAY_UNAVAILABLE", "Payment service is temporarily unavailable")
	}
}
