package trade

import (
	"context"

	"github.com/ecom/backend/internal/domain/payment"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/ecom/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order queries, fulfillment transitions, and
// buyer-initiated cancellation
type OrderService struct {
	orderRepo     trade.OrderRepository
	checkoutStore trade.CheckoutStore
	gateway       payment.Gateway
	metrics       *telemetry.StoreMetrics
	logger        *zap.Logger
}

// NewOrderService creates a new OrderService. Metrics are optional.
func NewOrderService(
	orderRepo trade.OrderRepository,
	checkoutStore trade.CheckoutStore,
	gateway payment.Gateway,
	metrics *telemetry.StoreMetrics,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		checkoutStore: checkoutStore,
		gateway:       gateway,
		metrics:       metrics,
		logger:        logger,
	}
}

// ListByBuyer returns the buyer's own orders, newest first
func (s *OrderService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[OrderInfo], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}

	orders, err := s.orderRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	result := shared.NewPaginated(toOrderInfos(orders), total, page, filter.Limit())
	return &result, nil
}

// Get returns a single order. Buyers may only see their own orders;
// admins may see any.
func (s *OrderService) Get(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*OrderInfo, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.BuyerID != requesterID {
		return nil, shared.NewDomainError("FORBIDDEN", "You do not have access to this order")
	}

	info := toOrderInfo(order)
	return &info, nil
}

// ListAll returns all orders for the admin panel, optionally filtered by status
func (s *OrderService) ListAll(ctx context.Context, status string, filter shared.Filter) (*shared.Paginated[OrderInfo], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	if status != "" {
		if !trade.OrderStatus(status).IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
		}
		if filter.Filters == nil {
			filter.Filters = make(map[string]interface{})
		}
		filter.Filters["status"] = status
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	result := shared.NewPaginated(toOrderInfos(orders), total, page, filter.Limit())
	return &result, nil
}

// UpdateStatus advances an order through the fulfillment state machine.
// Cancelling through here restocks the line items like a buyer cancellation.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, target string) (*OrderInfo, error) {
	status := trade.OrderStatus(target)
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == trade.OrderStatusCancelled {
		return s.cancel(ctx, order, "cancelled by store")
	}

	if err := order.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, order.Status)
	s.logger.Info("Order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status.String()))

	info := toOrderInfo(order)
	return &info, nil
}

// Cancel cancels the buyer's own order while it is still cancellable
func (s *OrderService) Cancel(ctx context.Context, id, buyerID uuid.UUID, reason string) (*OrderInfo, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, shared.NewDomainError("FORBIDDEN", "You do not have access to this order")
	}

	return s.cancel(ctx, order, reason)
}

// cancel transitions the order, restocks its lines in one transaction, and
// refunds the capture when one exists. Refund failures are logged for manual
// follow-up and do not undo the cancellation.
func (s *OrderService) cancel(ctx context.Context, order *trade.Order, reason string) (*OrderInfo, error) {
	if err := order.Cancel(reason); err != nil {
		return nil, err
	}

	increments := make(map[uuid.UUID]int, len(order.Items))
	for _, item := range order.Items {
		increments[item.ProductID] = item.Quantity
	}
	if err := s.checkoutStore.RestockOrder(ctx, order, increments); err != nil {
		return nil, err
	}

	if order.PaymentRef != "" {
		_, err := s.gateway.Refund(ctx, &payment.RefundRequest{
			TransactionID: order.PaymentRef,
			Amount:        order.TotalAmount,
			Reason:        "order cancelled",
		})
		if err != nil {
			s.logger.Error("Refund for cancelled order did not go through",
				zap.String("order_number", order.OrderNumber),
				zap.String("payment_ref", order.PaymentRef),
				zap.Error(err))
		}
	}

	s.recordTransition(ctx, order.Status)
	s.logger.Info("Order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", order.CancelReason))

	info := toOrderInfo(order)
	return &info, nil
}

func (s *OrderService) recordTransition(ctx context.Context, status trade.OrderStatus) {
	if s.metrics != nil {
		s.metrics.RecordOrderTransition(ctx, status.String())
	}
}
