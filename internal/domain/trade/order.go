package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment status of a customer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // Placed, payment not yet captured
	OrderStatusProcessing OrderStatus = "processing" // Paid, being prepared
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderItem represents a line item in an order.
// Name and unit price are snapshots taken at order time; later product
// edits must not change past orders.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	ProductSlug string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal // Quantity * UnitPrice
	CreatedAt   time.Time
}

// NewOrderItem creates a new order line item
func NewOrderItem(orderID, productID uuid.UUID, productName, productSlug string, quantity int, unitPrice valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	price := unitPrice.Amount()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductSlug: productSlug,
		Quantity:    quantity,
		UnitPrice:   price,
		Amount:      price.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:   time.Now(),
	}, nil
}

// GetUnitPriceMoney returns the unit price as a Money value object
func (i *OrderItem) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}

// GetAmountMoney returns the line amount as a Money value object
func (i *OrderItem) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.Amount)
}

// Order represents a customer order aggregate root.
// The total is always recomputed from the line items, never taken from input.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string
	BuyerID      uuid.UUID
	Items        []OrderItem
	TotalAmount  decimal.Decimal
	Status       OrderStatus
	PaymentRef   string // gateway transaction ID, empty while pending
	ShippingAddr string
	ShippedAt    *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewOrder creates a new pending order for a buyer
func NewOrder(orderNumber string, buyerID uuid.UUID, shippingAddr string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		BuyerID:           buyerID,
		Items:             make([]OrderItem, 0),
		TotalAmount:       decimal.Zero,
		Status:            OrderStatusPending,
		ShippingAddr:      strings.TrimSpace(shippingAddr),
	}, nil
}

// AddItem adds a line item. Only allowed while the order is pending.
func (o *Order) AddItem(productID uuid.UUID, productName, productSlug string, quantity int, unitPrice valueobject.Money) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a placed order")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already in order")
		}
	}

	item, err := NewOrderItem(o.ID, productID, productName, productSlug, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.Touch()
	return item, nil
}

// GetTotalMoney returns the order total as a Money value object
func (o *Order) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.TotalAmount)
}

// MarkPaid records a captured payment and moves the order to processing
func (o *Order) MarkPaid(paymentRef string) error {
	if paymentRef == "" {
		return shared.NewDomainError("INVALID_PAYMENT_REF", "Payment reference cannot be empty")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot pay for an order without items")
	}
	if err := o.transitionTo(OrderStatusProcessing); err != nil {
		return err
	}
	o.PaymentRef = paymentRef
	return nil
}

// Ship marks the order as shipped
func (o *Order) Ship() error {
	if err := o.transitionTo(OrderStatusShipped); err != nil {
		return err
	}
	now := time.Now()
	o.ShippedAt = &now
	return nil
}

// Deliver marks the order as delivered
func (o *Order) Deliver() error {
	if err := o.transitionTo(OrderStatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	return nil
}

// Cancel cancels the order. Allowed from pending and processing only.
func (o *Order) Cancel(reason string) error {
	if err := o.transitionTo(OrderStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = strings.TrimSpace(reason)
	return nil
}

// TransitionTo moves the order to the target status through the state machine
func (o *Order) TransitionTo(target OrderStatus) error {
	switch target {
	case OrderStatusShipped:
		return o.Ship()
	case OrderStatusDelivered:
		return o.Deliver()
	case OrderStatusCancelled:
		return o.Cancel("")
	case OrderStatusProcessing:
		return o.transitionTo(OrderStatusProcessing)
	default:
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition to %s", target))
	}
}

// CanCancel returns true while cancellation is still allowed
func (o *Order) CanCancel() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}

// ItemCount returns the total number of units across all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o *Order) transitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.Touch()
	o.IncrementVersion()
	return nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

// NewOrderNumber generates a human-readable order number.
// Format: ORD-YYYYMMDD-XXXXXX where the suffix comes from a random UUID.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
