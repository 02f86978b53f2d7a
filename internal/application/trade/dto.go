package trade

import (
	"time"

	"github.com/ecom/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of the checkout cart
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput contains everything needed to price and place an order
type CheckoutInput struct {
	BuyerID      uuid.UUID
	BuyerEmail   string
	Nonce        string // one-time payment method token from the client SDK
	Items        []CartItem
	ShippingAddr string
	ClientIP     string
}

// OrderItemInfo contains one order line returned to clients
type OrderItemInfo struct {
	ProductID   uuid.UUID
	ProductName string
	ProductSlug string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// OrderInfo contains order data returned to clients
type OrderInfo struct {
	ID           uuid.UUID
	OrderNumber  string
	BuyerID      uuid.UUID
	Items        []OrderItemInfo
	TotalAmount  decimal.Decimal
	Status       string
	PaymentRef   string
	ShippingAddr string
	ShippedAt    *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClientTokenInfo carries a gateway client token to the browser SDK
type ClientTokenInfo struct {
	Token     string
	ExpiresAt time.Time
}

func toOrderInfo(o *trade.Order) OrderInfo {
	items := make([]OrderItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSlug: item.ProductSlug,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return OrderInfo{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		BuyerID:      o.BuyerID,
		Items:        items,
		TotalAmount:  o.TotalAmount,
		Status:       o.Status.String(),
		PaymentRef:   o.PaymentRef,
		ShippingAddr: o.ShippingAddr,
		ShippedAt:    o.ShippedAt,
		DeliveredAt:  o.DeliveredAt,
		CancelledAt:  o.CancelledAt,
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toOrderInfos(orders []trade.Order) []OrderInfo {
	infos := make([]OrderInfo, len(orders))
	for i := range orders {
		infos[i] = toOrderInfo(&orders[i])
	}
	return infos
}
