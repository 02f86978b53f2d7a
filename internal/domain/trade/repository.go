package trade

import (
	"context"

	"github.com/ecom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CheckoutStore persists an order together with its stock movements in a
// single transaction. Quantities are keyed by product ID.
type CheckoutStore interface {
	// PlaceOrder saves the order and decrements stock for each item.
	// Returns shared.ErrInsufficientStock if any product cannot cover
	// its quantity.
	PlaceOrder(ctx context.Context, order *Order, decrements map[uuid.UUID]int) error

	// RestockOrder saves the order and returns stock for each item,
	// used when an order is cancelled.
	RestockOrder(ctx context.Context, order *Order, increments map[uuid.UUID]int) error
}

// OrderRepository defines the persistence contract for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)
	CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
