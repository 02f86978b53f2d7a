package persistence

import (
	"context"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/ecom/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCheckoutStore implements trade.CheckoutStore using GORM.
// Stock movements use conditional updates so two concurrent checkouts
// cannot oversell the same product.
type GormCheckoutStore struct {
	db *gorm.DB
}

// NewGormCheckoutStore creates a new GormCheckoutStore
func NewGormCheckoutStore(db *gorm.DB) *GormCheckoutStore {
	return &GormCheckoutStore{db: db}
}

// PlaceOrder saves the order and decrements stock atomically
func (s *GormCheckoutStore) PlaceOrder(ctx context.Context, order *trade.Order, decrements map[uuid.UUID]int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for productID, qty := range decrements {
			if qty < 1 {
				continue
			}
			result := tx.Model(&models.ProductModel{}).
				Where("id = ? AND quantity >= ? AND status = ?", productID, qty, catalog.ProductStatusActive).
				Updates(map[string]interface{}{
					"quantity": gorm.Expr("quantity - ?", qty),
					"version":  gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrInsufficientStock
			}
		}
		return saveOrderTx(tx, order)
	})
}

// RestockOrder saves the order and returns stock atomically
func (s *GormCheckoutStore) RestockOrder(ctx context.Context, order *trade.Order, increments map[uuid.UUID]int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for productID, qty := range increments {
			if qty < 1 {
				continue
			}
			result := tx.Model(&models.ProductModel{}).
				Where("id = ?", productID).
				Updates(map[string]interface{}{
					"quantity": gorm.Expr("quantity + ?", qty),
					"version":  gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return result.Error
			}
		}
		return saveOrderTx(tx, order)
	})
}

// saveOrderTx upserts an order and replaces its items within an open transaction
func saveOrderTx(tx *gorm.DB, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := tx.Omit("Items").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error; err != nil {
		return err
	}

	if err := tx.Where("order_id = ?", model.ID).
		Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}
	if len(model.Items) > 0 {
		if err := tx.Create(&model.Items).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormCheckoutStore implements CheckoutStore
var _ trade.CheckoutStore = (*GormCheckoutStore)(nil)
