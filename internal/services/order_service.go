// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/models"
	"github.com/marketloop/shop-backend/internal/utils"
)

type OrderService struct {
	db        *gorm.DB
	inventory *InventoryService
}

func NewOrderService(db *gorm.DB, inventory *InventoryService) *OrderService {
	return &OrderService{db: db, inventory: inventory}
}

// Checkout converts the user's cart into an Order with immutable price
// snapshots, debits stock per line, and empties the cart. The whole
// conversion runs in one transaction: a failure at any step, including an
// insufficient-stock debit, rolls everything back and leaves cart and stock
// untouched.
func (s *OrderService) Checkout(userID uuid.UUID) (*models.Order, error) {
	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Preload("Items").Preload("Items.Product").
			Where("user_id = ? AND status = ?", userID, models.CartStatusActive).
			First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return fmt.Errorf("database error: %w", err)
		}

		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		var pendingCount int64
		if err := tx.Model(&models.Order{}).
			Where("user_id = ? AND status = ?", userID, models.OrderStatusPending).
			Count(&pendingCount).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if pendingCount > 0 {
			return ErrPendingOrderExists
		}

		// Validate every line before creating anything, so a failed checkout
		// reports the offending product without touching the database.
		total := decimal.Zero
		for _, item := range cart.Items {
			if !item.Product.Available {
				return &UnavailableProductError{ProductName: item.Product.Name}
			}
			if item.Quantity > item.Product.Stock {
				return &InsufficientStockError{
					ProductName: item.Product.Name,
					Requested:   item.Quantity,
					Available:   item.Product.Stock,
				}
			}
			total = total.Add(item.Subtotal())
		}

		order = &models.Order{
			UserID:      userID,
			Status:      models.OrderStatusPending,
			TotalAmount: total,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range cart.Items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			// The conditional debit is the real oversell gate; the check above
			// is only a fast path for the common failure.
			if _, err := s.inventory.adjustStockTx(tx, item.ProductID, item.Quantity,
				models.StockMovementRemove, "checkout", &userID); err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to empty cart: %w", err)
		}
		if err := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("status", models.CartStatusCheckedOut).Error; err != nil {
			return fmt.Errorf("failed to close cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Items").Preload("Items.Product").First(order, order.ID)

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount,
	}).Info("Checkout completed")

	return order, nil
}

// Cancel credits every order line's quantity back to stock and marks the
// order cancelled, all in one transaction. Only pending and processing orders
// can be cancelled.
func (s *OrderService) Cancel(orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if order.UserID != userID && !isAdmin {
			return ErrAccessDenied
		}

		if !order.CanCancel() {
			return ErrOrderNotCancellable
		}

		for _, item := range order.Items {
			if _, err := s.inventory.adjustStockTx(tx, item.ProductID, item.Quantity,
				models.StockMovementAdd, "order cancelled", &userID); err != nil {
				return err
			}
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		order.Status = models.OrderStatusCancelled

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
	}).Info("Order cancelled")

	return &order, nil
}

// UpdateStatus advances an order along pending -> processing -> shipped ->
// delivered. Skipping steps or moving backwards is rejected.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !order.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
	}

	if err := s.db.Model(&order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status

	return &order, nil
}

func (s *OrderService) GetOrder(orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Product").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != userID && !isAdmin {
		return nil, ErrAccessDenied
	}

	return &order, nil
}

func (s *OrderService) ListOrders(userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID).
		Preload("Items").Preload("Items.Product")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "total_amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}
