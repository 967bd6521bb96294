// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/models"
	"github.com/marketloop/shop-backend/internal/utils"
)

type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetOrCreateCart returns the user's cart, creating it on first access. Each
// user has exactly one cart row; a checked-out cart flips back to active the
// next time an item lands in it.
func (s *CartService) GetOrCreateCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	cart = models.Cart{UserID: userID, Status: models.CartStatusActive}
	if err := s.db.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !product.Available {
		return nil, &UnavailableProductError{ProductName: product.Name}
	}

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error

		quantity := req.Quantity
		if findErr == nil {
			quantity += item.Quantity
		} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", findErr)
		}

		// Quantity must never exceed the product's current stock
		if quantity > product.Stock {
			return &InsufficientStockError{
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.Stock,
			}
		}

		if findErr == nil {
			if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
			item.Quantity = quantity
		} else {
			item = models.CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: quantity}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
		}

		if cart.Status != models.CartStatusActive {
			if err := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
				Update("status", models.CartStatusActive).Error; err != nil {
				return fmt.Errorf("failed to reactivate cart: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Product").First(&item, item.ID)
	return &item, nil
}

func (s *CartService) UpdateItem(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Quantity > item.Product.Stock {
		return nil, &InsufficientStockError{
			ProductName: item.Product.Name,
			Requested:   req.Quantity,
			Available:   item.Product.Stock,
		}
	}

	if err := s.db.Model(item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = req.Quantity

	return item, nil
}

func (s *CartService) RemoveItem(userID, itemID uuid.UUID) error {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(item).Error; err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(userID uuid.UUID) error {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) ownedItem(userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.Preload("Product").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &item, nil
}
