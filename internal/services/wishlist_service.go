// internal/services/wishlist_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/models"
	"github.com/marketloop/shop-backend/internal/utils"
)

type WishlistService struct {
	db *gorm.DB
}

type AddWishlistItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Notes     string    `json:"notes,omitempty" validate:"omitempty,max=255"`
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

func (s *WishlistService) List(userID uuid.UUID, params utils.PaginationParams) ([]models.WishlistItem, int64, error) {
	query := s.db.Model(&models.WishlistItem{}).Where("user_id = ?", userID).
		Preload("Product").Preload("Product.Category")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	allowedSortFields := []string{"created_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var items []models.WishlistItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	return items, total, nil
}

func (s *WishlistService) Add(userID uuid.UUID, req *AddWishlistItemRequest) (*models.WishlistItem, error) {
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

	var count int64
	if err := s.db.Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, req.ProductID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateWishlist
	}

	item := &models.WishlistItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Notes:     req.Notes,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	s.db.Preload("Product").First(item, item.ID)
	return item, nil
}

func (s *WishlistService) Remove(userID, itemID uuid.UUID) error {
	res := s.db.Unscoped().Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrWishlistNotFound
	}
	return nil
}

// Toggle adds the product when absent, removes it when present.
func (s *WishlistService) Toggle(userID, productID uuid.UUID) (added bool, err error) {
	var item models.WishlistItem
	findErr := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error

	if findErr == nil {
		if err := s.db.Unscoped().Delete(&item).Error; err != nil {
			return false, fmt.Errorf("failed to remove wishlist item: %w", err)
		}
		return false, nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("database error: %w", findErr)
	}

	_, err = s.Add(userID, &AddWishlistItemRequest{ProductID: productID})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *WishlistService) Contains(userID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}
