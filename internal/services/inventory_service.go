// internal/services/inventory_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/models"
	"github.com/marketloop/shop-backend/internal/utils"
)

// InventoryService owns all mutations of Product.Stock. Every adjustment is a
// single conditional UPDATE plus a StockMovement row written in the same
// transaction, so stock can never go negative and the ledger always matches
// the counter.
type InventoryService struct {
	db *gorm.DB
}

type StockAdjustmentRequest struct {
	ProductID uuid.UUID                `json:"product_id" validate:"required"`
	Quantity  int                      `json:"quantity" validate:"required,min=1"`
	Operation models.StockMovementType `json:"operation" validate:"required,oneof=add remove"`
	Reason    string                   `json:"reason,omitempty" validate:"omitempty,max=255"`
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

func (s *InventoryService) AdjustStock(req *StockAdjustmentRequest, actorID *uuid.UUID) (*models.StockMovement, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var movement *models.StockMovement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.adjustStockTx(tx, req.ProductID, req.Quantity, req.Operation, req.Reason, actorID)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": req.ProductID,
		"operation":  req.Operation,
		"quantity":   req.Quantity,
	}).Info("Stock adjusted")

	return movement, nil
}

// adjustStockTx applies a single stock mutation inside the caller's
// transaction. A remove only succeeds when stock >= quantity; the guard lives
// in the UPDATE's WHERE clause, so two concurrent debits cannot both pass it.
func (s *InventoryService) adjustStockTx(tx *gorm.DB, productID uuid.UUID, quantity int, op models.StockMovementType, reason string, actorID *uuid.UUID) (*models.StockMovement, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	switch op {
	case models.StockMovementRemove:
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", productID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to debit stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var product models.Product
			if err := tx.Select("name", "stock").First(&product, "id = ?", productID).Error; err != nil {
				return nil, ErrProductNotFound
			}
			return nil, &InsufficientStockError{
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.Stock,
			}
		}

	case models.StockMovementAdd:
		res := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			Update("stock", gorm.Expr("stock + ?", quantity))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to credit stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrProductNotFound
		}

	default:
		return nil, ErrInvalidOperation
	}

	movement := &models.StockMovement{
		ProductID: productID,
		Type:      op,
		Quantity:  quantity,
		Reason:    reason,
		CreatedBy: actorID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	return movement, nil
}

func (s *InventoryService) ListMovements(productID *uuid.UUID, params utils.PaginationParams) ([]models.StockMovement, int64, error) {
	query := s.db.Model(&models.StockMovement{}).Preload("Product")

	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock movements: %w", err)
	}

	allowedSortFields := []string{"created_at", "quantity", "type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var movements []models.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch stock movements: %w", err)
	}

	return movements, total, nil
}
