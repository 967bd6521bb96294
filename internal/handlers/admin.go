// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketloop/shop-backend/internal/services"
	"github.com/marketloop/shop-backend/internal/utils"
)

type AdminHandler struct {
	inventoryService *services.InventoryService
}

func NewAdminHandler(inventoryService *services.InventoryService) *AdminHandler {
	return &AdminHandler{inventoryService: inventoryService}
}

// POST /admin/stock/adjust
func (h *AdminHandler) AdjustStock(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	movement, err := h.inventoryService.AdjustStock(&req, &actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, movement)
}

// GET /admin/stock/movements
func (h *AdminHandler) ListStockMovements(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var productID *uuid.UUID
	if idStr := c.Query("product_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid product_id", nil)
			return
		}
		productID = &id
	}

	movements, total, err := h.inventoryService.ListMovements(productID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(movements, total, params)
	utils.PaginatedResponse(c, result)
}
