// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketloop/shop-backend/internal/services"
	"github.com/marketloop/shop-backend/internal/utils"
)

// currentUserID pulls the authenticated user out of the gin context. Routes
// behind AuthRequired always have it; the bool guards optional-auth routes.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	role, _ := utils.GetUserRoleFromContext(c)
	return role == "admin"
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service sentinels onto HTTP responses so each
// handler does not repeat the same errors.Is ladder.
func respondServiceError(c *gin.Context, err error) {
	var stockErr *services.InsufficientStockError
	var unavailableErr *services.UnavailableProductError

	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrCartNotFound),
		errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrWishlistNotFound),
		errors.Is(err, services.ErrImageNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrAccessDenied):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrDuplicateCategory),
		errors.Is(err, services.ErrDuplicateReview),
		errors.Is(err, services.ErrDuplicateWishlist),
		errors.Is(err, services.ErrDuplicateVote),
		errors.Is(err, services.ErrDuplicateReport),
		errors.Is(err, services.ErrPendingOrderExists):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrOrderNotCancellable),
		errors.Is(err, services.ErrOrderNotPayable),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrInvalidOperation),
		errors.Is(err, services.ErrImageTooLarge),
		errors.Is(err, services.ErrUnsupportedImage),
		errors.Is(err, services.ErrImageDimensions):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.As(err, &stockErr):
		utils.ErrorResponse(c, http.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error(), gin.H{
			"product":   stockErr.ProductName,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &unavailableErr):
		utils.BadRequestResponse(c, unavailableErr.Error(), gin.H{
			"product": unavailableErr.ProductName,
		})
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
