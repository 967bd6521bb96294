// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers translate these into the
// matching HTTP status; none of them is a generic opaque failure.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrAddressNotFound     = errors.New("address not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrWishlistNotFound    = errors.New("wishlist item not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrEmptyCart           = errors.New("cannot create an order from an empty cart")
	ErrPendingOrderExists  = errors.New("you have an existing pending order")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrDuplicateCategory   = errors.New("category with this name already exists")
	ErrDuplicateReview     = errors.New("you have already reviewed this product")
	ErrDuplicateWishlist   = errors.New("this item is already in your wishlist")
	ErrDuplicateVote       = errors.New("you have already voted on this review")
	ErrDuplicateReport     = errors.New("you have already reported this review")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrInvalidOperation    = errors.New("unknown stock operation")
	ErrProductUnavailable  = errors.New("product is not available")
	ErrImageTooLarge       = errors.New("image exceeds the upload size limit")
	ErrUnsupportedImage    = errors.New("unsupported image format")
	ErrImageDimensions     = errors.New("image dimensions out of range")
	ErrOrderNotPayable     = errors.New("order is not awaiting payment")
	ErrInvalidTransition   = errors.New("invalid order status transition")
)

// InsufficientStockError reports the offending product by name, so checkout
// failures can point at the exact line that blocked the order.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName == "" {
		return "insufficient stock"
	}
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// UnavailableProductError names a product that is flagged unavailable.
type UnavailableProductError struct {
	ProductName string
}

func (e *UnavailableProductError) Error() string {
	return fmt.Sprintf("product %q is not available for purchase", e.ProductName)
}
