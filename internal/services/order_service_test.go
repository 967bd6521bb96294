// internal/services/order_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/models"
)

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(db, NewInventoryService(db))
}

func TestCheckout(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Espresso Grinder", "50.00", 10)
	fillCart(t, db, user, product, 3)

	order, err := svc.Checkout(user.ID)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("150.00")),
		"total was %s", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("50.00")))

	// Stock debited, cart emptied and closed.
	assert.Equal(t, 7, reloadProduct(t, db, product.ID).Stock)

	var cart models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", user.ID).First(&cart).Error)
	assert.Empty(t, cart.Items)
	assert.Equal(t, models.CartStatusCheckedOut, cart.Status)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)

	_, err := svc.Checkout(user.ID)
	assert.True(t, errors.Is(err, ErrEmptyCart))
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Pour Over Kettle", "35.00", 5)
	fillCart(t, db, user, product, 5)

	// Stock drops below the cart quantity after the item was added.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("stock", 2).Error)

	_, err := svc.Checkout(user.ID)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Pour Over Kettle", stockErr.ProductName)

	// Nothing was created or mutated.
	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	assert.Equal(t, 2, reloadProduct(t, db, product.ID).Stock)

	var cart models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", user.ID).First(&cart).Error)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, models.CartStatusActive, cart.Status)
}

func TestCheckoutUnavailableProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Discontinued Scale", "20.00", 10)
	fillCart(t, db, user, product, 1)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("available", false).Error)

	_, err := svc.Checkout(user.ID)

	var unavailableErr *UnavailableProductError
	require.ErrorAs(t, err, &unavailableErr)
	assert.Equal(t, "Discontinued Scale", unavailableErr.ProductName)
}

func TestCheckoutRejectsSecondPendingOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "French Press", "28.00", 10)

	fillCart(t, db, user, product, 1)
	_, err := svc.Checkout(user.ID)
	require.NoError(t, err)

	fillCart(t, db, user, product, 1)
	_, err = svc.Checkout(user.ID)
	assert.True(t, errors.Is(err, ErrPendingOrderExists))
}

func TestCheckoutPriceSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Ceramic Dripper", "18.00", 10)
	fillCart(t, db, user, product, 2)

	order, err := svc.Checkout(user.ID)
	require.NoError(t, err)

	// A later price change must not leak into the order.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("99.00")).Error)

	reloaded, err := svc.GetOrder(order.ID, user.ID, false)
	require.NoError(t, err)
	assert.True(t, reloaded.Items[0].Price.Equal(decimal.RequireFromString("18.00")))
	assert.True(t, reloaded.TotalAmount.Equal(decimal.RequireFromString("36.00")))
}

func TestCheckoutCannotOversellRemainingStock(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	product := seedProduct(t, db, "Burr Set", "45.00", 10)

	first := seedUser(t, db)
	fillCart(t, db, first, product, 6)
	_, err := svc.Checkout(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, reloadProduct(t, db, product.ID).Stock)

	second := seedUser(t, db)
	fillCart(t, db, second, product, 4)
	// Another shopper grabs stock between add-to-cart and checkout.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("stock", 3).Error)

	_, err = svc.Checkout(second.ID)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, reloadProduct(t, db, product.ID).Stock)
}

func TestCancelRestoresStock(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Milk Pitcher", "15.00", 10)
	fillCart(t, db, user, product, 4)

	order, err := svc.Checkout(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloadProduct(t, db, product.ID).Stock)

	cancelled, err := svc.Cancel(order.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, reloadProduct(t, db, product.ID).Stock)
}

func TestCancelDeliveredOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Tamper", "22.00", 10)
	order := deliveredOrder(t, db, user, product, 1)

	_, err := svc.Cancel(order.ID, user.ID, false)
	assert.True(t, errors.Is(err, ErrOrderNotCancellable))
}

func TestCancelTwice(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Knock Box", "30.00", 10)
	fillCart(t, db, user, product, 2)

	order, err := svc.Checkout(user.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(order.ID, user.ID, false)
	require.NoError(t, err)

	_, err = svc.Cancel(order.ID, user.ID, false)
	assert.True(t, errors.Is(err, ErrOrderNotCancellable))

	// The second attempt must not credit stock again.
	assert.Equal(t, 10, reloadProduct(t, db, product.ID).Stock)
}

func TestCancelByOtherUser(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	owner := seedUser(t, db)
	stranger := seedUser(t, db)
	product := seedProduct(t, db, "Group Head Brush", "8.00", 10)
	fillCart(t, db, owner, product, 1)

	order, err := svc.Checkout(owner.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(order.ID, stranger.ID, false)
	assert.Error(t, err)
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Steam Wand Tip", "12.00", 10)
	fillCart(t, db, user, product, 1)

	order, err := svc.Checkout(user.ID)
	require.NoError(t, err)

	// Skipping a step is rejected.
	_, err = svc.UpdateStatus(order.ID, models.OrderStatusShipped)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	for _, status := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		order, err = svc.UpdateStatus(order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}

	// Delivered is terminal.
	_, err = svc.UpdateStatus(order.ID, models.OrderStatusProcessing)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestGetOrderOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	owner := seedUser(t, db)
	stranger := seedUser(t, db)
	product := seedProduct(t, db, "Portafilter", "55.00", 10)
	fillCart(t, db, owner, product, 1)

	order, err := svc.Checkout(owner.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(order.ID, stranger.ID, false)
	assert.True(t, errors.Is(err, ErrAccessDenied))

	fetched, err := svc.GetOrder(order.ID, stranger.ID, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
}

func TestListOrders(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Shot Glass", "6.00", 20)

	fillCart(t, db, user, product, 1)
	order, err := svc.Checkout(user.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(order.ID, user.ID, false)
	require.NoError(t, err)

	fillCart(t, db, user, product, 2)
	_, err = svc.Checkout(user.ID)
	require.NoError(t, err)

	orders, total, err := svc.ListOrders(user.ID, defaultPagination())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orders, 2)
}
