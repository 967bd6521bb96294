// internal/services/testing_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marketloop/shop-backend/internal/models"
	"github.com/marketloop/shop-backend/internal/utils"
)

var userSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.StockMovement{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.ReviewImage{},
		&models.ReviewVote{},
		&models.WishlistItem{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	userSeq++
	user := &models.User{
		Username: fmt.Sprintf("shopper%d", userSeq),
		Email:    fmt.Sprintf("shopper%d@example.com", userSeq),
		Role:     models.UserRoleCustomer,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))
	require.NoError(t, db.Create(user).Error)

	return user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Slug: utils.Slugify(name)}
	require.NoError(t, db.Create(category).Error)

	return category
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()

	category := seedCategory(t, db, name+" category")

	product := &models.Product{
		CategoryID: category.ID,
		Name:       name,
		Slug:       utils.Slugify(name),
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Available:  true,
	}
	require.NoError(t, db.Create(product).Error)

	return product
}

// fillCart puts quantity units of the product into the user's cart through
// the service, creating the cart on first use.
func fillCart(t *testing.T, db *gorm.DB, user *models.User, product *models.Product, quantity int) {
	t.Helper()

	svc := NewCartService(db)
	_, err := svc.AddItem(user.ID, &AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  quantity,
	})
	require.NoError(t, err)
}

// deliveredOrder creates a delivered order for the product, the precondition
// for a verified-purchase review.
func deliveredOrder(t *testing.T, db *gorm.DB, user *models.User, product *models.Product, quantity int) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:      user.ID,
		Status:      models.OrderStatusDelivered,
		TotalAmount: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	require.NoError(t, db.Create(order).Error)

	item := &models.OrderItem{
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
	}
	require.NoError(t, db.Create(item).Error)

	return order
}

func defaultPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func reloadProduct(t *testing.T, db *gorm.DB, id interface{}) *models.Product {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return &product
}
