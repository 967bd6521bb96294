// internal/services/catalog_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/shop-backend/internal/models"
)

func TestCreateCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	category, err := svc.CreateCategory(&CreateCategoryRequest{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", category.Slug)

	// Name uniqueness is case-insensitive.
	_, err = svc.CreateCategory(&CreateCategoryRequest{Name: "HOME & GARDEN"})
	assert.True(t, errors.Is(err, ErrDuplicateCategory))
}

func TestUpdateCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	_, err := svc.CreateCategory(&CreateCategoryRequest{Name: "Garden"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(&CreateCategoryRequest{Name: "Outdoor"})
	require.NoError(t, err)

	updated, err := svc.UpdateCategory("garden", &CreateCategoryRequest{Name: "Garden Tools"})
	require.NoError(t, err)
	assert.Equal(t, "Garden Tools", updated.Name)
	assert.Equal(t, "garden-tools", updated.Slug)

	// Renaming onto another category's name is rejected.
	_, err = svc.UpdateCategory("garden-tools", &CreateCategoryRequest{Name: "outdoor"})
	assert.True(t, errors.Is(err, ErrDuplicateCategory))

	_, err = svc.UpdateCategory("missing", &CreateCategoryRequest{Name: "Whatever"})
	assert.True(t, errors.Is(err, ErrCategoryNotFound))
}

func TestCreateProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	_, err := svc.CreateCategory(&CreateCategoryRequest{Name: "Audio"})
	require.NoError(t, err)

	product, err := svc.CreateProduct(&CreateProductRequest{
		CategorySlug: "audio",
		Name:         "Studio Monitors",
		Price:        decimal.RequireFromString("399.00"),
		Stock:        12,
		Tags:         []string{"studio", "speakers"},
	})
	require.NoError(t, err)

	assert.Equal(t, "studio-monitors", product.Slug)
	assert.Equal(t, "Audio", product.Category.Name)
	assert.True(t, product.Available)
	assert.Equal(t, 12, product.Stock)
}

func TestCreateProductSlugCollision(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	_, err := svc.CreateCategory(&CreateCategoryRequest{Name: "Audio"})
	require.NoError(t, err)

	first, err := svc.CreateProduct(&CreateProductRequest{
		CategorySlug: "audio",
		Name:         "Reference DAC",
		Price:        decimal.RequireFromString("250.00"),
	})
	require.NoError(t, err)

	second, err := svc.CreateProduct(&CreateProductRequest{
		CategorySlug: "audio",
		Name:         "Reference DAC",
		Price:        decimal.RequireFromString("280.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "reference-dac", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "reference-dac")
}

func TestCreateProductInvalidPrice(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	_, err := svc.CreateCategory(&CreateCategoryRequest{Name: "Audio"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(&CreateProductRequest{
		CategorySlug: "audio",
		Name:         "Free Sample",
		Price:        decimal.Zero,
	})
	assert.True(t, errors.Is(err, ErrInvalidPrice))
}

func TestCreateProductUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	_, err := svc.CreateProduct(&CreateProductRequest{
		CategorySlug: "nope",
		Name:         "Orphan Product",
		Price:        decimal.RequireFromString("10.00"),
	})
	assert.True(t, errors.Is(err, ErrCategoryNotFound))
}

func TestUpdateProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	product := seedProduct(t, db, "Turntable", "300.00", 5)

	newPrice := decimal.RequireFromString("275.00")
	available := false
	updated, err := svc.UpdateProduct(product.Slug, &UpdateProductRequest{
		Price:     &newPrice,
		Available: &available,
	})
	require.NoError(t, err)

	assert.True(t, updated.Price.Equal(newPrice))
	assert.False(t, updated.Available)
}

func TestDeleteProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	product := seedProduct(t, db, "Cassette Deck", "120.00", 2)

	require.NoError(t, svc.DeleteProduct(product.Slug))

	_, err := svc.GetProductBySlug(product.Slug)
	assert.True(t, errors.Is(err, ErrProductNotFound))

	err = svc.DeleteProduct(product.Slug)
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestSearchProducts(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	seedProduct(t, db, "Walnut Bookshelf", "180.00", 4)
	seedProduct(t, db, "Oak Bookshelf", "220.00", 0)
	seedProduct(t, db, "Metal Rack", "95.00", 10)

	// Text search matches names case-insensitively.
	params := ProductSearchParams{PaginationParams: defaultPagination()}
	params.Search = "bookshelf"
	products, total, err := svc.SearchProducts(params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, products, 2)

	// Price range.
	params = ProductSearchParams{PaginationParams: defaultPagination()}
	min := decimal.RequireFromString("100.00")
	max := decimal.RequireFromString("200.00")
	params.PriceMin = &min
	params.PriceMax = &max
	_, total, err = svc.SearchProducts(params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// Only products with stock on hand.
	params = ProductSearchParams{PaginationParams: defaultPagination()}
	inStock := true
	params.InStock = &inStock
	_, total, err = svc.SearchProducts(params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestSearchProductsByCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	product := seedProduct(t, db, "Floor Lamp", "85.00", 3)
	seedProduct(t, db, "Ceiling Fan", "140.00", 3)

	var category models.Category
	require.NoError(t, db.First(&category, "id = ?", product.CategoryID).Error)

	params := ProductSearchParams{PaginationParams: defaultPagination()}
	params.Category = category.Slug
	params.Sort = "name"
	products, total, err := svc.SearchProducts(params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Floor Lamp", products[0].Name)
}

func TestProductImages(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	product := seedProduct(t, db, "Area Rug", "210.00", 6)

	first, err := svc.AddProductImage(product.ID, "https://cdn.example.com/rug-1.jpg",
		map[string]interface{}{"small": "https://cdn.example.com/rug-1-small.jpg"}, "front view")
	require.NoError(t, err)
	assert.True(t, first.IsPrimary, "first image becomes primary")

	second, err := svc.AddProductImage(product.ID, "https://cdn.example.com/rug-2.jpg", nil, "detail")
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)

	require.NoError(t, svc.SetPrimaryImage(product.ID, second.ID))

	var images []models.ProductImage
	require.NoError(t, db.Where("product_id = ?", product.ID).Order("created_at").Find(&images).Error)
	require.Len(t, images, 2)

	var primaries int
	for _, img := range images {
		if img.IsPrimary {
			primaries++
			assert.Equal(t, second.ID, img.ID)
		}
	}
	assert.Equal(t, 1, primaries)
}
