// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/models"
	"github.com/marketloop/shop-backend/internal/utils"
)

type CatalogService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
	Slug string `json:"slug,omitempty" validate:"omitempty,max=200"`
}

type CreateProductRequest struct {
	CategorySlug string          `json:"category" validate:"required"`
	Name         string          `json:"name" validate:"required,min=2,max=255"`
	Slug         string          `json:"slug,omitempty" validate:"omitempty,max=255"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	Stock        int             `json:"stock" validate:"min=0"`
	Available    *bool           `json:"available,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
}

type UpdateProductRequest struct {
	CategorySlug string           `json:"category,omitempty"`
	Name         string           `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description  *string          `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Available    *bool            `json:"available,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	Available *bool
	MinRating *float64
	InStock   *bool
	Tags      []string
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Categories

func (s *CatalogService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("LOWER(name) = ?", strings.ToLower(req.Name)).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateCategory
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	category := &models.Category{Name: req.Name, Slug: slug}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CatalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategoryBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Preload("Products").Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(slug string, req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(req.Name), category.ID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateCategory
	}

	newSlug := req.Slug
	if newSlug == "" {
		newSlug = utils.Slugify(req.Name)
	}

	if err := s.db.Model(&category).Updates(map[string]interface{}{
		"name": req.Name,
		"slug": newSlug,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	category.Name = req.Name
	category.Slug = newSlug

	return &category, nil
}

func (s *CatalogService) DeleteCategory(slug string) error {
	res := s.db.Where("slug = ?", slug).Delete(&models.Category{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Products

func (s *CatalogService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	var category models.Category
	if err := s.db.Where("slug = ?", req.CategorySlug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	// Resolve slug collisions with a random suffix
	var count int64
	if err := s.db.Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		unique, err := utils.SlugifyUnique(req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
		slug = unique
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product := &models.Product{
		CategoryID:  category.ID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Available:   available,
		Tags:        pq.StringArray(req.Tags),
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.db.Preload("Category").First(product, product.ID)
	return product, nil
}

func (s *CatalogService) GetProductBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Preload("Images").
		Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) UpdateProduct(slug string, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
		updates["slug"] = utils.Slugify(req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidPrice
		}
		updates["price"] = *req.Price
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.CategorySlug != "" {
		var category models.Category
		if err := s.db.Where("slug = ?", req.CategorySlug).First(&category).Error; err != nil {
			return nil, ErrCategoryNotFound
		}
		updates["category_id"] = category.ID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	s.db.Preload("Category").Preload("Images").First(&product, product.ID)
	return &product, nil
}

func (s *CatalogService) DeleteProduct(slug string) error {
	res := s.db.Where("slug = ?", slug).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *CatalogService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category").Preload("Images")

	if params.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("products.price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("products.price <= ?", *params.PriceMax)
	}
	if params.Available != nil {
		query = query.Where("products.available = ?", *params.Available)
	}
	if params.MinRating != nil {
		query = query.Where("products.average_rating >= ?", *params.MinRating)
	}
	if params.InStock != nil && *params.InStock {
		query = query.Where("products.stock > 0")
	}
	if len(params.Tags) > 0 {
		query = query.Where("products.tags && ?", pq.StringArray(params.Tags))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// Sort columns are qualified because the category join has the same
	// column names.
	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "average_rating"}
	sortField, order := utils.SortColumn(params.PaginationParams, allowedSortFields)
	query = query.Order("products." + sortField + " " + order)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// Product images

func (s *CatalogService) AddProductImage(productID uuid.UUID, url string, thumbnails map[string]interface{}, altText string) (*models.ProductImage, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	image := &models.ProductImage{
		ProductID:  productID,
		URL:        url,
		Thumbnails: models.JSONB(thumbnails),
		AltText:    altText,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// First image becomes the primary one
		var count int64
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		image.IsPrimary = count == 0
		return tx.Create(image).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save product image: %w", err)
	}

	return image, nil
}

// SetPrimaryImage keeps the one-primary-per-product invariant as an explicit
// operation rather than a persistence hook.
func (s *CatalogService) SetPrimaryImage(productID, imageID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var image models.ProductImage
		if err := tx.Where("id = ? AND product_id = ?", imageID, productID).First(&image).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrImageNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Model(&models.ProductImage{}).
			Where("product_id = ? AND is_primary = ?", productID, true).
			Update("is_primary", false).Error; err != nil {
			return fmt.Errorf("failed to clear primary image: %w", err)
		}

		return tx.Model(&image).Update("is_primary", true).Error
	})
}
