// internal/handlers/product.go
package handlers

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/marketloop/shop-backend/internal/services"
	"github.com/marketloop/shop-backend/internal/utils"
)

type ProductHandler struct {
	catalogService *services.CatalogService
	reviewService  *services.ReviewService
	imageService   *services.ImageService
	storageService *services.StorageService
}

func NewProductHandler(catalogService *services.CatalogService, reviewService *services.ReviewService,
	imageService *services.ImageService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		reviewService:  reviewService,
		imageService:   imageService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := services.ProductSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := decimal.NewFromString(priceMinStr); err == nil {
			params.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := decimal.NewFromString(priceMaxStr); err == nil {
			params.PriceMax = &priceMax
		}
	}

	if availableStr := c.Query("available"); availableStr != "" {
		if available, err := strconv.ParseBool(availableStr); err == nil {
			params.Available = &available
		}
	}

	if minRatingStr := c.Query("min_rating"); minRatingStr != "" {
		if minRating, err := strconv.ParseFloat(minRatingStr, 64); err == nil {
			params.MinRating = &minRating
		}
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			params.InStock = &inStock
		}
	}

	if tags := c.Query("tags"); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}

	products, total, err := h.catalogService.SearchProducts(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /products/:slug
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// GET /products/:slug/reviews
func (h *ProductHandler) ListProductReviews(c *gin.Context) {
	params := services.ReviewSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if ratingStr := c.Query("rating"); ratingStr != "" {
		if rating, err := strconv.Atoi(ratingStr); err == nil {
			params.Rating = &rating
		}
	}

	if minRatingStr := c.Query("min_rating"); minRatingStr != "" {
		if minRating, err := strconv.Atoi(minRatingStr); err == nil {
			params.MinRating = &minRating
		}
	}

	if verifiedStr := c.Query("verified"); verifiedStr != "" {
		if verified, err := strconv.ParseBool(verifiedStr); err == nil {
			params.IsVerifiedPurchase = &verified
		}
	}

	reviews, total, summary, err := h.reviewService.ProductReviews(c.Param("slug"), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, utils.CreatePaginationResult(reviews, total, params.PaginationParams))
	utils.SuccessResponseWithMeta(c, gin.H{
		"reviews": reviews,
		"summary": summary,
	}, gin.H{
		"page":  params.Page,
		"limit": params.Limit,
		"total": total,
	})
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.CreateProduct(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /admin/products/:slug
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Param("slug"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:slug
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Param("slug")); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product deleted"})
}

// POST /admin/products/:slug/images
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to read upload")
		return
	}

	processed, err := h.imageService.Process(data)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	stored, err := h.storageService.Store("products", header.Filename, "image/jpeg", processed.Main)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	thumbnails := make(map[string]interface{}, len(processed.Thumbnails))
	for name, bytes := range processed.Thumbnails {
		thumb, err := h.storageService.Store("products/thumbs", name+"_"+header.Filename, "image/jpeg", bytes)
		if err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		thumbnails[name] = thumb.URL
	}

	image, err := h.catalogService.AddProductImage(product.ID, stored.URL, thumbnails, c.PostForm("alt_text"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, image)
}

// PUT /admin/products/:slug/images/:id/primary
func (h *ProductHandler) SetPrimaryImage(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	imageID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.SetPrimaryImage(product.ID, imageID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Primary image updated"})
}
