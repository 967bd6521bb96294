// internal/handlers/review.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketloop/shop-backend/internal/services"
	"github.com/marketloop/shop-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService  *services.ReviewService
	imageService   *services.ImageService
	storageService *services.StorageService
}

func NewReviewHandler(reviewService *services.ReviewService, imageService *services.ImageService,
	storageService *services.StorageService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:  reviewService,
		imageService:   imageService,
		storageService: storageService,
	}
}

// POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	review, err := h.reviewService.CreateReview(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, review)
}

// GET /reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var requester *uuid.UUID
	if id, ok := currentUserID(c); ok {
		requester = &id
	}

	review, err := h.reviewService.GetReview(reviewID, requester, isAdmin(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	review, err := h.reviewService.UpdateReview(reviewID, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(reviewID, userID, isAdmin(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Review deleted"})
}

// POST /reviews/:id/helpful
func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.MarkHelpful(reviewID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// POST /reviews/:id/report
func (h *ReviewHandler) Report(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason,omitempty" validate:"omitempty,max=255"`
	}
	c.ShouldBindJSON(&req) // body is optional

	review, err := h.reviewService.Report(reviewID, userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

// POST /reviews/:id/images
func (h *ReviewHandler) UploadReviewImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
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

	stored, err := h.storageService.Store("reviews", header.Filename, "image/jpeg", processed.Main)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	thumbnails := make(map[string]interface{}, len(processed.Thumbnails))
	for name, bytes := range processed.Thumbnails {
		thumb, err := h.storageService.Store("reviews/thumbs", name+"_"+header.Filename, "image/jpeg", bytes)
		if err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		thumbnails[name] = thumb.URL
	}

	image, err := h.reviewService.AddReviewImage(reviewID, userID, stored.URL, thumbnails)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, image)
}
