// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/models"
	"github.com/marketloop/shop-backend/internal/utils"
)

// reportThreshold is the number of distinct reports that hides a review.
const reportThreshold = 5

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Title     string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Comment   string    `json:"comment,omitempty"`
}

type UpdateReviewRequest struct {
	Rating  int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title   *string `json:"title,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

type ReviewSearchParams struct {
	utils.PaginationParams
	Rating             *int
	MinRating          *int
	IsVerifiedPurchase *bool
}

type ReviewSummary struct {
	AverageRating      float64       `json:"average_rating"`
	TotalReviews       int64         `json:"total_reviews"`
	RatingDistribution map[int]int64 `json:"rating_distribution"`
	VerifiedReviews    int64         `json:"verified_reviews"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview persists a review and recomputes the product's aggregate
// rating in the same transaction. The verified-purchase flag is set when the
// reviewer has a delivered order containing the product; it is one-way and
// never unset afterwards.
func (s *ReviewService) CreateReview(userID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review *models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND product_id = ?", userID, req.ProductID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return ErrDuplicateReview
		}

		verifyingItem, err := s.verifyingOrderItem(tx, userID, req.ProductID)
		if err != nil {
			return err
		}

		review = &models.Review{
			UserID:             userID,
			ProductID:          req.ProductID,
			Rating:             req.Rating,
			Title:              req.Title,
			Comment:            req.Comment,
			IsVisible:          true,
			IsVerifiedPurchase: verifyingItem != nil,
		}
		if verifyingItem != nil {
			review.OrderItemID = &verifyingItem.ID
		}

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		return s.recomputeProductRatingTx(tx, req.ProductID)
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("User").Preload("Product").First(review, review.ID)
	return review, nil
}

func (s *ReviewService) UpdateReview(reviewID, userID uuid.UUID, req *UpdateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if review.UserID != userID {
			return ErrAccessDenied
		}

		updates := make(map[string]interface{})
		if req.Rating != 0 {
			updates["rating"] = req.Rating
		}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Comment != nil {
			updates["comment"] = *req.Comment
		}

		if len(updates) > 0 {
			if err := tx.Model(&review).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update review: %w", err)
			}
		}

		return s.recomputeProductRatingTx(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}

	s.db.First(&review, review.ID)
	return &review, nil
}

func (s *ReviewService) DeleteReview(reviewID, userID uuid.UUID, isAdmin bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if review.UserID != userID && !isAdmin {
			return ErrAccessDenied
		}

		if err := tx.Unscoped().Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		return s.recomputeProductRatingTx(tx, review.ProductID)
	})
}

// GetReview returns a single review. Reviews hidden by moderation stay
// readable for their author and for admins; everyone else gets not-found so
// the hidden state is not disclosed.
func (s *ReviewService) GetReview(reviewID uuid.UUID, requesterID *uuid.UUID, isAdmin bool) (*models.Review, error) {
	var review models.Review
	if err := s.db.Preload("User").Preload("Product").Preload("Images").
		First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !review.IsVisible && !isAdmin {
		if requesterID == nil || *requesterID != review.UserID {
			return nil, ErrReviewNotFound
		}
	}

	return &review, nil
}

// MarkHelpful records one helpful vote per user per review. Repeated calls
// from the same user are rejected instead of inflating the counter.
func (s *ReviewService) MarkHelpful(reviewID, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := s.recordVote(tx, reviewID, userID, models.ReviewVoteHelpful, ""); err != nil {
			return err
		}

		if err := tx.Model(&review).
			Update("helpful_votes", gorm.Expr("helpful_votes + 1")).Error; err != nil {
			return fmt.Errorf("failed to count helpful vote: %w", err)
		}
		review.HelpfulVotes++

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Report registers one report per user per review; the review is hidden and
// dropped from the product aggregate once the threshold is reached.
func (s *ReviewService) Report(reviewID, userID uuid.UUID, reason string) (*models.Review, error) {
	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := s.recordVote(tx, reviewID, userID, models.ReviewVoteReport, reason); err != nil {
			if errors.Is(err, ErrDuplicateVote) {
				return ErrDuplicateReport
			}
			return err
		}

		// Re-derive the counter from the vote rows instead of incrementing
		// the loaded value, so concurrent reporters cannot lose an update
		// and stall the counter below the threshold.
		var reports int64
		if err := tx.Model(&models.ReviewVote{}).
			Where("review_id = ? AND kind = ?", review.ID, models.ReviewVoteReport).
			Count(&reports).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		review.ReportedCount = int(reports)
		updates := map[string]interface{}{
			"reported_count": review.ReportedCount,
		}

		if review.ReportedCount >= reportThreshold && review.IsVisible {
			review.IsVisible = false
			note := fmt.Sprintf("auto-hidden on %s after %d reports",
				time.Now().UTC().Format("2006-01-02"), review.ReportedCount)
			if review.ModerationNote != "" {
				note = review.ModerationNote + "; " + note
			}
			review.ModerationNote = note
			updates["is_visible"] = false
			updates["moderation_note"] = note
		}

		if err := tx.Model(&models.Review{}).Where("id = ?", review.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record report: %w", err)
		}

		if !review.IsVisible {
			return s.recomputeProductRatingTx(tx, review.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ProductReviews lists the visible reviews of a product together with the
// aggregate summary shown on the product page.
func (s *ReviewService) ProductReviews(productSlug string, params ReviewSearchParams) ([]models.Review, int64, *ReviewSummary, error) {
	var product models.Product
	if err := s.db.Where("slug = ?", productSlug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil, ErrProductNotFound
		}
		return nil, 0, nil, fmt.Errorf("database error: %w", err)
	}

	query := s.db.Model(&models.Review{}).Preload("User").Preload("Images").
		Where("product_id = ? AND is_visible = ?", product.ID, true)

	if params.Rating != nil {
		query = query.Where("rating = ?", *params.Rating)
	}
	if params.MinRating != nil {
		query = query.Where("rating >= ?", *params.MinRating)
	}
	if params.IsVerifiedPurchase != nil {
		query = query.Where("is_verified_purchase = ?", *params.IsVerifiedPurchase)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	allowedSortFields := []string{"created_at", "rating", "helpful_votes"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	summary, err := s.buildSummary(&product)
	if err != nil {
		return nil, 0, nil, err
	}

	return reviews, total, summary, nil
}

func (s *ReviewService) AddReviewImage(reviewID, userID uuid.UUID, url string, thumbnails map[string]interface{}) (*models.ReviewImage, error) {
	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if review.UserID != userID {
		return nil, ErrAccessDenied
	}

	image := &models.ReviewImage{
		ReviewID:   reviewID,
		URL:        url,
		Thumbnails: models.JSONB(thumbnails),
	}
	if err := s.db.Create(image).Error; err != nil {
		return nil, fmt.Errorf("failed to save review image: %w", err)
	}

	return image, nil
}

// Helpers

func (s *ReviewService) recordVote(tx *gorm.DB, reviewID, userID uuid.UUID, kind models.ReviewVoteKind, reason string) error {
	var count int64
	if err := tx.Model(&models.ReviewVote{}).
		Where("review_id = ? AND user_id = ? AND kind = ?", reviewID, userID, kind).
		Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return ErrDuplicateVote
	}

	vote := &models.ReviewVote{ReviewID: reviewID, UserID: userID, Kind: kind, Reason: reason}
	if err := tx.Create(vote).Error; err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

// verifyingOrderItem returns an order item proving the user received the
// product, or nil when no delivered order contains it.
func (s *ReviewService) verifyingOrderItem(tx *gorm.DB, userID, productID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, models.OrderStatusDelivered, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &item, nil
}

// recomputeProductRatingTx re-aggregates the product's rating from currently
// visible reviews. It runs inside the same transaction as the triggering
// write, so concurrent review writers cannot leave a stale mean behind.
func (s *ReviewService) recomputeProductRatingTx(tx *gorm.DB, productID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Total int64
	}

	if err := tx.Model(&models.Review{}).
		Where("product_id = ? AND is_visible = ?", productID, true).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	rounded := math.Round(agg.Avg*100) / 100

	if err := tx.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": rounded,
			"total_reviews":  agg.Total,
		}).Error; err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	return nil
}

func (s *ReviewService) buildSummary(product *models.Product) (*ReviewSummary, error) {
	summary := &ReviewSummary{
		AverageRating:      product.AverageRating,
		TotalReviews:       product.TotalReviews,
		RatingDistribution: make(map[int]int64),
	}

	type bucket struct {
		Rating int
		Count  int64
	}
	var buckets []bucket
	if err := s.db.Model(&models.Review{}).
		Where("product_id = ? AND is_visible = ?", product.ID, true).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("failed to build rating distribution: %w", err)
	}

	for i := 1; i <= 5; i++ {
		summary.RatingDistribution[i] = 0
	}
	for _, b := range buckets {
		summary.RatingDistribution[b.Rating] = b.Count
	}

	if err := s.db.Model(&models.Review{}).
		Where("product_id = ? AND is_visible = ? AND is_verified_purchase = ?", product.ID, true, true).
		Count(&summary.VerifiedReviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count verified reviews: %w", err)
	}

	return summary, nil
}
