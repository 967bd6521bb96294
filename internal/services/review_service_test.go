// internal/services/review_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/shop-backend/internal/models"
)

func TestCreateReviewUpdatesAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	product := seedProduct(t, db, "Chef Knife", "79.00", 10)

	for _, rating := range []int{5, 4} {
		user := seedUser(t, db)
		_, err := svc.CreateReview(user.ID, &CreateReviewRequest{
			ProductID: product.ID,
			Rating:    rating,
			Title:     "Solid",
		})
		require.NoError(t, err)
	}

	reloaded := reloadProduct(t, db, product.ID)
	assert.Equal(t, 4.5, reloaded.AverageRating)
	assert.EqualValues(t, 2, reloaded.TotalReviews)
}

func TestAverageRatingRoundsToTwoDecimals(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	product := seedProduct(t, db, "Cutting Board", "25.00", 10)

	for _, rating := range []int{5, 4, 4} {
		user := seedUser(t, db)
		_, err := svc.CreateReview(user.ID, &CreateReviewRequest{
			ProductID: product.ID,
			Rating:    rating,
		})
		require.NoError(t, err)
	}

	// 13/3 = 4.333... rounds to 4.33
	assert.Equal(t, 4.33, reloadProduct(t, db, product.ID).AverageRating)
}

func TestDuplicateReviewRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Paring Knife", "29.00", 10)

	_, err := svc.CreateReview(user.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	_, err = svc.CreateReview(user.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 1})
	assert.True(t, errors.Is(err, ErrDuplicateReview))

	reloaded := reloadProduct(t, db, product.ID)
	assert.EqualValues(t, 1, reloaded.TotalReviews)
	assert.Equal(t, 5.0, reloaded.AverageRating)
}

func TestVerifiedPurchaseFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	product := seedProduct(t, db, "Honing Rod", "19.00", 10)

	buyer := seedUser(t, db)
	deliveredOrder(t, db, buyer, product, 1)

	bought, err := svc.CreateReview(buyer.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	assert.True(t, bought.IsVerifiedPurchase)
	assert.NotNil(t, bought.OrderItemID)

	browser := seedUser(t, db)
	unbought, err := svc.CreateReview(browser.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)
	assert.False(t, unbought.IsVerifiedPurchase)
	assert.Nil(t, unbought.OrderItemID)
}

func TestUpdateReviewRecomputesAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Bread Knife", "34.00", 10)

	review, err := svc.CreateReview(user.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, reloadProduct(t, db, product.ID).AverageRating)

	_, err = svc.UpdateReview(review.ID, user.ID, &UpdateReviewRequest{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, reloadProduct(t, db, product.ID).AverageRating)
}

func TestUpdateReviewByOtherUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	owner := seedUser(t, db)
	stranger := seedUser(t, db)
	product := seedProduct(t, db, "Steak Knife Set", "64.00", 10)

	review, err := svc.CreateReview(owner.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	_, err = svc.UpdateReview(review.ID, stranger.ID, &UpdateReviewRequest{Rating: 1})
	assert.Error(t, err)
}

func TestDeleteReviewRecomputesAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	product := seedProduct(t, db, "Cleaver", "49.00", 10)

	high := seedUser(t, db)
	review, err := svc.CreateReview(high.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	low := seedUser(t, db)
	_, err = svc.CreateReview(low.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(review.ID, high.ID, false))

	reloaded := reloadProduct(t, db, product.ID)
	assert.EqualValues(t, 1, reloaded.TotalReviews)
	assert.Equal(t, 1.0, reloaded.AverageRating)
}

func TestMarkHelpfulOncePerUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	author := seedUser(t, db)
	product := seedProduct(t, db, "Kitchen Shears", "14.00", 10)

	review, err := svc.CreateReview(author.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	voter := seedUser(t, db)
	updated, err := svc.MarkHelpful(review.ID, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.HelpfulVotes)

	_, err = svc.MarkHelpful(review.ID, voter.ID)
	assert.True(t, errors.Is(err, ErrDuplicateVote))

	var stored models.Review
	require.NoError(t, db.First(&stored, "id = ?", review.ID).Error)
	assert.Equal(t, 1, stored.HelpfulVotes)
}

func TestReportThresholdHidesReview(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	author := seedUser(t, db)
	product := seedProduct(t, db, "Mandoline", "39.00", 10)

	review, err := svc.CreateReview(author.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)

	other := seedUser(t, db)
	_, err = svc.CreateReview(other.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	for i := 0; i < reportThreshold; i++ {
		reporter := seedUser(t, db)
		_, err = svc.Report(review.ID, reporter.ID, "spam")
		require.NoError(t, err)
	}

	var stored models.Review
	require.NoError(t, db.First(&stored, "id = ?", review.ID).Error)
	assert.False(t, stored.IsVisible)
	assert.Equal(t, reportThreshold, stored.ReportedCount)
	assert.NotEmpty(t, stored.ModerationNote)

	// Hidden reviews drop out of the product aggregate.
	reloaded := reloadProduct(t, db, product.ID)
	assert.EqualValues(t, 1, reloaded.TotalReviews)
	assert.Equal(t, 5.0, reloaded.AverageRating)
}

func TestReportCountFollowsVoteRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	author := seedUser(t, db)
	product := seedProduct(t, db, "Garlic Press", "11.00", 10)

	review, err := svc.CreateReview(author.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)

	for i := 0; i < reportThreshold-1; i++ {
		reporter := seedUser(t, db)
		_, err = svc.Report(review.ID, reporter.ID, "spam")
		require.NoError(t, err)
	}

	// Overwrite the counter with a stale value, as a racing reporter that
	// read before our writes would. The next report must still hide the
	// review because the counter is re-derived from the vote rows.
	require.NoError(t, db.Model(&models.Review{}).Where("id = ?", review.ID).
		Update("reported_count", reportThreshold-2).Error)

	last := seedUser(t, db)
	_, err = svc.Report(review.ID, last.ID, "spam")
	require.NoError(t, err)

	var stored models.Review
	require.NoError(t, db.First(&stored, "id = ?", review.ID).Error)
	assert.Equal(t, reportThreshold, stored.ReportedCount)
	assert.False(t, stored.IsVisible)
}

func TestGetReviewHiddenByModeration(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	author := seedUser(t, db)
	product := seedProduct(t, db, "Salad Spinner", "17.00", 10)

	review, err := svc.CreateReview(author.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Review{}).Where("id = ?", review.ID).
		Update("is_visible", false).Error)

	_, err = svc.GetReview(review.ID, nil, false)
	assert.True(t, errors.Is(err, ErrReviewNotFound))

	stranger := seedUser(t, db)
	_, err = svc.GetReview(review.ID, &stranger.ID, false)
	assert.True(t, errors.Is(err, ErrReviewNotFound))

	own, err := svc.GetReview(review.ID, &author.ID, false)
	require.NoError(t, err)
	assert.Equal(t, review.ID, own.ID)

	moderated, err := svc.GetReview(review.ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, review.ID, moderated.ID)
}

func TestReportOncePerUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	author := seedUser(t, db)
	product := seedProduct(t, db, "Peeler", "7.00", 10)

	review, err := svc.CreateReview(author.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)

	reporter := seedUser(t, db)
	_, err = svc.Report(review.ID, reporter.ID, "offensive")
	require.NoError(t, err)

	_, err = svc.Report(review.ID, reporter.ID, "offensive again")
	assert.True(t, errors.Is(err, ErrDuplicateReport))

	var stored models.Review
	require.NoError(t, db.First(&stored, "id = ?", review.ID).Error)
	assert.Equal(t, 1, stored.ReportedCount)
}

func TestProductReviewsSummary(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	product := seedProduct(t, db, "Whetstone", "27.00", 10)

	buyer := seedUser(t, db)
	deliveredOrder(t, db, buyer, product, 1)
	_, err := svc.CreateReview(buyer.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	casual := seedUser(t, db)
	_, err = svc.CreateReview(casual.ID, &CreateReviewRequest{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)

	reviews, total, summary, err := svc.ProductReviews(product.Slug, ReviewSearchParams{
		PaginationParams: defaultPagination(),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, reviews, 2)
	assert.Equal(t, 4.0, summary.AverageRating)
	assert.EqualValues(t, 1, summary.VerifiedReviews)
	assert.EqualValues(t, 1, summary.RatingDistribution[5])
	assert.EqualValues(t, 1, summary.RatingDistribution[3])
	assert.EqualValues(t, 0, summary.RatingDistribution[1])
}
