// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseModel
	UserID             uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	ProductID          uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	Rating             int        `json:"rating" gorm:"not null"`
	Title              string     `json:"title" gorm:"size:255"`
	Comment            string     `json:"comment" gorm:"type:text"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase" gorm:"default:false"`
	HelpfulVotes       int        `json:"helpful_votes" gorm:"default:0"`
	ReportedCount      int        `json:"reported_count" gorm:"default:0"`
	IsVisible          bool       `json:"is_visible" gorm:"default:true;index"`
	ModerationNote     string     `json:"moderation_note,omitempty" gorm:"type:text"`
	OrderItemID        *uuid.UUID `json:"order_item_id,omitempty" gorm:"type:uuid"`

	User    User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Images  []ReviewImage `json:"images,omitempty" gorm:"foreignKey:ReviewID"`
}

type ReviewImage struct {
	BaseModel
	ReviewID   uuid.UUID `json:"review_id" gorm:"type:uuid;not null;index"`
	URL        string    `json:"url" gorm:"size:512;not null"`
	Thumbnails JSONB     `json:"thumbnails" gorm:"type:jsonb"`
}

// ReviewVote records one helpful vote or report per user per review, so the
// counters on Review cannot be inflated by repeated calls.
type ReviewVote struct {
	BaseModel
	ReviewID uuid.UUID      `json:"review_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_votes_review_user_kind"`
	UserID   uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_votes_review_user_kind"`
	Kind     ReviewVoteKind `json:"kind" gorm:"type:varchar(10);not null;uniqueIndex:idx_review_votes_review_user_kind"`
	Reason   string         `json:"reason,omitempty" gorm:"size:255"`
}
