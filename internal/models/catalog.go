// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name string `json:"name" gorm:"size:200;not null;index"`
	Slug string `json:"slug" gorm:"size:200;uniqueIndex;not null"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	CategoryID    uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	Name          string          `json:"name" gorm:"size:255;not null;index"`
	Slug          string          `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock         int             `json:"stock" gorm:"not null;default:0"`
	Available     bool            `json:"available" gorm:"default:true;index"`
	Tags          pq.StringArray  `json:"tags" gorm:"type:text[]"`
	AverageRating float64         `json:"average_rating" gorm:"type:decimal(3,2);default:0"`
	TotalReviews  int64           `json:"total_reviews" gorm:"default:0"`

	// Relationships
	Category       Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images         []ProductImage  `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	Reviews        []Review        `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
	StockMovements []StockMovement `json:"stock_movements,omitempty" gorm:"foreignKey:ProductID"`
}

// InStock reports whether the product can currently be ordered.
func (p *Product) InStock() bool {
	return p.Available && p.Stock > 0
}

type ProductImage struct {
	BaseModel
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	URL        string    `json:"url" gorm:"size:512;not null"`
	Thumbnails JSONB     `json:"thumbnails" gorm:"type:jsonb"`
	AltText    string    `json:"alt_text" gorm:"size:255"`
	IsPrimary  bool      `json:"is_primary" gorm:"default:false"`
}
