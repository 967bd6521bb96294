// internal/models/inventory.go
package models

import (
	"github.com/google/uuid"
)

// StockMovement narrates a change to a Product's stock count. A movement is
// only ever written in the same transaction that mutates Product.Stock, so
// the ledger and the counter cannot drift apart.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID         `json:"product_id" gorm:"type:uuid;not null;index"`
	Type      StockMovementType `json:"type" gorm:"type:varchar(10);not null"`
	Quantity  int               `json:"quantity" gorm:"not null"`
	Reason    string            `json:"reason" gorm:"size:255"`
	CreatedBy *uuid.UUID        `json:"created_by" gorm:"type:uuid"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
