// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'customer'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Profile       *Profile       `json:"profile,omitempty" gorm:"foreignKey:UserID"`
	Addresses     []Address      `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	Cart          *Cart          `json:"cart,omitempty" gorm:"foreignKey:UserID"`
	Orders        []Order        `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	Reviews       []Review       `json:"reviews,omitempty" gorm:"foreignKey:UserID"`
	WishlistItems []WishlistItem `json:"wishlist_items,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

type Profile struct {
	BaseModel
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Phone   string    `json:"phone" gorm:"size:20"`
	Address string    `json:"address" gorm:"size:255"`
	Bio     string    `json:"bio" gorm:"type:text"`
}

type Address struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Label      string    `json:"label" gorm:"size:50"`
	Recipient  string    `json:"recipient" gorm:"size:100;not null"`
	Line1      string    `json:"line1" gorm:"size:255;not null"`
	Line2      string    `json:"line2" gorm:"size:255"`
	City       string    `json:"city" gorm:"size:100;not null"`
	PostalCode string    `json:"postal_code" gorm:"size:20"`
	Country    string    `json:"country" gorm:"size:100;not null"`
	IsDefault  bool      `json:"is_default" gorm:"default:false"`
}
