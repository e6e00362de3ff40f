// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'customer'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	FullName     string     `json:"full_name" gorm:"size:255"`
	AvatarURL    string     `json:"avatar_url" gorm:"size:500"`
	Phone        string     `json:"phone" gorm:"size:30"`
	Country      string     `json:"country" gorm:"size:100"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	PasswordResetToken  string     `json:"-" gorm:"size:64;index"`
	PasswordResetExpiry *time.Time `json:"-"`

	// Relationships
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:UserID"`
	Wishlist  []Wishlist `json:"wishlist,omitempty" gorm:"foreignKey:UserID"`
	Reviews   []Review   `json:"reviews,omitempty" gorm:"foreignKey:UserID"`
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
