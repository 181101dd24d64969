package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultAvatar is assigned to accounts that never uploaded their own picture.
const DefaultAvatar = "default_avatar.svg"

// User is a registered artist. Passwords are stored as bcrypt hashes only.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:80" json:"username"`
	Email            string    `gorm:"size:120;uniqueIndex;not null" json:"-"`
	PasswordHash     string    `gorm:"size:200;not null" json:"-"`
	Avatar           string    `gorm:"size:200;default:'default_avatar.svg'" json:"avatar"`
	Bio              string    `gorm:"type:text" json:"bio"`
	Rating           int       `gorm:"default:0" json:"rating"`
	SubscribersCount int       `gorm:"default:0" json:"subscribers_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"-"`
}

// BeforeCreate fills the avatar when the caller left it blank.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	return nil
}
