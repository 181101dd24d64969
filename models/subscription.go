package models

import "time"

// Subscription means FollowerID follows FollowingID.
type Subscription struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_subscription_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
