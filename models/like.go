package models

import "time"

// PublicationLike records one user's like on a publication.
// The (pub_id, user_id) pair is unique; the index is what keeps concurrent toggles honest.
type PublicationLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PubID     uint      `gorm:"not null;uniqueIndex:idx_pub_like_pair" json:"pub_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_pub_like_pair;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RemixLike records one user's like on a remix.
type RemixLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RemixID   uint      `gorm:"not null;uniqueIndex:idx_remix_like_pair" json:"remix_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_remix_like_pair;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
