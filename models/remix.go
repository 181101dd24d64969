package models

import "time"

// Remix is a derivative image drawn over a publication.
type Remix struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Image         string      `gorm:"size:200" json:"image"`
	OriginalPubID uint        `gorm:"index;not null" json:"original_pub_id"`
	AuthorID      uint        `gorm:"index;not null" json:"author_id"`
	CreatedAt     time.Time   `json:"created_at"`
	Original      Publication `gorm:"foreignKey:OriginalPubID" json:"-"`
	Author        User        `gorm:"foreignKey:AuthorID" json:"-"`

	AuthorName    string `gorm:"->;-:migration" json:"author_name"`
	LikesCount    int64  `gorm:"->;-:migration" json:"likes_count"`
	CommentsCount int64  `gorm:"->;-:migration" json:"comments_count"`
	Liked         bool   `gorm:"->;-:migration" json:"liked"`
}
