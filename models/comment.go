package models

import "time"

// PublicationComment is a reply left under a publication.
type PublicationComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PubID     uint      `gorm:"index;not null" json:"pub_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
}

// RemixComment is a reply left under a remix.
type RemixComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RemixID   uint      `gorm:"index;not null" json:"remix_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
}
