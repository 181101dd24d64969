package models

import "time"

// ContentTypes is the fixed set of publication types, in display order.
var ContentTypes = []string{"Drawing", "Tutorial", "Pose", "Gamma", "Character Design", "Other"}

// AllTypes is the filter value that disables type filtering.
const AllTypes = "all"

// IsContentType reports whether t is one of ContentTypes.
func IsContentType(t string) bool {
	for _, c := range ContentTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Publication is a top-level shared image post.
type Publication struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Image       string    `gorm:"size:200" json:"image"`
	Description string    `gorm:"type:text" json:"description"`
	Hashtags    string    `gorm:"size:200" json:"hashtags"`
	PubType     string    `gorm:"size:50;index" json:"pub_type"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Title       string    `gorm:"size:100" json:"title"`
	Pinned      bool      `gorm:"default:false" json:"pinned"`
	CreatedAt   time.Time `json:"created_at"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"-"`

	// computed at query time
	AuthorName    string `gorm:"->;-:migration" json:"author_name"`
	LikesCount    int64  `gorm:"->;-:migration" json:"likes_count"`
	CommentsCount int64  `gorm:"->;-:migration" json:"comments_count"`
	RemixCount    int64  `gorm:"->;-:migration" json:"remix_count"`
	Liked         bool   `gorm:"->;-:migration" json:"liked"`
}
