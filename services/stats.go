package services

import "gorm.io/gorm"

const publicationStatsSelect = "publications.*, COALESCE(users.username, 'Unknown') AS author_name, " +
	"(SELECT COUNT(*) FROM publication_likes WHERE publication_likes.pub_id = publications.id) AS likes_count, " +
	"(SELECT COUNT(*) FROM publication_comments WHERE publication_comments.pub_id = publications.id) AS comments_count, " +
	"(SELECT COUNT(*) FROM remixes WHERE remixes.original_pub_id = publications.id) AS remix_count"

const remixStatsSelect = "remixes.*, COALESCE(users.username, 'Unknown') AS author_name, " +
	"(SELECT COUNT(*) FROM remix_likes WHERE remix_likes.remix_id = remixes.id) AS likes_count, " +
	"(SELECT COUNT(*) FROM remix_comments WHERE remix_comments.remix_id = remixes.id) AS comments_count"

// withPublicationStats selects publications with author name, counters and the viewer's like flag.
func withPublicationStats(db *gorm.DB, viewerID uint) *gorm.DB {
	q := db.Table("publications").Joins("LEFT JOIN users ON users.id = publications.author_id")
	if viewerID != 0 {
		return q.Select(publicationStatsSelect+
			", EXISTS(SELECT 1 FROM publication_likes pl WHERE pl.pub_id = publications.id AND pl.user_id = ?) AS liked", viewerID)
	}
	return q.Select(publicationStatsSelect + ", false AS liked")
}

// withRemixStats is withPublicationStats for remixes.
func withRemixStats(db *gorm.DB, viewerID uint) *gorm.DB {
	q := db.Table("remixes").Joins("LEFT JOIN users ON users.id = remixes.author_id")
	if viewerID != 0 {
		return q.Select(remixStatsSelect+
			", EXISTS(SELECT 1 FROM remix_likes rl WHERE rl.remix_id = remixes.id AND rl.user_id = ?) AS liked", viewerID)
	}
	return q.Select(remixStatsSelect + ", false AS liked")
}
