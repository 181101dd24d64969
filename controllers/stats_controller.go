package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

// StatsController provides site statistics such as counts and today's page views.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the gallery.
func (s *StatsController) GetStats(ctx *gin.Context) {
	db := s.db.WithContext(ctx.Request.Context())
	count := func(model interface{}) int64 {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			// Fallback to 0 instead of failing the whole endpoint
			return 0
		}
		return n
	}

	var dailyViews int64
	midnight := models.PageViewDay(time.Now())
	if err := db.Model(&models.PageView{}).
		Where("date >= ? AND date < ?", midnight, midnight.AddDate(0, 0, 1)).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyViews).Error; err != nil {
		dailyViews = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":        count(&models.User{}),
		"publication_count": count(&models.Publication{}),
		"remix_count":       count(&models.Remix{}),
		"comment_count":     count(&models.PublicationComment{}) + count(&models.RemixComment{}),
		"like_count":        count(&models.PublicationLike{}) + count(&models.RemixLike{}),
		"daily_view_count":  dailyViews,
	})
}
