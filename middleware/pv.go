package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

// PageViewRecorder counts successful GET hits on the given route patterns per day and path.
// JSON endpoints, assets and health checks are left out by not listing them.
func PageViewRecorder(db *gorm.DB, pages ...string) gin.HandlerFunc {
	tracked := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		tracked[p] = struct{}{}
	}

	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		if _, ok := tracked[c.FullPath()]; !ok {
			return
		}

		// full path, so /profile/3 and /profile/4 count separately
		path := c.Request.URL.Path
		now := time.Now()
		err := db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("page_views.count + 1"), "updated_at": now}),
		}).Create(&models.PageView{Date: models.PageViewDay(now), Path: path, Count: 1}).Error
		if err != nil {
			utils.Logger.Debug("record page view", zap.String("path", path), zap.Error(err))
		}
	}
}
