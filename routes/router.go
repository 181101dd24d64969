package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/artontop/artontop/config"
	"github.com/artontop/artontop/controllers"
	"github.com/artontop/artontop/middleware"
	"github.com/artontop/artontop/services"
	"github.com/artontop/artontop/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20
	// request log goes to its own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.PageViewRecorder(db, "/", "/home", "/publish", "/profile/:id", "/editor/:id"))

	r.Static("/static", "./static")
	r.Static("/uploads", cfg.UploadDir)

	page := func(file string) gin.HandlerFunc {
		return func(c *gin.Context) { c.File("./static/" + file) }
	}
	r.GET("/", page("index.html"))
	r.GET("/auth", page("auth.html"))
	r.GET("/register", page("register.html"))
	r.GET("/login", page("login.html"))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	maxBytes := int64(cfg.MaxUploadMB) << 20
	remixService := services.NewRemixService(db, cfg.UploadDir, maxBytes)
	pubService := services.NewPublicationService(db, cfg.UploadDir, remixService)
	profileService := services.NewProfileService(db, cfg.UploadDir, pubService, remixService)

	authController := controllers.NewAuthController(db)
	pubController := controllers.NewPublicationController(services.NewFeedService(db), pubService, cfg.UploadDir, maxBytes)
	remixController := controllers.NewRemixController(remixService, maxBytes)
	engagementController := controllers.NewEngagementController(services.NewEngagementService(db))
	profileController := controllers.NewProfileController(profileService, cfg.UploadDir, maxBytes)
	statsController := controllers.NewStatsController(db)

	limited := r.Group("")
	limited.Use(middleware.RateLimitMiddleware())
	limited.POST("/register", authController.Register)
	limited.POST("/login", authController.Login)
	r.GET("/logout", authController.Logout)

	r.GET("/stats", statsController.GetStats)

	pages := r.Group("")
	pages.Use(middleware.PageAuthRequired())
	pages.GET("/home", pubController.Home)
	pages.GET("/publish", page("publish.html"))
	pages.POST("/publish", pubController.Publish)

	api := r.Group("")
	api.Use(middleware.AuthRequired())
	api.GET("/delete/:id", pubController.Delete)
	api.GET("/get_post/:id", pubController.GetPost)
	api.POST("/edit/:id", pubController.Edit)
	api.POST("/toggle_pin/:id", pubController.TogglePin)
	api.GET("/editor/:id", pubController.Editor)

	api.POST("/save_remix", remixController.Save)
	api.POST("/delete_remix/:id", remixController.Delete)

	api.POST("/add_pub_comment", engagementController.AddPublicationComment)
	api.POST("/add_remix_comment", engagementController.AddRemixComment)
	api.GET("/get_pub_comments/:id", engagementController.PublicationComments)
	api.GET("/get_remix_comments/:id", engagementController.RemixComments)
	api.POST("/delete_pub_comment/:id", engagementController.DeletePublicationComment)
	api.POST("/delete_remix_comment/:id", engagementController.DeleteRemixComment)
	api.POST("/toggle_pub_like/:id", engagementController.TogglePublicationLike)
	api.POST("/toggle_remix_like/:id", engagementController.ToggleRemixLike)

	api.GET("/profile/:id", profileController.Show)
	api.POST("/profile/edit", profileController.Edit)
	api.POST("/toggle_subscription/:id", profileController.ToggleSubscription)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/static/") || strings.HasPrefix(ctx.Request.URL.Path, "/uploads/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "asset not found"})
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
