package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/artontop/artontop/config"
	"github.com/artontop/artontop/middleware"
	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/services"
	"github.com/artontop/artontop/utils"
)

// AuthController handles registration, login and logout. Form errors are plain text, as the pages expect.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type credentials struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Register creates a local account with a bcrypt hash.
func (a *AuthController) Register(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.String(http.StatusBadRequest, "Missing data")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		ctx.String(http.StatusBadRequest, "Invalid email")
		return
	}
	if !utils.ValidPassword(req.Password) {
		ctx.String(http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	var existing int64
	if err := a.db.WithContext(ctx.Request.Context()).Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		utils.Logger.Error("register lookup", zap.Error(err))
		ctx.String(http.StatusInternalServerError, "Internal error")
		return
	}
	if existing > 0 {
		ctx.String(http.StatusConflict, "Email exists!")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "Internal error")
		return
	}
	user := models.User{
		Username:     utils.Sanitize(services.UsernameOrDefault(req.Name, req.Email)),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := a.db.WithContext(ctx.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.String(http.StatusConflict, "Email exists!")
			return
		}
		utils.Logger.Error("register create", zap.Error(err))
		ctx.String(http.StatusInternalServerError, "Internal error")
		return
	}

	utils.Logger.Info("user registered", zap.Uint("user_id", user.ID))
	if utils.WantsJSON(ctx) {
		utils.Created(ctx, user)
		return
	}
	ctx.Redirect(http.StatusFound, "/login")
}

// Login checks the credentials and sets the session cookie.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.String(http.StatusBadRequest, "Missing data")
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := a.db.WithContext(ctx.Request.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		ctx.String(http.StatusUnauthorized, "Error: Wrong credentials")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		ctx.String(http.StatusUnauthorized, "Error: Wrong credentials")
		return
	}

	token, claims, err := utils.IssueSession(user.ID)
	if err != nil {
		utils.Logger.Error("issue session", zap.Error(err))
		ctx.String(http.StatusInternalServerError, "Internal error")
		return
	}
	setSessionCookie(ctx, token, int(time.Until(claims.ExpiresAt.Time).Seconds()))

	if utils.WantsJSON(ctx) {
		utils.Success(ctx, gin.H{"token": token, "user": user})
		return
	}
	ctx.Redirect(http.StatusFound, "/home")
}

// Logout revokes the session until its expiry and clears the cookie. It never fails.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token := middleware.SessionToken(ctx); token != "" {
		if claims, err := utils.ParseSession(token); err == nil && claims.ExpiresAt != nil {
			utils.RevokeSession(claims.ID, claims.ExpiresAt.Time)
		}
	}
	setSessionCookie(ctx, "", -1)
	ctx.Redirect(http.StatusFound, "/")
}

func setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	cfg := config.Get()
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(cfg.SessionCookie, value, maxAge, "/", "", cfg.SecureCookie, true)
}
