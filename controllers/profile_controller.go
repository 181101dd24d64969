package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artontop/artontop/services"
	"github.com/artontop/artontop/utils"
)

// ProfileController serves user profiles and subscriptions.
type ProfileController struct {
	profiles  *services.ProfileService
	uploadDir string
	maxBytes  int64
}

func NewProfileController(profiles *services.ProfileService, uploadDir string, maxBytes int64) *ProfileController {
	return &ProfileController{profiles: profiles, uploadDir: uploadDir, maxBytes: maxBytes}
}

// Show returns a public profile with the viewer's relation to it.
func (p *ProfileController) Show(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	profile, err := p.profiles.Get(ctx.Request.Context(), id, currentUser(ctx))
	if err != nil {
		respondError(ctx, err, "load profile")
		return
	}
	utils.Success(ctx, profile)
}

// Edit updates the caller's username, bio and optionally avatar.
func (p *ProfileController) Edit(ctx *gin.Context) {
	userID := currentUser(ctx)
	in := services.ProfileUpdate{
		Username: optionalForm(ctx, "username"),
		Bio:      optionalForm(ctx, "bio"),
	}
	if fh, err := ctx.FormFile("avatar"); err == nil {
		name, err := utils.SaveImageUpload(fh, p.uploadDir, p.maxBytes)
		switch {
		case errors.Is(err, utils.ErrNotImage):
			utils.Error(ctx, http.StatusBadRequest, 40002, "file is not an image")
			return
		case errors.Is(err, utils.ErrTooLarge):
			utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "file too large")
			return
		case err != nil:
			respondError(ctx, err, "save avatar")
			return
		}
		in.Avatar = name
	}

	user, err := p.profiles.Update(ctx.Request.Context(), userID, in)
	if err != nil {
		if in.Avatar != "" {
			if rmErr := utils.RemoveUpload(p.uploadDir, in.Avatar); rmErr != nil {
				utils.Logger.Warn("remove rejected avatar", zap.String("file", in.Avatar), zap.Error(rmErr))
			}
		}
		respondError(ctx, err, "update profile")
		return
	}
	done(ctx, "/profile/"+strconv.FormatUint(uint64(userID), 10), user)
}

func (p *ProfileController) ToggleSubscription(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	res, err := p.profiles.ToggleSubscription(ctx.Request.Context(), currentUser(ctx), id)
	if err != nil {
		respondError(ctx, err, "toggle subscription")
		return
	}
	utils.Success(ctx, res)
}
