package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artontop/artontop/services"
	"github.com/artontop/artontop/utils"
)

type RemixController struct {
	remixes  *services.RemixService
	maxBytes int64
}

func NewRemixController(remixes *services.RemixService, maxBytes int64) *RemixController {
	return &RemixController{remixes: remixes, maxBytes: maxBytes}
}

// bodyLimit is the JSON body size that can carry a maxBytes image as base64.
func (r *RemixController) bodyLimit() int64 {
	if r.maxBytes <= 0 {
		return 0
	}
	return (r.maxBytes+2)/3*4 + 4096
}

type saveRemixRequest struct {
	Image      string `json:"image"`
	OriginalID uint   `json:"original_id"`
}

// Save stores a canvas export posted as a base64 data URL.
func (r *RemixController) Save(ctx *gin.Context) {
	if limit := r.bodyLimit(); limit > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)
	}
	var req saveRemixRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "file too large")
			return
		}
		utils.Error(ctx, http.StatusBadRequest, 40000, "missing data")
		return
	}
	userID := currentUser(ctx)
	remix, err := r.remixes.Save(ctx.Request.Context(), userID, req.OriginalID, req.Image)
	if err != nil {
		respondError(ctx, err, "save remix")
		return
	}
	utils.Logger.Info("remix saved",
		zap.Uint("remix_id", remix.ID),
		zap.Uint("pub_id", remix.OriginalPubID),
		zap.String("file", remix.Image),
	)
	utils.Success(ctx, gin.H{"status": "success", "id": remix.ID, "image": remix.Image})
}

func (r *RemixController) Delete(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := r.remixes.Delete(ctx.Request.Context(), currentUser(ctx), id); err != nil {
		respondError(ctx, err, "delete remix")
		return
	}
	utils.Success(ctx, gin.H{"status": "success"})
}
