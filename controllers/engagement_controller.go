package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artontop/artontop/services"
	"github.com/artontop/artontop/utils"
)

// EngagementController exposes likes and comments for publications and remixes.
type EngagementController struct {
	svc *services.EngagementService
}

func NewEngagementController(svc *services.EngagementService) *EngagementController {
	return &EngagementController{svc: svc}
}

type commentRequest struct {
	PubID   uint   `json:"pub_id"`
	RemixID uint   `json:"remix_id"`
	Text    string `json:"text"`
}

func (e *EngagementController) TogglePublicationLike(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	res, err := e.svc.TogglePublicationLike(ctx.Request.Context(), currentUser(ctx), id)
	if err != nil {
		respondError(ctx, err, "toggle publication like")
		return
	}
	utils.Success(ctx, res)
}

func (e *EngagementController) ToggleRemixLike(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	res, err := e.svc.ToggleRemixLike(ctx.Request.Context(), currentUser(ctx), id)
	if err != nil {
		respondError(ctx, err, "toggle remix like")
		return
	}
	utils.Success(ctx, res)
}

func (e *EngagementController) AddPublicationComment(ctx *gin.Context) {
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "missing data")
		return
	}
	c, err := e.svc.AddPublicationComment(ctx.Request.Context(), currentUser(ctx), req.PubID, req.Text)
	if err != nil {
		respondError(ctx, err, "add publication comment")
		return
	}
	utils.Success(ctx, c)
}

func (e *EngagementController) AddRemixComment(ctx *gin.Context) {
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "missing data")
		return
	}
	c, err := e.svc.AddRemixComment(ctx.Request.Context(), currentUser(ctx), req.RemixID, req.Text)
	if err != nil {
		respondError(ctx, err, "add remix comment")
		return
	}
	utils.Success(ctx, c)
}

func (e *EngagementController) PublicationComments(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	list, err := e.svc.PublicationComments(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, "list publication comments")
		return
	}
	utils.Success(ctx, list)
}

func (e *EngagementController) RemixComments(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	list, err := e.svc.RemixComments(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, "list remix comments")
		return
	}
	utils.Success(ctx, list)
}

func (e *EngagementController) DeletePublicationComment(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := e.svc.DeletePublicationComment(ctx.Request.Context(), currentUser(ctx), id); err != nil {
		respondError(ctx, err, "delete publication comment")
		return
	}
	utils.Success(ctx, gin.H{"status": "success"})
}

func (e *EngagementController) DeleteRemixComment(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := e.svc.DeleteRemixComment(ctx.Request.Context(), currentUser(ctx), id); err != nil {
		respondError(ctx, err, "delete remix comment")
		return
	}
	utils.Success(ctx, gin.H{"status": "success"})
}
