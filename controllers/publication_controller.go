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

// PublicationController serves the home feed and the publication lifecycle.
type PublicationController struct {
	feed      *services.FeedService
	pubs      *services.PublicationService
	uploadDir string
	maxBytes  int64
}

func NewPublicationController(feed *services.FeedService, pubs *services.PublicationService, uploadDir string, maxBytes int64) *PublicationController {
	return &PublicationController{feed: feed, pubs: pubs, uploadDir: uploadDir, maxBytes: maxBytes}
}

// Home returns the feed, or a grid page when the search parameter is present.
func (p *PublicationController) Home(ctx *gin.Context) {
	q := services.FeedQuery{
		PubType:  ctx.Query("pub_type"),
		ViewerID: currentUser(ctx),
	}
	if search, ok := ctx.GetQuery("search"); ok {
		q.Search = &search
		q.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	}

	res, err := p.feed.Home(ctx.Request.Context(), q)
	if err != nil {
		respondError(ctx, err, "load home")
		return
	}
	utils.Success(ctx, res)
}

// Publish stores the uploaded image and creates the publication.
func (p *PublicationController) Publish(ctx *gin.Context) {
	userID := currentUser(ctx)
	fh, err := ctx.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "missing data")
		return
	}

	name, err := utils.SaveImageUpload(fh, p.uploadDir, p.maxBytes)
	switch {
	case errors.Is(err, utils.ErrNotImage):
		utils.Error(ctx, http.StatusBadRequest, 40002, "file is not an image")
		return
	case errors.Is(err, utils.ErrTooLarge):
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "file too large")
		return
	case err != nil:
		respondError(ctx, err, "save upload")
		return
	}

	pub, err := p.pubs.Create(ctx.Request.Context(), userID, name, services.PublicationInput{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		Hashtags:    ctx.PostForm("hashtags"),
		PubType:     ctx.PostForm("pub_type"),
	})
	if err != nil {
		if rmErr := utils.RemoveUpload(p.uploadDir, name); rmErr != nil {
			utils.Logger.Warn("remove rejected upload", zap.String("file", name), zap.Error(rmErr))
		}
		respondError(ctx, err, "create publication")
		return
	}

	utils.Logger.Info("publication created", zap.Uint("pub_id", pub.ID), zap.Uint("user_id", userID))
	if utils.WantsJSON(ctx) {
		utils.Created(ctx, pub)
		return
	}
	ctx.Redirect(http.StatusFound, "/home")
}

// GetPost returns the detail modal data.
func (p *PublicationController) GetPost(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	d, err := p.pubs.Detail(ctx.Request.Context(), id, currentUser(ctx))
	if err != nil {
		respondError(ctx, err, "load publication")
		return
	}
	utils.Success(ctx, d)
}

type editRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Hashtags    *string `json:"hashtags"`
	PubType     *string `json:"pub_type"`
}

// Edit updates the text fields of the caller's own publication.
func (p *PublicationController) Edit(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	var in services.PublicationEdit
	if ctx.ContentType() == gin.MIMEJSON {
		var req editRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40000, "missing data")
			return
		}
		in = services.PublicationEdit{Title: req.Title, Description: req.Description, Hashtags: req.Hashtags, PubType: req.PubType}
	} else {
		in = services.PublicationEdit{
			Title:       optionalForm(ctx, "title"),
			Description: optionalForm(ctx, "description"),
			Hashtags:    optionalForm(ctx, "hashtags"),
			PubType:     optionalForm(ctx, "pub_type"),
		}
	}

	pub, err := p.pubs.Edit(ctx.Request.Context(), currentUser(ctx), id, in)
	if err != nil {
		respondError(ctx, err, "edit publication")
		return
	}
	done(ctx, "/home", pub)
}

// Delete removes the caller's own publication and everything attached to it.
func (p *PublicationController) Delete(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	userID := currentUser(ctx)
	if err := p.pubs.Delete(ctx.Request.Context(), userID, id); err != nil {
		respondError(ctx, err, "delete publication")
		return
	}
	utils.Logger.Info("publication deleted", zap.Uint("pub_id", id), zap.Uint("user_id", userID))
	done(ctx, "/home", gin.H{"deleted": id})
}

func (p *PublicationController) TogglePin(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	pub, err := p.pubs.TogglePin(ctx.Request.Context(), currentUser(ctx), id)
	if err != nil {
		respondError(ctx, err, "toggle pin")
		return
	}
	utils.Success(ctx, gin.H{"id": pub.ID, "pinned": pub.Pinned})
}

// Editor returns a publication with its remixes for the drawing page.
func (p *PublicationController) Editor(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	view, err := p.pubs.Editor(ctx.Request.Context(), id, currentUser(ctx))
	if err != nil {
		respondError(ctx, err, "load editor")
		return
	}
	utils.Success(ctx, view)
}
