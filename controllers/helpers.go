package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artontop/artontop/middleware"
	"github.com/artontop/artontop/services"
	"github.com/artontop/artontop/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

// paramID parses the :id path segment. Non-numeric ids are treated as missing resources.
func paramID(ctx *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || n == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
		return 0, false
	}
	return uint(n), true
}

// respondError maps service errors onto the JSON envelope; anything unexpected is logged and hidden.
func respondError(ctx *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40300, "Access Denied")
	case errors.Is(err, services.ErrMissingData):
		utils.Error(ctx, http.StatusBadRequest, 40000, "missing data")
	case errors.Is(err, utils.ErrTooLarge):
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "file too large")
	case errors.Is(err, services.ErrInvalidInput):
		utils.Error(ctx, http.StatusBadRequest, 40001, err.Error())
	default:
		utils.Logger.Error(op,
			zap.Error(err),
			zap.String("path", ctx.Request.URL.Path),
			zap.Uint("user_id", currentUser(ctx)),
		)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}

func currentUser(ctx *gin.Context) uint {
	id, _ := getUserID(ctx)
	return id
}

// done answers a successful form submission with a redirect and JSON clients with the envelope.
func done(ctx *gin.Context, location string, data interface{}) {
	if utils.WantsJSON(ctx) {
		utils.Success(ctx, data)
		return
	}
	ctx.Redirect(http.StatusFound, location)
}

// optionalForm returns a pointer to the form value, or nil when the field was not submitted.
func optionalForm(ctx *gin.Context, key string) *string {
	if v, ok := ctx.GetPostForm(key); ok {
		return &v
	}
	return nil
}
