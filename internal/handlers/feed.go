package handlers

import (
	"errors"
	"net/http"

	"redvine/internal/middleware"
	"redvine/internal/services"
	"redvine/internal/utils"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedService *services.FeedService
}

func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// List 帖子流 GET /posts?limit=20&cursor=1700000000000
// 登录用户额外带上自己的投票状态
func (h *FeedHandler) List(c *gin.Context) {
	limit := utils.StringToInt(c.DefaultQuery("limit", "20"))

	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	var viewerID *uint
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = &user.ID
	}

	page, err := h.feedService.ListPosts(c.Request.Context(), limit, cursor, viewerID)
	if err != nil {
		if errors.Is(err, services.ErrBadCursor) {
			RenderError(c, http.StatusBadRequest, "invalid cursor")
			return
		}
		RenderError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	c.JSON(http.StatusOK, page)
}
