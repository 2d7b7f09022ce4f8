package handlers

import (
	"errors"
	"net/http"

	"redvine/internal/middleware"
	"redvine/internal/services"
	"redvine/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService *services.PostService
	voteService *services.VoteService
}

func NewPostHandler(postService *services.PostService, voteService *services.VoteService) *PostHandler {
	return &PostHandler{
		postService: postService,
		voteService: voteService,
	}
}

type postInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (h *PostHandler) Create(c *gin.Context) {
	currentUser := middleware.CurrentUser(c)

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Title == "" {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "title", Message: "title is required"})
		return
	}

	post, err := h.postService.Create(c.Request.Context(), currentUser.ID, input.Title, input.Text)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to create post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": services.PostViewFromModel(post, nil)})
}

// Detail 帖子详情 GET /posts/:id
func (h *PostHandler) Detail(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))
	if id <= 0 {
		RenderError(c, http.StatusNotFound, "post not found")
		return
	}

	post, err := h.postService.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			RenderError(c, http.StatusNotFound, "post not found")
			return
		}
		RenderError(c, http.StatusInternalServerError, "failed to load post")
		return
	}

	// 登录用户要看到自己在这个帖子上的投票方向，和列表页一致
	var voteStatus *int
	if viewer := middleware.CurrentUser(c); viewer != nil {
		voteStatus, err = h.voteService.Status(c.Request.Context(), viewer.ID, uint(id))
		if err != nil {
			RenderError(c, http.StatusInternalServerError, "failed to load post")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"post": services.PostViewFromModel(post, voteStatus)})
}

// Update 只有作者能改自己的帖子，别人的帖子表现为 404
func (h *PostHandler) Update(c *gin.Context) {
	currentUser := middleware.CurrentUser(c)

	id := utils.StringToInt(c.Param("id"))
	if id <= 0 {
		RenderError(c, http.StatusNotFound, "post not found")
		return
	}

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.Update(c.Request.Context(), currentUser.ID, uint(id), input.Title, input.Text)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			RenderError(c, http.StatusNotFound, "post not found")
			return
		}
		RenderError(c, http.StatusInternalServerError, "failed to update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": services.PostViewFromModel(post, nil)})
}

func (h *PostHandler) Delete(c *gin.Context) {
	currentUser := middleware.CurrentUser(c)

	id := utils.StringToInt(c.Param("id"))
	if id <= 0 {
		RenderError(c, http.StatusNotFound, "post not found")
		return
	}

	if err := h.postService.Delete(c.Request.Context(), currentUser.ID, uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			RenderError(c, http.StatusNotFound, "post not found")
		case errors.Is(err, services.ErrNotAuthorized):
			RenderError(c, http.StatusForbidden, "not authorized")
		default:
			RenderError(c, http.StatusInternalServerError, "failed to delete post")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
