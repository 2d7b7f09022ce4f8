package handlers

import (
	"errors"
	"net/http"

	"redvine/internal/middleware"
	"redvine/internal/services"
	"redvine/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	voteService *services.VoteService
}

func NewVoteHandler(voteService *services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

type voteInput struct {
	Value int `json:"value"`
}

// Vote 处理投票 POST /posts/:id/vote {"value": 1}
// created 只在新增一票时为 true，改票和取消都是 false
func (h *VoteHandler) Vote(c *gin.Context) {
	currentUser := middleware.CurrentUser(c)

	postID := utils.StringToInt(c.Param("id"))
	if postID <= 0 {
		RenderError(c, http.StatusNotFound, "post not found")
		return
	}

	var input voteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.voteService.CastVote(c.Request.Context(), currentUser.ID, uint(postID), input.Value)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			RenderError(c, http.StatusNotFound, "post not found")
			return
		}
		RenderError(c, http.StatusInternalServerError, "failed to vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}
