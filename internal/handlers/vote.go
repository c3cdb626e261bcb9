package handlers

import (
	"net/http"

	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

// VoteHandler 点赞/取消点赞
type VoteHandler struct {
	activity services.ActivityStreamService
}

func NewVoteHandler(activity services.ActivityStreamService) *VoteHandler {
	return &VoteHandler{activity: activity}
}

func (h *VoteHandler) Like(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.activity.Like(c.Request.Context(), id, currentUser(c).ID); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VoteHandler) Unlike(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.activity.Unlike(c.Request.Context(), id, currentUser(c).ID); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
