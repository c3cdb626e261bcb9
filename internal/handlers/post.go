package handlers

import (
	"net/http"

	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	activity services.ActivityStreamService
}

func NewPostHandler(activity services.ActivityStreamService) *PostHandler {
	return &PostHandler{activity: activity}
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create 在社区中发布主题帖
func (h *PostHandler) Create(c *gin.Context) {
	communityID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req textRequest
	if !bind(c, &req) {
		return
	}
	post, err := h.activity.Publish(c.Request.Context(), communityID, currentUser(c).ID, req.Text)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, NewPostView(post))
}

// Reply 回复帖子，继承父帖所在社区
func (h *PostHandler) Reply(c *gin.Context) {
	parentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req textRequest
	if !bind(c, &req) {
		return
	}
	post, err := h.activity.Reply(c.Request.Context(), parentID, currentUser(c).ID, req.Text)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, NewPostView(post))
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, err := h.activity.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewPostView(post))
}

// Update 仅作者可以修改正文
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req textRequest
	if !bind(c, &req) {
		return
	}
	post, err := h.activity.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	if post.UserID != currentUser(c).ID {
		RenderError(c, http.StatusForbidden, "permission denied")
		return
	}
	if err := post.SetText(req.Text); err != nil {
		Fail(c, err)
		return
	}
	updated, err := h.activity.Update(c.Request.Context(), post)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewPostView(updated))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, err := h.activity.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	if post.UserID != currentUser(c).ID {
		RenderError(c, http.StatusForbidden, "permission denied")
		return
	}
	if err := h.activity.Delete(c.Request.Context(), post); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) ByUser(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	posts, err := h.activity.GetPostsForUser(c.Request.Context(), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewPostViews(posts))
}
