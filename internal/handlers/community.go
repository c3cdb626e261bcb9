package handlers

import (
	"net/http"

	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	communities services.CommunityService
	activity    services.ActivityStreamService
}

func NewCommunityHandler(communities services.CommunityService, activity services.ActivityStreamService) *CommunityHandler {
	return &CommunityHandler{communities: communities, activity: activity}
}

type createCommunityRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create 申请新社区，初始为 PENDING
func (h *CommunityHandler) Create(c *gin.Context) {
	var req createCommunityRequest
	if !bind(c, &req) {
		return
	}
	community, err := h.communities.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, NewCommunityView(community))
}

func (h *CommunityHandler) List(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		community, err := h.communities.FindByName(c.Request.Context(), name)
		if err != nil {
			Fail(c, err)
			return
		}
		OK(c, http.StatusOK, []CommunityView{NewCommunityView(community)})
		return
	}
	communities, err := h.communities.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewCommunityViews(communities))
}

func (h *CommunityHandler) Pending(c *gin.Context) {
	communities, err := h.communities.Pending(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewCommunityViews(communities))
}

func (h *CommunityHandler) Approved(c *gin.Context) {
	communities, err := h.communities.Approved(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewCommunityViews(communities))
}

func (h *CommunityHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	community, err := h.communities.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewCommunityView(community))
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.communities.Delete(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.communities.Join(c.Request.Context(), id, currentUser(c).ID); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.communities.Leave(c.Request.Context(), id, currentUser(c).ID); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Posts 社区下的全部帖子，按 ID 排序
func (h *CommunityHandler) Posts(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.communities.Get(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}
	posts, err := h.activity.GetPostsForCommunity(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewPostViews(posts))
}
