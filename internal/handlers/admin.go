package handlers

import (
	"context"
	"net/http"

	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler 社区审核与角色管理，路由层负责角色校验
type AdminHandler struct {
	communities services.CommunityService
	users       services.UserService
}

func NewAdminHandler(communities services.CommunityService, users services.UserService) *AdminHandler {
	return &AdminHandler{communities: communities, users: users}
}

func (h *AdminHandler) Approve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	community, err := h.communities.Approve(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewCommunityView(community))
}

func (h *AdminHandler) Refuse(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	community, err := h.communities.Refuse(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewCommunityView(community))
}

type roleRequest struct {
	Code int `json:"code" binding:"required"`
}

func (h *AdminHandler) AssignRole(c *gin.Context) {
	h.changeRole(c, h.users.AssignRole)
}

func (h *AdminHandler) RevokeRole(c *gin.Context) {
	h.changeRole(c, h.users.RevokeRole)
}

func (h *AdminHandler) changeRole(c *gin.Context, change func(ctx context.Context, userID uint, code int) (*models.User, error)) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	user, err := change(c.Request.Context(), id, req.Code)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewUserView(user))
}
