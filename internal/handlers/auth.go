package handlers

import (
	"errors"
	"net/http"
	"strings"

	"agora/internal/apperr"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users services.UserService
}

func NewAuthHandler(users services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册新用户，默认授予 USER 角色
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, NewUserView(user))
}

// Login 校验用户名和密码。会话由上游网关管理，这里只返回用户信息
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	user, err := h.users.FindByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		Fail(c, err)
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		RenderError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}
	OK(c, http.StatusOK, NewUserView(user))
}
