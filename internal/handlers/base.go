package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"agora/internal/apperr"
	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gin-gonic/gin"
)

// OK writes the success envelope.
func OK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
	})
}

// RenderError writes the failure envelope.
func RenderError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

// Fail maps a service error onto a status code. Internal causes never leave the process.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		RenderError(c, http.StatusNotFound, msg(err))
	case errors.Is(err, apperr.ErrInvalidArgument):
		RenderError(c, http.StatusBadRequest, msg(err))
	case errors.Is(err, apperr.ErrConstraintViolation):
		RenderError(c, http.StatusConflict, msg(err))
	default:
		RenderError(c, http.StatusInternalServerError, "操作失败，请稍后重试")
	}
}

func msg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// idParam 解析路径中的数字 ID，失败时直接写 400
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		RenderError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bind decodes the JSON body, writing 400 on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RenderError(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// currentUser is only called behind middleware.AuthRequired.
func currentUser(c *gin.Context) *models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}
