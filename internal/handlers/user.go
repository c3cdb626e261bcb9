package handlers

import (
	"net/http"

	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	views := make([]*UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	OK(c, http.StatusOK, views)
}

func (h *UserHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewUserView(user))
}

func (h *UserHandler) Me(c *gin.Context) {
	OK(c, http.StatusOK, NewUserView(currentUser(c)))
}

func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.users.Profile(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, profile)
}

type profileRequest struct {
	Firstname    string `json:"firstname" binding:"required"`
	Lastname     string `json:"lastname" binding:"required"`
	Address      string `json:"address"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Email        string `json:"email"`
	PicturePath  string `json:"picture_path"`
	Description  string `json:"description"`
}

// UpdateSettings 保存当前用户的资料
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req profileRequest
	if !bind(c, &req) {
		return
	}
	profile := &models.UserProfile{
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		Address:      req.Address,
		Postcode:     req.Postcode,
		City:         req.City,
		Country:      req.Country,
		Phone:        req.Phone,
		Organization: req.Organization,
		Email:        req.Email,
		PicturePath:  req.PicturePath,
		Description:  req.Description,
	}
	saved, err := h.users.SaveProfile(c.Request.Context(), currentUser(c).ID, profile)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, saved)
}
