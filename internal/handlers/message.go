package handlers

import (
	"net/http"

	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messages services.MessageService
}

func NewMessageHandler(messages services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type sendRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req sendRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.messages.Send(c.Request.Context(), currentUser(c).ID, req.ReceiverID, req.Text)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, NewMessageViews([]*models.PrivateMessage{m})[0])
}

func (h *MessageHandler) Inbox(c *gin.Context) {
	ms, err := h.messages.Inbox(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewMessageViews(ms))
}

func (h *MessageHandler) Outbox(c *gin.Context) {
	ms, err := h.messages.Outbox(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewMessageViews(ms))
}

// Conversation 与某个用户的往来私信
func (h *MessageHandler) Conversation(c *gin.Context) {
	other, ok := idParam(c, "id")
	if !ok {
		return
	}
	ms, err := h.messages.Conversation(c.Request.Context(), currentUser(c).ID, other)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, NewMessageViews(ms))
}

// Delete 只有发送者可以删除私信
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	m, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	if m.SenderID != currentUser(c).ID {
		RenderError(c, http.StatusForbidden, "permission denied")
		return
	}
	if err := h.messages.Delete(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
