package handlers

import (
	"net/http"

	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contacts services.ContactService
}

func NewContactHandler(contacts services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		Fail(c, err)
		return
	}
	ids := make([]uint, 0, len(contacts))
	for _, ct := range contacts {
		ids = append(ids, ct.ContactID)
	}
	OK(c, http.StatusOK, gin.H{"contact_ids": ids})
}

func (h *ContactHandler) Add(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.contacts.Add(c.Request.Context(), currentUser(c).ID, id); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContactHandler) Remove(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.contacts.Remove(c.Request.Context(), currentUser(c).ID, id); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
