package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type messageRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text" binding:"required"`
}

// GetMessages handles GET /api/messages.
func (h *Handler) GetMessages(c *gin.Context) {
	messages, err := h.svc.Messages(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// AddMessage handles POST /api/messages. Analysis runs in the background;
// the entry is returned as pending.
func (h *Handler) AddMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	entry, err := h.svc.AddMessage(c.Request.Context(), req.Sender, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, entry)
}

// DeleteMessage handles DELETE /api/messages/:id.
func (h *Handler) DeleteMessage(c *gin.Context) {
	if err := h.svc.DeleteMessage(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBriefing handles GET /api/briefing.
func (h *Handler) GetBriefing(c *gin.Context) {
	text, err := h.svc.LastBriefing(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"briefing": text})
}

// GenerateBriefing handles POST /api/briefing.
func (h *Handler) GenerateBriefing(c *gin.Context) {
	text, err := h.svc.GenerateBriefing(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"briefing": text})
}
