package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/model"
)

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// GetAdmin handles GET /api/settings/admin.
func (h *Handler) GetAdmin(c *gin.Context) {
	info, err := h.svc.AdminInfo(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// PutAdmin handles PUT /api/settings/admin.
func (h *Handler) PutAdmin(c *gin.Context) {
	var info model.AdminInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.SetAdminInfo(c.Request.Context(), info); err != nil {
		h.fail(c, err)
		return
	}
	h.GetAdmin(c)
}

// GetAttendanceSettings handles GET /api/settings/attendance.
func (h *Handler) GetAttendanceSettings(c *gin.Context) {
	settings, err := h.svc.AttendanceSettings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutAttendanceSettings handles PUT /api/settings/attendance.
func (h *Handler) PutAttendanceSettings(c *gin.Context) {
	var settings model.AttendanceSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.SetAttendanceSettings(c.Request.Context(), settings); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetAPIKey handles GET /api/settings/api-key. The key itself is never
// returned.
func (h *Handler) GetAPIKey(c *gin.Context) {
	ok, err := h.svc.HasAPIKey(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": ok})
}

// PutAPIKey handles PUT /api/settings/api-key.
func (h *Handler) PutAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.SetAPIKey(c.Request.Context(), req.APIKey); err != nil {
		h.fail(c, err)
		return
	}
	h.GetAPIKey(c)
}
