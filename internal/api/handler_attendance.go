package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/model"
)

// GetAttendance handles GET /api/students/:number/attendance.
func (h *Handler) GetAttendance(c *gin.Context) {
	number, ok := studentNumber(c)
	if !ok {
		return
	}
	summary, err := h.svc.AttendanceSummary(c.Request.Context(), number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AddAttendance handles POST /api/students/:number/attendance/:kind.
func (h *Handler) AddAttendance(c *gin.Context) {
	number, ok := studentNumber(c)
	if !ok {
		return
	}
	var entry model.AttendanceEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.svc.AddAttendance(c.Request.Context(), number, c.Param("kind"), entry)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateAttendance handles PUT /api/students/:number/attendance/:kind/:id.
func (h *Handler) UpdateAttendance(c *gin.Context) {
	number, ok := studentNumber(c)
	if !ok {
		return
	}
	var entry model.AttendanceEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.svc.UpdateAttendance(c.Request.Context(), number, c.Param("kind"), c.Param("id"), entry)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteAttendance handles DELETE /api/students/:number/attendance/:kind/:id.
func (h *Handler) DeleteAttendance(c *gin.Context) {
	number, ok := studentNumber(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAttendance(c.Request.Context(), number, c.Param("kind"), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
