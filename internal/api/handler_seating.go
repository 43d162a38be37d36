package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/classroom"
	"classroom-backend/internal/seating"
)

type columnsRequest struct {
	Columns int `json:"columns" binding:"required,min=1,max=50"`
}

type saveSeatingRequest struct {
	Assignment map[string]int `json:"assignment" binding:"required"`
}

// GenerateSeating handles POST /api/seating/generate. An empty body runs a
// random generation with the stored column count.
func (h *Handler) GenerateSeating(c *gin.Context) {
	var req classroom.GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	res, err := h.svc.GenerateSeating(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetColumns handles GET /api/seating/columns.
func (h *Handler) GetColumns(c *gin.Context) {
	columns, err := h.svc.Columns(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

// PutColumns handles PUT /api/seating/columns.
func (h *Handler) PutColumns(c *gin.Context) {
	var req columnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.SetColumns(c.Request.Context(), req.Columns); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": req.Columns})
}

// GetHistory handles GET /api/seating/history.
func (h *Handler) GetHistory(c *gin.Context) {
	history, err := h.svc.SeatingHistory(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// SaveHistory handles POST /api/seating/history.
func (h *Handler) SaveHistory(c *gin.Context) {
	var req saveSeatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.SaveSeating(c.Request.Context(), req.Assignment)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusCreated
	if res.Overwritten {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// LoadHistory handles GET /api/seating/history/:date.
func (h *Handler) LoadHistory(c *gin.Context) {
	columns := 0
	if raw := c.Query("columns"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !seating.ValidColumns(n) {
			badRequest(c, "Invalid columns")
			return
		}
		columns = n
	}

	date := c.Param("date")
	grid, err := h.svc.LoadSeating(c.Request.Context(), date, columns)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":       date,
		"grid":       grid,
		"assignment": grid.Assignment(),
	})
}
