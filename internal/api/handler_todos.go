package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type todoRequest struct {
	Text string `json:"text" binding:"required"`
}

// GetTodos handles GET /api/todos.
func (h *Handler) GetTodos(c *gin.Context) {
	todos, err := h.svc.Todos(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// AddTodo handles POST /api/todos.
func (h *Handler) AddTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	item, err := h.svc.AddTodo(c.Request.Context(), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateTodo handles PUT /api/todos/:id.
func (h *Handler) UpdateTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	item, err := h.svc.UpdateTodo(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ToggleTodo handles POST /api/todos/:id/toggle.
func (h *Handler) ToggleTodo(c *gin.Context) {
	item, err := h.svc.ToggleTodo(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteTodo handles DELETE /api/todos/:id.
func (h *Handler) DeleteTodo(c *gin.Context) {
	if err := h.svc.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
