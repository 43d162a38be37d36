package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classroom-backend/internal/briefing"
	"classroom-backend/internal/classroom"
	"classroom-backend/internal/roster"
	"classroom-backend/internal/seating"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc    *classroom.Service
	logger *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc *classroom.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, classroom.ErrInvalidInput),
		errors.Is(err, classroom.ErrEmptyText),
		errors.Is(err, classroom.ErrUnknownCategory),
		errors.Is(err, seating.ErrEmptyRoster),
		errors.Is(err, seating.ErrInvalidColumns),
		errors.Is(err, roster.ErrNoStudents),
		errors.Is(err, briefing.ErrDisabled):
		return http.StatusBadRequest
	case errors.Is(err, classroom.ErrStudentNotFound),
		errors.Is(err, classroom.ErrEntryNotFound),
		errors.Is(err, classroom.ErrTodoNotFound),
		errors.Is(err, classroom.ErrMessageNotFound),
		errors.Is(err, seating.ErrHistoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, classroom.ErrNotEligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, briefing.ErrMalformedAnswer):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// studentNumber parses the :number path parameter.
func studentNumber(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		badRequest(c, "Invalid student number")
		return 0, false
	}
	return n, true
}

// Health handles GET /api/health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
