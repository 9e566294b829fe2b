package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) History(c *gin.Context) {
	limit := service.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(c, apperrors.BadRequest("invalid_limit", "limit must be a positive integer").
				WithDetails(gin.H{"max": service.MaxHistoryLimit}))
			return
		}
		limit = parsed
	}

	sessions, apiErr := h.sessionService.History(c.Request.Context(), limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Group(c *gin.Context) {
	sessions, apiErr := h.sessionService.Group(c.Request.Context(), c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	total := 0
	for _, session := range sessions {
		total += session.Duration
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "totalDuration": total})
}

func (h *SessionHandler) Stats(c *gin.Context) {
	view, apiErr := h.sessionService.Stats(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, view)
}
