package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/interface/middleware"
	"github.com/oksasatya/morningforge/pkg/response"
)

// ProgressHandler serves the streak and the preference settings.
type ProgressHandler struct {
	Streaks  *application.StreakService
	Settings *application.SettingsService
	Logger   *logrus.Logger
}

func NewProgressHandler(streaks *application.StreakService, settings *application.SettingsService, logger *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{Streaks: streaks, Settings: settings, Logger: logger}
}

func (h *ProgressHandler) GetStreak(c *gin.Context) {
	st, err := h.Streaks.Get(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "streak", nil)
}

func (h *ProgressHandler) CompleteToday(c *gin.Context) {
	st, outcome, err := h.Streaks.MarkCompletedToday(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	msg := "streak updated"
	if outcome == entity.StreakAlreadyCompleted {
		msg = "already completed today"
	}
	response.Success(c, http.StatusOK, st, msg, map[string]any{"outcome": outcome})
}

func (h *ProgressHandler) GetSettings(c *gin.Context) {
	st, err := h.Settings.Get(c.Request.Context(), middleware.CurrentAccount(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "settings", nil)
}

// UpdateSettings merges the fields present in the body over the stored
// settings.
func (h *ProgressHandler) UpdateSettings(c *gin.Context) {
	var req entity.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	st, err := h.Settings.Update(c.Request.Context(), middleware.CurrentAccount(c), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "settings updated", nil)
}

func (h *ProgressHandler) ResetSettings(c *gin.Context) {
	st, err := h.Settings.Reset(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "settings reset", nil)
}
