package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/service/offline"
	"github.com/mamadbah2/linetrack/internal/service/session"
	"github.com/mamadbah2/linetrack/internal/service/settings"
)

// SubmitHourly records an hourly entry. It answers 201 when the backend
// accepted it and 202 when it was stored offline for a later sync.
func (h *Handler) SubmitHourly(c *gin.Context) {
	var entry models.HourlyEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(entry.HourSlot) == "" {
		badRequest(c, "hourSlot is required")
		return
	}
	if entry.ActualQuantity < 0 || entry.TargetQuantity < 0 || entry.DefectQuantity < 0 {
		badRequest(c, "quantities must not be negative")
		return
	}

	rec, err := h.submissions.Submit(c.Request.Context(), entry)
	if err == nil {
		c.JSON(http.StatusCreated, gin.H{"data": rec})
		return
	}

	var queued *offline.QueuedOfflineError
	if errors.As(err, &queued) {
		c.JSON(http.StatusAccepted, gin.H{
			"queued":  true,
			"queueId": queued.Entry.QueueID,
			"message": queued.Error(),
		})
		return
	}

	h.internalError(c, "submit hourly", err)
}

// SyncStatus reports pending offline entries and the active sync period.
func (h *Handler) SyncStatus(c *gin.Context) {
	pending, err := h.submissions.Pending(c.Request.Context())
	if err != nil {
		h.internalError(c, "sync status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pending":         pending,
		"intervalMinutes": int(h.sync.Interval().Minutes()),
	})
}

// Queue lists offline entries in replay order.
func (h *Handler) Queue(c *gin.Context) {
	entries, err := h.submissions.Entries(c.Request.Context())
	if err != nil {
		h.internalError(c, "list queue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// RunSync performs a sync pass now.
func (h *Handler) RunSync(c *gin.Context) {
	c.JSON(http.StatusOK, h.sync.RunSync(c.Request.Context()))
}

// GetSettings returns the application settings.
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.internalError(c, "get settings", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSettings applies a partial settings update.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	s, err := h.settings.Update(c.Request.Context(), patch)
	switch {
	case errors.Is(err, settings.ErrInvalidSettings):
		badRequest(c, err.Error())
	case err != nil:
		h.internalError(c, "update settings", err)
	default:
		c.JSON(http.StatusOK, s)
	}
}

// ClearCache drops cached reference data.
func (h *Handler) ClearCache(c *gin.Context) {
	removed, err := h.production.ClearCache(c.Request.Context())
	if err != nil {
		h.internalError(c, "clear cache", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// GetSession reports the signed-in user, if any.
func (h *Handler) GetSession(c *gin.Context) {
	sess, ok, err := h.session.Load(c.Request.Context())
	if err != nil {
		h.internalError(c, "load session", err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          sess.User,
		"permissions":   sess.Permissions,
	})
}

// SaveSession stores the tokens obtained at login.
func (h *Handler) SaveSession(c *gin.Context) {
	var sess session.Session
	if err := c.ShouldBindJSON(&sess); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if sess.Token == "" {
		badRequest(c, "token is required")
		return
	}

	if err := h.session.Save(c.Request.Context(), sess); err != nil {
		h.internalError(c, "save session", err)
		return
	}
	h.logger.Info("operator signed in", zap.Int("user_id", sess.User.ID))
	c.Status(http.StatusNoContent)
}

// ClearSession signs out.
func (h *Handler) ClearSession(c *gin.Context) {
	if err := h.session.Clear(c.Request.Context()); err != nil {
		h.internalError(c, "clear session", err)
		return
	}
	c.Status(http.StatusNoContent)
}
