package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/service/offline"
	"github.com/mamadbah2/linetrack/internal/service/production"
	"github.com/mamadbah2/linetrack/internal/service/reporting"
	"github.com/mamadbah2/linetrack/internal/service/session"
	"github.com/mamadbah2/linetrack/internal/service/settings"
	"github.com/mamadbah2/linetrack/pkg/clients/api"
)

const dateLayout = "2006-01-02"

// SyncRunner triggers and describes background sync.
type SyncRunner interface {
	RunSync(ctx context.Context) models.SyncOutcome
	Interval() time.Duration
}

// Handler serves the local API used by the floor tablets.
type Handler struct {
	production  *production.Service
	submissions *offline.Service
	sync        SyncRunner
	settings    *settings.Service
	session     *session.Service
	reports     *reporting.Service
	logger      *zap.Logger
}

// New constructs the HTTP handler adapter.
func New(productionSvc *production.Service, submissions *offline.Service, sync SyncRunner, settingsSvc *settings.Service, sessionSvc *session.Service, reports *reporting.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		production:  productionSvc,
		submissions: submissions,
		sync:        sync,
		settings:    settingsSvc,
		session:     sessionSvc,
		reports:     reports,
		logger:      logger,
	}
}

// badRequest aborts with 400 and the given message.
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// gatewayError maps a failed backend call to 502, keeping the backend message.
func (h *Handler) gatewayError(c *gin.Context, op string, err error) {
	h.logger.Warn("backend call failed", zap.String("op", op), zap.Error(err))

	body := gin.H{"error": err.Error()}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		body["error"] = apiErr.Message
		body["upstreamStatus"] = apiErr.Status
	}
	c.JSON(http.StatusBadGateway, body)
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return n, true
}

func paramInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (string, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	if _, err := time.Parse(dateLayout, raw); err != nil {
		badRequest(c, name+" must be formatted as YYYY-MM-DD")
		return "", false
	}
	return raw, true
}
