package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(h *handlers.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/lines", h.Lines)
		v1.POST("/lines", h.CreateLine)
		v1.GET("/buyers", h.Buyers)
		v1.POST("/buyers", h.CreateBuyer)
		v1.GET("/styles", h.Styles)
		v1.POST("/styles", h.CreateStyle)
		v1.GET("/orders", h.Orders)
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/dashboard", h.Dashboard)

		v1.GET("/line-setups", h.LineSetups)
		v1.POST("/line-setups", h.CreateLineSetup)
		v1.GET("/line-setups/:id/hourly", h.HourlyByLineSetup)

		v1.POST("/hourly", h.SubmitHourly)
		v1.GET("/hourly/:id/defects", h.DefectsByHourly)
		v1.POST("/defects", h.CreateDefect)

		v1.GET("/reports/summary", h.Summary)
		v1.GET("/reports/daily", h.DailyReport)
		v1.POST("/reports/export", h.ExportReport)

		v1.GET("/sync", h.SyncStatus)
		v1.POST("/sync", h.RunSync)
		v1.GET("/sync/queue", h.Queue)

		v1.GET("/settings", h.GetSettings)
		v1.PUT("/settings", h.UpdateSettings)

		v1.DELETE("/cache", h.ClearCache)

		v1.GET("/session", h.GetSession)
		v1.POST("/session", h.SaveSession)
		v1.DELETE("/session", h.ClearSession)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		// Scrapes and probes log at debug.
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/healthz" {
			logger.Debug("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
