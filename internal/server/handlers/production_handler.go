package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Lines lists production lines.
func (h *Handler) Lines(c *gin.Context) {
	c.JSON(http.StatusOK, h.production.GetProductionLines(c.Request.Context()))
}

// Buyers lists buyers.
func (h *Handler) Buyers(c *gin.Context) {
	c.JSON(http.StatusOK, h.production.GetBuyers(c.Request.Context()))
}

// Styles lists styles, optionally for ?buyerId=.
func (h *Handler) Styles(c *gin.Context) {
	buyerID, ok := queryInt(c, "buyerId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.production.GetStyles(c.Request.Context(), buyerID))
}

// Orders lists production orders, optionally for ?status=.
func (h *Handler) Orders(c *gin.Context) {
	c.JSON(http.StatusOK, h.production.GetProductionOrders(c.Request.Context(), c.Query("status")))
}

// Dashboard returns floor metrics for ?date= (today by default).
func (h *Handler) Dashboard(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.production.GetDashboardMetrics(c.Request.Context(), date))
}

// LineSetups lists line setups for ?date=.
func (h *Handler) LineSetups(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.production.GetLineSetups(c.Request.Context(), date))
}

// HourlyByLineSetup lists hourly records of a line setup.
func (h *Handler) HourlyByLineSetup(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.production.GetHourlyEntriesByLineSetup(c.Request.Context(), id))
}

// DefectsByHourly lists defects recorded against an hourly record.
func (h *Handler) DefectsByHourly(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.production.GetDefectsByProductionEntry(c.Request.Context(), id))
}

// Summary returns the production summary for ?startDate=&endDate=&lineId=.
func (h *Handler) Summary(c *gin.Context) {
	start, ok := queryDate(c, "startDate")
	if !ok {
		return
	}
	end, ok := queryDate(c, "endDate")
	if !ok {
		return
	}
	lineID, ok := queryInt(c, "lineId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.production.GetProductionSummary(c.Request.Context(), start, end, lineID))
}

// DailyReport returns the aggregated report of ?date= (yesterday by default).
func (h *Handler) DailyReport(c *gin.Context) {
	day := time.Now().AddDate(0, 0, -1)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	report := h.reports.DailyReport(c.Request.Context(), day)
	c.JSON(http.StatusOK, gin.H{"data": report, "text": report.Text()})
}

// CreateLine registers a production line.
func (h *Handler) CreateLine(c *gin.Context) {
	create(h, c, "create line", h.production.CreateProductionLine)
}

// CreateBuyer registers a buyer.
func (h *Handler) CreateBuyer(c *gin.Context) {
	create(h, c, "create buyer", h.production.CreateBuyer)
}

// CreateStyle registers a style.
func (h *Handler) CreateStyle(c *gin.Context) {
	create(h, c, "create style", h.production.CreateStyle)
}

// CreateOrder registers a production order.
func (h *Handler) CreateOrder(c *gin.Context) {
	create(h, c, "create order", h.production.CreateProductionOrder)
}

// CreateLineSetup assigns an order to a line.
func (h *Handler) CreateLineSetup(c *gin.Context) {
	create(h, c, "create line setup", h.production.CreateLineSetup)
}

// CreateDefect records a quality defect.
func (h *Handler) CreateDefect(c *gin.Context) {
	create(h, c, "submit defect", h.production.SubmitQualityDefect)
}

// ExportReport asks the backend to render a report file.
func (h *Handler) ExportReport(c *gin.Context) {
	create(h, c, "export report", h.production.ExportReport)
}

// create binds a T from the body, sends it to the backend and answers 201.
func create[T any, R any](h *Handler, c *gin.Context, op string, call func(context.Context, T) (R, error)) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	out, err := call(c.Request.Context(), in)
	if err != nil {
		h.gatewayError(c, op, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": out})
}
