package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mamadbah2/linetrack/internal/domain/models"
)

const (
	linesPath         = "/production/lines"
	buyersPath        = "/buyers"
	stylesPath        = "/styles"
	ordersPath        = "/orders"
	lineSetupPath     = "/production/line-setup"
	lineSetupsPath    = "/production/line-setups"
	hourlyPath        = "/production/hourly"
	defectsPath       = "/quality/defects"
	summaryReportPath = "/reports/production-summary"
	exportReportPath  = "/reports/export"
	dashboardPath     = "/dashboard/metrics"
	healthPath        = "/health"
)

// GetProductionLines lists all production lines.
func (c *Client) GetProductionLines(ctx context.Context) ([]models.ProductionLine, error) {
	return getList[models.ProductionLine](ctx, c, linesPath, nil)
}

// CreateProductionLine registers a new line.
func (c *Client) CreateProductionLine(ctx context.Context, line models.ProductionLine) (models.ProductionLine, error) {
	var out models.ProductionLine
	err := c.Do(ctx, http.MethodPost, linesPath, nil, line, &out)
	return out, err
}

// GetBuyers lists buyers.
func (c *Client) GetBuyers(ctx context.Context) ([]models.Buyer, error) {
	return getList[models.Buyer](ctx, c, buyersPath, nil)
}

// CreateBuyer registers a buyer.
func (c *Client) CreateBuyer(ctx context.Context, buyer models.Buyer) (models.Buyer, error) {
	var out models.Buyer
	err := c.Do(ctx, http.MethodPost, buyersPath, nil, buyer, &out)
	return out, err
}

// GetStyles lists styles, restricted to one buyer when buyerID is non-zero.
func (c *Client) GetStyles(ctx context.Context, buyerID int) ([]models.Style, error) {
	var query url.Values
	if buyerID != 0 {
		query = url.Values{"buyerId": {strconv.Itoa(buyerID)}}
	}
	return getList[models.Style](ctx, c, stylesPath, query)
}

// CreateStyle registers a style.
func (c *Client) CreateStyle(ctx context.Context, style models.Style) (models.Style, error) {
	var out models.Style
	err := c.Do(ctx, http.MethodPost, stylesPath, nil, style, &out)
	return out, err
}

// GetProductionOrders lists orders, restricted to one status when status is set.
func (c *Client) GetProductionOrders(ctx context.Context, status string) ([]models.ProductionOrder, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status}}
	}
	return getList[models.ProductionOrder](ctx, c, ordersPath, query)
}

// CreateProductionOrder registers an order.
func (c *Client) CreateProductionOrder(ctx context.Context, order models.ProductionOrder) (models.ProductionOrder, error) {
	var out models.ProductionOrder
	err := c.Do(ctx, http.MethodPost, ordersPath, nil, order, &out)
	return out, err
}

// CreateLineSetup assigns an order to a line for a day.
func (c *Client) CreateLineSetup(ctx context.Context, setup models.LineSetup) (models.LineSetup, error) {
	var out models.LineSetup
	err := c.Do(ctx, http.MethodPost, lineSetupPath, nil, setup, &out)
	return out, err
}

// GetLineSetups lists line setups, for one production date when date is set.
func (c *Client) GetLineSetups(ctx context.Context, date string) ([]models.LineSetup, error) {
	var query url.Values
	if date != "" {
		query = url.Values{"date": {date}}
	}
	return getList[models.LineSetup](ctx, c, lineSetupsPath, query)
}

// SubmitHourlyProduction posts an hourly entry stamped with the current time.
func (c *Client) SubmitHourlyProduction(ctx context.Context, entry models.HourlyEntry) (models.HourlyProduction, error) {
	payload := struct {
		models.HourlyEntry
		EntryTime string `json:"entryTime"`
	}{
		HourlyEntry: entry,
		EntryTime:   c.now().UTC().Format(time.RFC3339Nano),
	}

	var out models.HourlyProduction
	err := c.Do(ctx, http.MethodPost, hourlyPath, nil, payload, &out)
	return out, err
}

// GetHourlyProduction lists hourly records, for one line setup when lineSetupID is non-zero.
func (c *Client) GetHourlyProduction(ctx context.Context, lineSetupID int) ([]models.HourlyProduction, error) {
	var query url.Values
	if lineSetupID != 0 {
		query = url.Values{"lineSetupId": {strconv.Itoa(lineSetupID)}}
	}
	return getList[models.HourlyProduction](ctx, c, hourlyPath, query)
}

// SubmitQualityDefect records a quality defect.
func (c *Client) SubmitQualityDefect(ctx context.Context, defect models.QualityDefect) (models.QualityDefect, error) {
	var out models.QualityDefect
	err := c.Do(ctx, http.MethodPost, defectsPath, nil, defect, &out)
	return out, err
}

// GetDefects lists defects, for one hourly record when hourlyProductionID is non-zero.
func (c *Client) GetDefects(ctx context.Context, hourlyProductionID int) ([]models.QualityDefect, error) {
	var query url.Values
	if hourlyProductionID != 0 {
		query = url.Values{"hourlyProductionId": {strconv.Itoa(hourlyProductionID)}}
	}
	return getList[models.QualityDefect](ctx, c, defectsPath, query)
}

// GetProductionSummary returns the summary report for a date range, optionally for one line.
func (c *Client) GetProductionSummary(ctx context.Context, startDate, endDate string, lineID int) ([]models.ProductionSummary, error) {
	query := url.Values{"startDate": {startDate}, "endDate": {endDate}}
	if lineID != 0 {
		query.Set("lineId", strconv.Itoa(lineID))
	}
	return getList[models.ProductionSummary](ctx, c, summaryReportPath, query)
}

// ExportReport asks the backend to render a report file.
func (c *Client) ExportReport(ctx context.Context, req models.ExportRequest) (models.ExportResult, error) {
	if req.Format == "" {
		req.Format = "excel"
	}
	var out models.ExportResult
	err := c.Do(ctx, http.MethodPost, exportReportPath, nil, req, &out)
	return out, err
}

// GetDashboardMetrics returns the floor metrics, for one date when date is set.
func (c *Client) GetDashboardMetrics(ctx context.Context, date string) (models.DashboardMetrics, error) {
	var query url.Values
	if date != "" {
		query = url.Values{"date": {date}}
	}
	var out models.DashboardMetrics
	err := c.Do(ctx, http.MethodGet, dashboardPath, query, nil, &out)
	return out, err
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, healthPath, nil, nil, nil)
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out []T
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
