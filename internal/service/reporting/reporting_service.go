package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	repo "github.com/mamadbah2/linetrack/internal/repository/sheets"
	"github.com/mamadbah2/linetrack/internal/service/notify"
	"github.com/mamadbah2/linetrack/internal/service/production"
)

const (
	dateLayout       = "2006-01-02"
	summaryDataRange = "Summary!A:K"
	summaryDateRange = "Summary!A:A"
)

// ErrSummaryUnavailable is returned by Export when the backend could not provide the day's summary.
var ErrSummaryUnavailable = errors.New("production summary unavailable")

// SummarySource provides production summary rows.
type SummarySource interface {
	GetProductionSummary(ctx context.Context, startDate, endDate string, lineID int) production.Result[[]models.ProductionSummary]
}

// DailyReport aggregates the production summary of one day.
type DailyReport struct {
	Day          string                     `json:"day"`
	Source       production.Source          `json:"source"`
	Rows         []models.ProductionSummary `json:"rows"`
	TotalTarget  int                        `json:"totalTarget"`
	TotalActual  int                        `json:"totalActual"`
	TotalDefects int                        `json:"totalDefects"`
	Efficiency   float64                    `json:"efficiency"`
	QualityRate  float64                    `json:"qualityRate"`
}

// Service builds daily production reports and exports them.
type Service struct {
	source   SummarySource
	repo     repo.Repository
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService wires a new reporting service instance. A nil repository disables
// the spreadsheet export; a nil notifier disables notifications.
func NewService(source SummarySource, repository repo.Repository, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{source: source, repo: repository, notifier: notifier, logger: logger}
}

// DailyReport totals the summary rows of day.
func (s *Service) DailyReport(ctx context.Context, day time.Time) DailyReport {
	date := day.Format(dateLayout)
	res := s.source.GetProductionSummary(ctx, date, date, 0)

	report := DailyReport{Day: date, Source: res.Source, Rows: res.Data}
	for _, row := range res.Data {
		report.TotalTarget += row.TargetQuantity
		report.TotalActual += row.ActualQuantity
		report.TotalDefects += row.DefectQuantity
	}
	report.Efficiency = models.Efficiency(report.TotalActual, report.TotalTarget)
	report.QualityRate = models.QualityRate(report.TotalActual, report.TotalDefects)

	return report
}

// Text renders the report as a short message.
func (r DailyReport) Text() string {
	if len(r.Rows) == 0 {
		return fmt.Sprintf("Production %s: no records yet.", r.Day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Production %s: %d/%d pcs (%.1f%% efficiency), %d defects (%.1f%% quality).",
		r.Day, r.TotalActual, r.TotalTarget, r.Efficiency, r.TotalDefects, r.QualityRate)

	for _, row := range r.Rows {
		fmt.Fprintf(&b, "\n- %s %s: %d/%d (%.1f%%)",
			row.LineName, row.OrderNo, row.ActualQuantity, row.TargetQuantity,
			models.Efficiency(row.ActualQuantity, row.TargetQuantity))
	}

	if r.Source == production.SourceDefault {
		b.WriteString("\n(sample data, backend unreachable)")
	}
	return b.String()
}

// Export appends the day's summary rows to the spreadsheet, unless that day was
// already exported, and sends the report text. Sample data is never exported.
func (s *Service) Export(ctx context.Context, day time.Time) (DailyReport, error) {
	report := s.DailyReport(ctx, day)
	if report.Source != production.SourceFresh {
		return report, fmt.Errorf("export %s: %w", report.Day, ErrSummaryUnavailable)
	}

	if s.repo != nil && len(report.Rows) > 0 {
		exported, err := s.alreadyExported(ctx, report.Day)
		if err != nil {
			return report, err
		}
		if exported {
			s.logger.Info("summary already exported", zap.String("day", report.Day))
		} else if err := s.repo.AppendRows(ctx, summaryDataRange, sheetRows(report.Rows)); err != nil {
			return report, fmt.Errorf("export %s: %w", report.Day, err)
		}
	}

	if err := s.notifier.Notify(ctx, report.Text()); err != nil {
		s.logger.Warn("failed to send daily report", zap.String("day", report.Day), zap.Error(err))
	}

	s.logger.Info("daily report exported", zap.String("day", report.Day), zap.Int("rows", len(report.Rows)))
	return report, nil
}

func (s *Service) alreadyExported(ctx context.Context, day string) (bool, error) {
	rows, err := s.repo.ReadRange(ctx, summaryDateRange)
	if err != nil {
		return false, fmt.Errorf("load exported dates: %w", err)
	}

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		dateValue, err := parseDate(row[0])
		if err != nil {
			// Header row or hand-edited cell.
			continue
		}
		if dateValue.Format(dateLayout) == day {
			return true, nil
		}
	}
	return false, nil
}

func sheetRows(rows []models.ProductionSummary) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, []interface{}{
			r.ProductionDate, r.LineID, r.LineName, r.OrderNo, r.Style, r.Buyer,
			r.TargetQuantity, r.ActualQuantity, r.DefectQuantity, r.Efficiency, r.QualityRate,
		})
	}
	return out
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}
