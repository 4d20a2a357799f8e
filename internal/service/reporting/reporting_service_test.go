package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/service/production"
)

type stubSource struct {
	res        production.Result[[]models.ProductionSummary]
	start, end string
}

func (s *stubSource) GetProductionSummary(_ context.Context, start, end string, _ int) production.Result[[]models.ProductionSummary] {
	s.start, s.end = start, end
	return s.res
}

type memorySheet struct {
	rows    [][]interface{}
	readErr error
	appends int
}

func (m *memorySheet) AppendRows(_ context.Context, _ string, rows [][]interface{}) error {
	m.appends++
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memorySheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([][]interface{}, 0, len(m.rows)+1)
	out = append(out, []interface{}{"Date"})
	for _, r := range m.rows {
		out = append(out, r[:1])
	}
	return out, nil
}

type recordingNotifier struct {
	texts []string
}

func (r *recordingNotifier) Notify(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return nil
}

var day = time.Date(2025, 1, 21, 8, 0, 0, 0, time.UTC)

func freshSummary() production.Result[[]models.ProductionSummary] {
	return production.Result[[]models.ProductionSummary]{
		Source: production.SourceFresh,
		Data: []models.ProductionSummary{
			{LineID: 1, LineName: "Line 1", ProductionDate: "2025-01-21", OrderNo: "ORD001", TargetQuantity: 500, ActualQuantity: 485, DefectQuantity: 12},
			{LineID: 2, LineName: "Line 2", ProductionDate: "2025-01-21", OrderNo: "ORD002", TargetQuantity: 300, ActualQuantity: 240, DefectQuantity: 3},
		},
	}
}

func TestDailyReportTotals(t *testing.T) {
	src := &stubSource{res: freshSummary()}
	svc := NewService(src, nil, nil, nil)

	report := svc.DailyReport(context.Background(), day)
	assert.Equal(t, "2025-01-21", src.start)
	assert.Equal(t, "2025-01-21", src.end)

	assert.Equal(t, 800, report.TotalTarget)
	assert.Equal(t, 725, report.TotalActual)
	assert.Equal(t, 15, report.TotalDefects)
	assert.Equal(t, 90.6, report.Efficiency)
	assert.Equal(t, 97.9, report.QualityRate)

	text := report.Text()
	assert.Contains(t, text, "Production 2025-01-21: 725/800 pcs (90.6% efficiency)")
	assert.Contains(t, text, "- Line 2 ORD002: 240/300 (80.0%)")
	assert.NotContains(t, text, "sample data")
}

func TestDailyReportWithoutRows(t *testing.T) {
	src := &stubSource{res: production.Result[[]models.ProductionSummary]{Source: production.SourceFresh, Data: []models.ProductionSummary{}}}

	report := NewService(src, nil, nil, nil).DailyReport(context.Background(), day)
	assert.Zero(t, report.Efficiency)
	assert.Zero(t, report.QualityRate)
	assert.Equal(t, "Production 2025-01-21: no records yet.", report.Text())
}

func TestExportWritesOncePerDay(t *testing.T) {
	ctx := context.Background()
	sheet := &memorySheet{}
	notifier := &recordingNotifier{}
	svc := NewService(&stubSource{res: freshSummary()}, sheet, notifier, nil)

	_, err := svc.Export(ctx, day)
	require.NoError(t, err)
	require.Len(t, sheet.rows, 2)
	assert.Equal(t, []interface{}{"2025-01-21", 1, "Line 1", "ORD001", "", "", 500, 485, 12, 0.0, 0.0}, sheet.rows[0])

	_, err = svc.Export(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 1, sheet.appends)
	assert.Len(t, notifier.texts, 2)
}

func TestExportRefusesSampleData(t *testing.T) {
	sheet := &memorySheet{}
	notifier := &recordingNotifier{}
	src := &stubSource{res: production.Result[[]models.ProductionSummary]{
		Source: production.SourceDefault,
		Data:   freshSummary().Data,
	}}
	svc := NewService(src, sheet, notifier, nil)

	report, err := svc.Export(context.Background(), day)
	assert.ErrorIs(t, err, ErrSummaryUnavailable)
	assert.Contains(t, report.Text(), "sample data")
	assert.Zero(t, sheet.appends)
	assert.Empty(t, notifier.texts)
}

func TestExportReadFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	sheet := &memorySheet{readErr: boom}
	svc := NewService(&stubSource{res: freshSummary()}, sheet, nil, nil)

	_, err := svc.Export(context.Background(), day)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, sheet.appends)
}

func TestExportWithoutSheet(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(&stubSource{res: freshSummary()}, nil, notifier, nil)

	_, err := svc.Export(context.Background(), day)
	require.NoError(t, err)
	assert.Len(t, notifier.texts, 1)
}
