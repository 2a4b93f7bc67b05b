package exporter

import (
	"fmt"

	charts "github.com/vicanso/go-charts/v2"

	"clinicpulse/pkg/contracts/domain"
)

const (
	chartWidth  = 540
	chartHeight = 360
)

// RenderWeeklyLine renders the weekly compliance trend as a PNG line
// chart in memory. Returns nil bytes when there is nothing to plot.
func RenderWeeklyLine(rows []domain.WeeklyCompliance) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.WeekStart.Format("2006-01-02"))
		values = append(values, r.CompliancePct)
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc("Weekly Waiting-Time Compliance (%)"),
		charts.XAxisDataOptionFunc(labels),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render weekly chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode weekly chart: %w", err)
	}
	return buf, nil
}

// RenderDepartmentBars renders department compliance as a PNG
// horizontal bar chart in memory. Returns nil bytes when there is
// nothing to plot.
func RenderDepartmentBars(rows []domain.DepartmentPerformance) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	// Reverse table order so the best department ends up at the top of
	// the horizontal axis.
	for i := len(rows) - 1; i >= 0; i-- {
		names = append(names, rows[i].Department)
		values = append(values, rows[i].CompliancePct)
	}

	p, err := charts.HorizontalBarRender(
		[][]float64{values},
		charts.TitleTextOptionFunc("Department Compliance (%)"),
		charts.YAxisDataOptionFunc(names),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render department chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode department chart: %w", err)
	}
	return buf, nil
}
