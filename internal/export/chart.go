package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jinwsy/blood-pressure/internal/domain"
)

// ChartTitle heads the rendered trend chart
const ChartTitle = "Blood Pressure Trend"

// RenderChart writes a standalone HTML line chart of the series
func RenderChart(w io.Writer, series domain.ChartSeries) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: ChartTitle}),
	)

	line.SetXAxis(series.Labels).
		AddSeries("Systolic", lineData(series.Systolic)).
		AddSeries("Diastolic", lineData(series.Diastolic))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func lineData(values []int) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}
