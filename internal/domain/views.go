package domain

import (
	"math"
	"slices"
	"time"
)

// Display layouts used by the derived views.
const (
	DisplayTimeLayout = "2006-01-02 15:04"
	ChartLabelLayout  = "01/02"
)

// ExportHeader is the fixed column header of exported tables.
var ExportHeader = []string{
	"Date/Time",
	"Systolic (mmHg)",
	"Diastolic (mmHg)",
	"Pulse (bpm)",
	"Category",
	"Note",
}

// Stats holds aggregate statistics over the whole collection.
// The averages and LastCategory are nil when Count is zero.
type Stats struct {
	Count        int
	AvgSystolic  *float64
	AvgDiastolic *float64
	LastCategory *Category
}

// ExportRow is one flat row of the export table.
type ExportRow struct {
	Timestamp string
	Systolic  int
	Diastolic int
	Pulse     *int
	Category  string
	Note      string
}

// ChartSeries holds parallel, oldest-first series for the trend chart.
type ChartSeries struct {
	Labels    []string
	Systolic  []int
	Diastolic []int
}

// SortNewestFirst returns a copy of readings ordered by descending
// timestamp. Equal timestamps keep their input order.
func SortNewestFirst(readings []*Reading) []*Reading {
	sorted := slices.Clone(readings)
	slices.SortStableFunc(sorted, func(a, b *Reading) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return sorted
}

// ComputeStats aggregates readings. Averages are rounded to one decimal.
func ComputeStats(readings []*Reading) Stats {
	stats := Stats{Count: len(readings)}
	if len(readings) == 0 {
		return stats
	}

	var sumSys, sumDia int64
	for _, r := range readings {
		sumSys += int64(r.Systolic)
		sumDia += int64(r.Diastolic)
	}

	avgSys := roundTenth(sumSys, len(readings))
	avgDia := roundTenth(sumDia, len(readings))
	last := SortNewestFirst(readings)[0].Category()

	stats.AvgSystolic = &avgSys
	stats.AvgDiastolic = &avgDia
	stats.LastCategory = &last
	return stats
}

// BuildExportRows maps readings to newest-first export rows. Timestamps are
// formatted in loc.
func BuildExportRows(readings []*Reading, loc *time.Location) []ExportRow {
	sorted := SortNewestFirst(readings)
	rows := make([]ExportRow, len(sorted))
	for i, r := range sorted {
		row := ExportRow{
			Timestamp: r.Timestamp.In(loc).Format(DisplayTimeLayout),
			Systolic:  r.Systolic,
			Diastolic: r.Diastolic,
			Category:  r.Category().String(),
			Note:      r.Note,
		}
		if r.Pulse != nil {
			p := *r.Pulse
			row.Pulse = &p
		}
		rows[i] = row
	}
	return rows
}

// BuildChartSeries maps readings to oldest-first series, the exact reverse
// of SortNewestFirst.
func BuildChartSeries(readings []*Reading, loc *time.Location) ChartSeries {
	sorted := SortNewestFirst(readings)
	slices.Reverse(sorted)

	series := ChartSeries{
		Labels:    make([]string, len(sorted)),
		Systolic:  make([]int, len(sorted)),
		Diastolic: make([]int, len(sorted)),
	}
	for i, r := range sorted {
		series.Labels[i] = r.Timestamp.In(loc).Format(ChartLabelLayout)
		series.Systolic[i] = r.Systolic
		series.Diastolic[i] = r.Diastolic
	}
	return series
}

// roundTenth returns sum/n rounded half away from zero at the tenths digit.
func roundTenth(sum int64, n int) float64 {
	return math.Round(float64(sum*10)/float64(n)) / 10
}
