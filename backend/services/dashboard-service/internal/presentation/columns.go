package presentation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"brewdash/backend/services/dashboard-service/internal/models"
)

// Column describes one table column: what it shows and how it sorts.
type Column struct {
	Key     string
	Label   string
	Extract func(models.TelemetrySample, *Formatter) string
	Less    func(a, b models.TelemetrySample) bool
}

// Columns is the telemetry table layout.
var Columns = []Column{
	{
		Key:     "timestamp",
		Label:   "Timestamp",
		Extract: func(s models.TelemetrySample, f *Formatter) string { return f.Timestamp(s.CreatedOn) },
		Less:    func(a, b models.TelemetrySample) bool { return a.CreatedOn.Before(b.CreatedOn) },
	},
	{
		Key:     "gravity",
		Label:   "Gravity",
		Extract: func(s models.TelemetrySample, f *Formatter) string { return f.Number(s.Gravity, 2) },
		Less:    func(a, b models.TelemetrySample) bool { return a.Gravity < b.Gravity },
	},
	{
		Key:     "temperature",
		Label:   "Temperature",
		Extract: func(s models.TelemetrySample, f *Formatter) string { return f.Number(s.Temperature, 2) },
		Less:    func(a, b models.TelemetrySample) bool { return a.Temperature < b.Temperature },
	},
	{
		Key:     "battery",
		Label:   "Battery",
		Extract: func(s models.TelemetrySample, f *Formatter) string { return f.Number(s.Battery, 1) },
		Less:    func(a, b models.TelemetrySample) bool { return a.Battery < b.Battery },
	},
	{
		Key:     "signal",
		Label:   "Signal",
		Extract: func(s models.TelemetrySample, f *Formatter) string { return f.Number(s.RSSI, 0) },
		Less:    func(a, b models.TelemetrySample) bool { return a.RSSI < b.RSSI },
	},
}

// SortSpec selects the sort column and direction.
type SortSpec struct {
	Key     string `json:"key"`
	Reverse bool   `json:"reverse"`
}

// DefaultSort shows the newest reading first.
var DefaultSort = SortSpec{Key: "timestamp", Reverse: true}

// Row is one rendered table row.
type Row struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

// Table is a rendered, sorted table.
type Table struct {
	Keys   []string `json:"keys"`
	Labels []string `json:"labels"`
	Sort   SortSpec `json:"sort"`
	Rows   []Row    `json:"rows"`
}

// BuildTable sorts a copy of series and renders every column. Unknown sort keys fall
// back to DefaultSort.
func BuildTable(series models.TelemetrySeries, f *Formatter, spec SortSpec) Table {
	column, ok := columnByKey(spec.Key)
	if !ok {
		spec = DefaultSort
		column, _ = columnByKey(spec.Key)
	}

	sorted := make(models.TelemetrySeries, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		if spec.Reverse {
			return column.Less(sorted[j], sorted[i])
		}
		return column.Less(sorted[i], sorted[j])
	})

	table := Table{
		Keys:   make([]string, len(Columns)),
		Labels: make([]string, len(Columns)),
		Sort:   spec,
		Rows:   make([]Row, 0, len(sorted)),
	}
	for i, c := range Columns {
		table.Keys[i] = c.Key
		table.Labels[i] = c.Label
	}
	for _, sample := range sorted {
		cells := make([]string, len(Columns))
		for i, c := range Columns {
			cells[i] = c.Extract(sample, f)
		}
		table.Rows = append(table.Rows, Row{ID: sample.CreatedOn.UTC().Format(time.RFC3339Nano), Cells: cells})
	}
	return table
}

func columnByKey(key string) (Column, bool) {
	for _, c := range Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// ChartPoint is one point of the temperature/gravity line chart.
type ChartPoint struct {
	Label       string  `json:"label"`
	Time        int64   `json:"time"`
	Temperature float64 `json:"temperature"`
	Gravity     float64 `json:"gravity"`
	SG          string  `json:"sg"`
}

// ChartPoints keeps delivery order, as the chart did.
func ChartPoints(series models.TelemetrySeries, f *Formatter) []ChartPoint {
	points := make([]ChartPoint, 0, len(series))
	for _, s := range series {
		points = append(points, ChartPoint{
			Label:       f.Timestamp(s.CreatedOn),
			Time:        s.CreatedOn.UnixMilli(),
			Temperature: s.Temperature,
			Gravity:     s.Gravity,
			SG:          SpecificGravity(s.Gravity),
		})
	}
	return points
}

// SpecificGravity converts the upstream thousandths reading (1050.4) into the
// conventional specific gravity notation (1.050).
func SpecificGravity(gravity float64) string {
	return decimal.NewFromFloat(gravity).Shift(-3).StringFixed(3)
}
