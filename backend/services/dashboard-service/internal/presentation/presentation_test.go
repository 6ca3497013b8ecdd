package presentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"brewdash/backend/services/dashboard-service/internal/models"
)

var t0 = time.Date(2023, 3, 1, 14, 5, 9, 0, time.UTC)

func series() models.TelemetrySeries {
	return models.TelemetrySeries{
		{Gravity: 1050.25, Temperature: 19.5, Battery: 98, RSSI: -70, CreatedOn: t0.Add(time.Hour)},
		{Gravity: 1060, Temperature: 18.25, Battery: 99, RSSI: -65, CreatedOn: t0},
		{Gravity: 1040, Temperature: 20, Battery: 97.5, RSSI: -80, CreatedOn: t0.Add(2 * time.Hour)},
	}
}

func TestDetectLocale(t *testing.T) {
	cases := map[string]string{
		"de-DE,de;q=0.9,en;q=0.8": "de",
		"fr-CA":                   "fr",
		"en-GB,en;q=0.9":          "en",
		"":                        "en",
		"xx-YY":                   "en",
		"ja,ko;q=0.5":             "en",
	}
	for header, want := range cases {
		f := NewFormatter(DetectLocale(header), nil)
		assert.Equal(t, want, f.Locale(), header)
	}
}

func TestFormatterLocalizesNumbersAndTimestamps(t *testing.T) {
	en := NewFormatter(language.English, nil)
	de := NewFormatter(language.German, nil)

	assert.Equal(t, "19.5", en.Number(19.5, 2))
	assert.Equal(t, "19,5", de.Number(19.5, 2))
	assert.Equal(t, "3/1/2023, 2:05:09 PM", en.Timestamp(t0))
	assert.Equal(t, "1.3.2023, 14:05:09", de.Timestamp(t0))

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err == nil {
		assert.Equal(t, "1.3.2023, 15:05:09", NewFormatter(language.German, berlin).Timestamp(t0))
	}
}

func TestBuildTableDefaultSortNewestFirst(t *testing.T) {
	input := series()
	table := BuildTable(input, NewFormatter(language.English, nil), DefaultSort)

	assert.Equal(t, []string{"Timestamp", "Gravity", "Temperature", "Battery", "Signal"}, table.Labels)
	assert.Equal(t, []string{"timestamp", "gravity", "temperature", "battery", "signal"}, table.Keys)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "2023-03-01T16:05:09Z", table.Rows[0].ID)
	assert.Equal(t, "2023-03-01T14:05:09Z", table.Rows[2].ID)
	assert.Equal(t, []string{"3/1/2023, 4:05:09 PM", "1,040", "20", "97.5", "-80"}, table.Rows[0].Cells)
	assert.Equal(t, t0.Add(time.Hour), input[0].CreatedOn, "input order untouched")
}

func TestBuildTableSortByColumn(t *testing.T) {
	f := NewFormatter(language.English, nil)

	table := BuildTable(series(), f, SortSpec{Key: "gravity"})
	assert.Equal(t, "1,040", table.Rows[0].Cells[1])
	assert.Equal(t, "1,060", table.Rows[2].Cells[1])

	table = BuildTable(series(), f, SortSpec{Key: "signal", Reverse: true})
	assert.Equal(t, "-65", table.Rows[0].Cells[4])

	table = BuildTable(series(), f, SortSpec{Key: "nope"})
	assert.Equal(t, DefaultSort, table.Sort)
}

func TestChartPointsKeepDeliveryOrder(t *testing.T) {
	points := ChartPoints(series(), NewFormatter(language.English, nil))
	require.Len(t, points, 3)
	assert.Equal(t, t0.Add(time.Hour).UnixMilli(), points[0].Time)
	assert.Equal(t, 1050.25, points[0].Gravity)
	assert.Equal(t, "1.050", points[0].SG)
}

func TestSpecificGravity(t *testing.T) {
	assert.Equal(t, "1.050", SpecificGravity(1050.4))
	assert.Equal(t, "0.998", SpecificGravity(998))
	assert.Equal(t, "1.011", SpecificGravity(1010.6))
}
