package commands

import (
	"context"
	"testing"
	"time"
	"pgptimes-backend/lib/roster"
	"pgptimes-backend/lib/scrapers/clubspeed"
	"pgptimes-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const heatPageWithDate = `<html>
<head><title>Heat Details - HeatNo=82271</title></head>
<body>
<table>
<tr>
<td class="HeatResultsLeftCell"><span id="lblDate1">Date</span></td>
<td class="HeatResultsRightCell"><span>8/23/2025 1:15 PM</span></td>
</tr>
</table>
<a href="RacerHistory.aspx?CustID=1234">Jane A. Racer</a>
</body></html>`

const heatPageWithoutDate = `<html>
<head><title>Heat Details - HeatNo=82271</title></head>
<body>
<a href="RacerHistory.aspx?CustID=1234">Jane A. Racer</a>
</body></html>`

var janeLaps = map[string][]clubspeed.LapRecord{
	"Jane A. Racer": {
		{LapNumber: 1, LapSeconds: 81.234, LapPosition: -1},
		{LapNumber: 2, LapSeconds: 80.999, LapPosition: 2},
	},
}

func TestHeatLapRowsUsesPageNameAndDate(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:commands-alllaps")
	defer cleanup()

	driver := roster.Driver{DisplayName: "Jane Racer", ExternalID: "1234"}
	histDates := map[int]time.Time{
		82271: time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC),
	}

	rows := heatLapRows(context.Background(), Config{}, driver, 82271, histDates,
		clubspeed.PageVariant{Tag: "default", HTML: heatPageWithDate}, janeLaps)
	require.Len(t, rows, 2)

	// the page rendition of the name, not the roster spelling
	require.Equal(t, "Jane A. Racer", rows[0].DriverName)
	require.Equal(t, "1234", rows[0].DriverID)
	// the page's own timestamp wins over the history row
	require.Equal(t, "2025-08-23T13:15:00", rows[0].StartTime)
	require.Equal(t, 82271, rows[0].SessionID)
}

func TestHeatLapRowsFallsBackToHistoryDate(t *testing.T) {
	driver := roster.Driver{DisplayName: "Jane Racer", ExternalID: "1234"}
	histDates := map[int]time.Time{
		82271: time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC),
	}

	rows := heatLapRows(context.Background(), Config{}, driver, 82271, histDates,
		clubspeed.PageVariant{Tag: "default", HTML: heatPageWithoutDate}, janeLaps)
	require.Len(t, rows, 2)
	require.Equal(t, "2025-08-22T12:00:00", rows[0].StartTime)
}

func TestHeatLapRowsYearFilter(t *testing.T) {
	driver := roster.Driver{DisplayName: "Jane Racer", ExternalID: "1234"}

	rows := heatLapRows(context.Background(), Config{StartYear: 2026}, driver, 82271, nil,
		clubspeed.PageVariant{Tag: "default", HTML: heatPageWithDate}, janeLaps)
	require.Empty(t, rows)
}
