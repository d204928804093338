package clubspeed

import (
	"context"
	"strings"
	"testing"
	"pgptimes-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return parsed
}

const groupedTablesPage = `<html>
<head><title>Heat Details - HeatNo=82271</title></head>
<body>
<span id="lblRaceType">Standard Race</span>
<table>
<tr>
<td class="HeatResultsLeftCell"><span id="lblDate1">Date</span></td>
<td class="HeatResultsRightCell"><span>8/23/2025 1:15 PM</span></td>
</tr>
</table>
<table class="LapTimesContainer">
<tr><td>
<table class="LapTimes">
<tr><th>Jane Racer</th></tr>
<tr><td>Lap</td><td>Time</td></tr>
<tr><td>1</td><td>81.234</td></tr>
<tr><td>2</td><td>80.999 [2]</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`

func TestGroupedTables(t *testing.T) {
	drivers, strategy := ExtractDrivers(doc(t, groupedTablesPage))
	require.Equal(t, "grouped-tables", strategy)
	require.Len(t, drivers, 1)

	jane := drivers[0]
	require.Equal(t, "Jane Racer", jane.DisplayName)
	require.NotNil(t, jane.BestLapSeconds)
	require.Equal(t, 80.999, *jane.BestLapSeconds)
	require.NotNil(t, jane.Position)
	require.Equal(t, 2, *jane.Position)

	require.Equal(t, []LapRecord{
		{LapNumber: 1, LapSeconds: 81.234, LapPosition: -1},
		{LapNumber: 2, LapSeconds: 80.999, LapPosition: 2},
	}, jane.Laps)
}

const racerTextBlocksPage = `<html><body>
<div>Lap Times by Racer</div>
<div>John Doe<br>(Penalties: 0)<br>1 85.111<br>2 84.220<br>Jane Roe<br>(Penalties: 1)<br>1 90.000</div>
</body></html>`

func TestRacerTextBlocks(t *testing.T) {
	drivers, strategy := ExtractDrivers(doc(t, racerTextBlocksPage))
	require.Equal(t, "racer-text-blocks", strategy)
	require.Len(t, drivers, 2)

	require.Equal(t, "John Doe", drivers[0].DisplayName)
	require.Equal(t, []LapRecord{
		{LapNumber: 1, LapSeconds: 85.111, LapPosition: -1},
		{LapNumber: 2, LapSeconds: 84.220, LapPosition: -1},
	}, drivers[0].Laps)
	require.Equal(t, 84.220, *drivers[0].BestLapSeconds)

	require.Equal(t, "Jane Roe", drivers[1].DisplayName)
	require.Len(t, drivers[1].Laps, 1)
	require.Equal(t, 90.000, *drivers[1].BestLapSeconds)
}

const headerTablePage = `<html><body>
<table>
<tr><th>Racer Name</th><th>Position</th><th>Kart #</th><th>Best Lap</th><th></th></tr>
<tr>
<td>John Doe</td><td>1st</td><td>#14</td><td>85.111</td>
<td><a href="LapTimes.aspx?HeatNo=82273&amp;CustID=77">laps</a></td>
</tr>
<tr>
<td>Jane Roe</td><td>2nd</td><td>#3</td><td></td><td></td>
</tr>
</table>
</body></html>`

func TestHeaderTable(t *testing.T) {
	drivers, strategy := ExtractDrivers(doc(t, headerTablePage))
	require.Equal(t, "header-table", strategy)
	require.Len(t, drivers, 2)

	john := drivers[0]
	require.Equal(t, "John Doe", john.DisplayName)
	require.Equal(t, 1, *john.Position)
	require.Equal(t, "14", john.Kart)
	require.Equal(t, 85.111, *john.BestLapSeconds)
	require.Equal(t, "LapTimes.aspx?HeatNo=82273&CustID=77", john.LapTimesHref)
	require.Empty(t, john.Laps)

	// absent columns stay absent
	jane := drivers[1]
	require.Nil(t, jane.BestLapSeconds)
	require.Equal(t, "", jane.LapTimesHref)
}

const globalLapTablePage = `<html><body>
<table>
<tr><td>1</td><td>John Doe</td><td>85.111</td></tr>
<tr><td>1</td><td>Jane Roe</td><td>90.000</td></tr>
<tr><td>2</td><td>John Doe</td><td>84.220</td></tr>
</table>
</body></html>`

func TestGlobalLapTable(t *testing.T) {
	drivers, strategy := ExtractDrivers(doc(t, globalLapTablePage))
	require.Equal(t, "global-lap-table", strategy)
	require.Len(t, drivers, 2)

	require.Equal(t, "John Doe", drivers[0].DisplayName)
	require.Len(t, drivers[0].Laps, 2)
	require.Equal(t, 84.220, *drivers[0].BestLapSeconds)
	require.Equal(t, "Jane Roe", drivers[1].DisplayName)
}

func TestGroupedTablesBeatHeaderTable(t *testing.T) {
	// both layouts on one page: the higher-priority structure wins even
	// though the summary table lists more drivers
	page := strings.Replace(groupedTablesPage, "</body>",
		strings.TrimPrefix(strings.TrimSuffix(headerTablePage, "</body></html>"), "<html><body>")+"</body>", 1)

	drivers, strategy := ExtractDrivers(doc(t, page))
	require.Equal(t, "grouped-tables", strategy)
	require.Len(t, drivers, 1)
	require.Equal(t, "Jane Racer", drivers[0].DisplayName)
	require.NotEmpty(t, drivers[0].Laps)
}

func TestLapsByRacerOmitsLaplessDrivers(t *testing.T) {
	laps := LapsByRacer(doc(t, headerTablePage))
	require.Empty(t, laps)

	laps = LapsByRacer(doc(t, racerTextBlocksPage))
	require.Len(t, laps, 2)
	require.Len(t, laps["John Doe"], 2)
}

func TestPickBestVariant(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:clubspeed-variants")
	defer cleanup()
	ctx := context.Background()

	best, laps, ok := PickBestVariant(ctx, []PageVariant{
		{Tag: "default", HTML: groupedTablesPage},
		{Tag: "print", HTML: racerTextBlocksPage},
	})
	require.True(t, ok)
	require.Equal(t, "print", best.Tag)
	require.Len(t, laps, 2)

	// equally informative variants keep the first
	best, _, ok = PickBestVariant(ctx, []PageVariant{
		{Tag: "default", HTML: groupedTablesPage},
		{Tag: "show", HTML: groupedTablesPage},
	})
	require.True(t, ok)
	require.Equal(t, "default", best.Tag)

	_, _, ok = PickBestVariant(ctx, []PageVariant{
		{Tag: "default", HTML: "<html><body><p>no laps here</p></body></html>"},
	})
	require.False(t, ok)
}

const lapTimesPopupPage = `<html><body>
<table>
<tr><th>Lap</th><th>Lap Time</th><th>Position</th></tr>
<tr><td>1</td><td>81.234</td><td>3</td></tr>
<tr><td>2</td><td>1:21.111</td><td>2</td></tr>
</table>
</body></html>`

func TestParseLapTimesPopup(t *testing.T) {
	laps := ParseLapTimesPopup(doc(t, lapTimesPopupPage))
	require.Equal(t, []LapRecord{
		{LapNumber: 1, LapSeconds: 81.234, LapPosition: 3},
		{LapNumber: 2, LapSeconds: 81.111, LapPosition: 2},
	}, laps)
}
