package clubspeed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractHeatMetadata(t *testing.T) {
	meta := ExtractHeatMetadata(doc(t, groupedTablesPage))
	require.Equal(t, 82271, meta.HeatNumber)
	require.Equal(t, "Standard Race", meta.HeatType)
	require.Equal(t, "2025-08-23T13:15:00", meta.StartTime)
}

func TestHeatNumberFromHeading(t *testing.T) {
	page := `<html><head><title>Results</title></head><body>
<div>Heat #82275</div>
</body></html>`
	meta := ExtractHeatMetadata(doc(t, page))
	require.Equal(t, 82275, meta.HeatNumber)
}

func TestHeatNumberAbsent(t *testing.T) {
	meta := ExtractHeatMetadata(doc(t, `<html><head><title>Results</title></head><body></body></html>`))
	require.Equal(t, 0, meta.HeatNumber)
}

func TestStartTimeFromExactLabel(t *testing.T) {
	page := `<html><body><span id="lblDate">Aug 23, 2025 1:15:30 PM</span></body></html>`
	meta := ExtractHeatMetadata(doc(t, page))
	require.Equal(t, "2025-08-23T13:15:30", meta.StartTime)
}

func TestStartTimeFromLabelScan(t *testing.T) {
	// bare date pins to noon
	page := `<html><body>
<table><tr><td>Start Time</td><td>8/23/2025</td></tr></table>
</body></html>`
	meta := ExtractHeatMetadata(doc(t, page))
	require.Equal(t, "2025-08-23T12:00:00", meta.StartTime)
}

func TestStartTimeAbsent(t *testing.T) {
	meta := ExtractHeatMetadata(doc(t, `<html><body><p>nothing datelike</p></body></html>`))
	require.Equal(t, "", meta.StartTime)
}

func TestHeatTypeFromLabelSibling(t *testing.T) {
	page := `<html><body>
<table><tr><td>Race Type</td><td>Junior League</td></tr></table>
</body></html>`
	meta := ExtractHeatMetadata(doc(t, page))
	require.Equal(t, "Junior League", meta.HeatType)
}
