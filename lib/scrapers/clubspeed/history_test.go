package clubspeed

import (
	"context"
	"testing"
	"time"
	"pgptimes-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const racerHistoryPage = `<html><body>
<table>
<tr><td><a href="HeatDetails.aspx?HeatNo=82271">Heat 82271</a></td><td>8/23/2025 1:15 PM</td></tr>
<tr><td><a href="HeatDetails.aspx?HeatNo=82272">Heat 82272</a></td><td>8/24/2025</td></tr>
<tr><td><a href="HeatDetails.aspx?HeatNo=82271">again</a></td><td>no date</td></tr>
</table>
<a href="RacerHistory.aspx?CustID=1234">Jane Racer</a>
</body></html>`

func TestExtractHeatNumbers(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:clubspeed-history")
	defer cleanup()

	heats := ExtractHeatNumbers(context.Background(), doc(t, racerHistoryPage))
	require.Equal(t, []int{82271, 82272}, heats)
}

func TestExtractHeatDates(t *testing.T) {
	dates := ExtractHeatDates(doc(t, racerHistoryPage))
	require.Len(t, dates, 2)
	require.Equal(t,
		time.Date(2025, 8, 23, 13, 15, 0, 0, time.UTC),
		dates[82271])
	// bare dates pin to noon
	require.Equal(t,
		time.Date(2025, 8, 24, 12, 0, 0, 0, time.UTC),
		dates[82272])
}

func TestExtractCustomerNames(t *testing.T) {
	names := ExtractCustomerNames(doc(t, racerHistoryPage))
	require.Equal(t, map[string]string{"1234": "Jane Racer"}, names)
}
