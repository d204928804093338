package clubspeed

import (
	"context"
	"strings"
	"testing"
	"pgptimes-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestParseHeatDetails(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:clubspeed-assemble")
	defer cleanup()

	record, err := ParseHeatDetails(context.Background(), groupedTablesPage, AssembleOptions{
		FallbackSessionID: 99999,
		SourceLocator:     "/sp_center/HeatDetails.aspx?HeatNo=82271",
	})
	require.NoError(t, err)

	require.Equal(t, 82271, record.SessionID)
	require.Equal(t, "Standard Race", record.SessionType)
	require.Equal(t, "2025-08-23T13:15:00", record.StartTime)
	require.Equal(t, "/sp_center/HeatDetails.aspx?HeatNo=82271", record.SourceLocator)
	require.Equal(t, "", record.SkipReason)
	require.Len(t, record.Drivers, 1)
}

func TestParseHeatDetailsFallbackSessionID(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:clubspeed-assemble-fallback")
	defer cleanup()

	page := `<html><head><title>Results</title></head><body>` +
		`<p>nothing identifying here</p></body></html>`
	record, err := ParseHeatDetails(context.Background(), page, AssembleOptions{
		FallbackSessionID: 82280,
	})
	require.NoError(t, err)
	require.Equal(t, 82280, record.SessionID)
}

func TestParseHeatDetailsExcludedHeatType(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:clubspeed-assemble-excluded")
	defer cleanup()

	page := strings.Replace(groupedTablesPage, "Standard Race", "Qualifier", 1)
	record, err := ParseHeatDetails(context.Background(), page, AssembleOptions{
		FallbackSessionID: 82271,
		ExcludedHeatTypes: []string{"qualifier"},
	})
	require.NoError(t, err)

	// still a full record, tagged instead of dropped
	require.Equal(t, "excluded heat type: Qualifier", record.SkipReason)
	require.Equal(t, "Qualifier", record.SessionType)
	require.Len(t, record.Drivers, 1)
}
