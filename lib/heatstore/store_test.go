package heatstore

import (
	"context"
	"testing"
	"time"
	"pgptimes-backend/lib/heatstore/db"
	"pgptimes-backend/lib/scrapers/clubspeed"
	"pgptimes-backend/lib/sqliteutil"
	"pgptimes-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:heatstore")
	defer cleanup()

	sqlite, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	defer sqlite.Close()
	store := NewStore(sqlite)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, found, err := store.Get(ctx, 82271)
	require.NoError(t, err)
	require.False(t, found)

	best := 80.999
	record := clubspeed.SessionRecord{
		SessionID:   82271,
		SessionType: "Standard Race",
		StartTime:   "2025-08-23T13:15:00",
		Drivers: []clubspeed.DriverResult{
			{
				DisplayName:    "Jane Racer",
				BestLapSeconds: &best,
				Laps: []clubspeed.LapRecord{
					{LapNumber: 1, LapSeconds: 81.234, LapPosition: -1},
					{LapNumber: 2, LapSeconds: 80.999, LapPosition: 2},
				},
			},
		},
		SourceLocator: "/sp_center/HeatDetails.aspx?HeatNo=82271",
	}
	require.NoError(t, store.Put(ctx, record))

	got, found, err := store.Get(ctx, 82271)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, record, got)

	// overwrite stays single-document
	record.SessionType = "Practice"
	require.NoError(t, store.Put(ctx, record))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Practice", all[0].SessionType)
}

func TestLastHeatCursor(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:heatstore-cursor")
	defer cleanup()

	sqlite, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	defer sqlite.Close()
	store := NewStore(sqlite)

	ctx := context.Background()

	_, found, err := store.LastHeat(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.SetLastHeat(ctx, 82271))
	require.NoError(t, store.SetLastHeat(ctx, 82272))

	last, found, err := store.LastHeat(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 82272, last)
}
