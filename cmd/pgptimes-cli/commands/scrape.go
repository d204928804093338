package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"pgptimes-backend/lib/heatstore"
	"pgptimes-backend/lib/heatstore/db"
	"pgptimes-backend/lib/scrapers/clubspeed"
	"pgptimes-backend/lib/serviceutil"
	"pgptimes-backend/lib/sqliteutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

var (
	scrapeDb    *string
	scrapeFrom  *int
	scrapeTo    *int
	scrapeLimit *int
)

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "results.db", "The database to write scrape results to.")
	scrapeFrom = scrapeCmd.Flags().Int("from", 0, "Heat number to start at, overriding the saved cursor.")
	scrapeTo = scrapeCmd.Flags().Int("to", 0, "Last heat number to attempt (inclusive).")
	scrapeLimit = scrapeCmd.Flags().Int("limit", 0, "Stop after persisting this many sessions.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--db <path/to/results.db>] [--from <heat>] [--to <heat>] [--limit <n>]",
	Short: "Backfills heat result pages into the database, resuming from the saved cursor.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := newClient(cfg)

		sqlite, err := sqliteutil.OpenDB(db.Schema, *scrapeDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer sqlite.Close()
		store := heatstore.NewStore(sqlite)

		ctx := serviceutil.SignalContext()

		first := firstHeat(ctx, cfg, store)
		slog.InfoContext(ctx, "starting backfill", "from", first)

		t1 := time.Now()
		persisted, lastAttempted := runBackfill(ctx, cfg, client, store, first)
		t2 := time.Now()

		slog.InfoContext(ctx, "backfill finished",
			"persisted", persisted,
			"last_attempted", lastAttempted,
			"seconds", t2.Sub(t1).Seconds())
	},
}

func firstHeat(ctx context.Context, cfg Config, store heatstore.Store) int {
	if *scrapeFrom > 0 {
		return *scrapeFrom
	}
	cursor, found, err := store.LastHeat(ctx)
	if err != nil {
		serviceutil.Fatal("failed to read cursor", err)
	}
	if found {
		return cursor + 1
	}
	return cfg.StartHeat
}

func runBackfill(
	ctx context.Context,
	cfg Config,
	client *clubspeed.Client,
	store heatstore.Store,
	first int,
) (persisted, lastAttempted int) {
	misses := 0
	for heat := first; ; heat++ {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "backfill interrupted", "heat", heat)
			return
		}
		if *scrapeTo > 0 && heat > *scrapeTo {
			return
		}
		if *scrapeLimit > 0 && persisted >= *scrapeLimit {
			return
		}
		lastAttempted = heat

		html, err := client.FetchHeatPage(ctx, heat)
		if err != nil {
			misses++
			slog.WarnContext(ctx, "heat page unavailable",
				"heat", heat, "consecutive", misses, "err", err)
			if misses >= cfg.MaxConsecutiveMisses {
				slog.InfoContext(ctx, "assuming end of heat history", "heat", heat)
				return
			}
			continue
		}
		misses = 0

		record, err := clubspeed.ParseHeatDetails(ctx, html, clubspeed.AssembleOptions{
			FallbackSessionID: heat,
			ExcludedHeatTypes: cfg.ExcludeHeatTypes,
			SourceLocator:     fmt.Sprintf("/sp_center/HeatDetails.aspx?HeatNo=%d", heat),
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse heat page", "heat", heat, "err", err)
			continue
		}

		if beforeStartYear(cfg, record.StartTime) {
			slog.InfoContext(ctx, "session predates start year",
				"heat", heat, "start_time", record.StartTime)
			if err := store.SetLastHeat(ctx, heat); err != nil {
				serviceutil.Fatal("failed to advance cursor", err)
			}
			continue
		}

		if record.SkipReason == "" {
			enrichLapsFromPopups(ctx, client, &record)
		}

		if err := store.Put(ctx, record); err != nil {
			serviceutil.Fatal("failed to persist session", err)
		}
		if err := store.SetLastHeat(ctx, heat); err != nil {
			serviceutil.Fatal("failed to advance cursor", err)
		}
		persisted++
		slog.InfoContext(ctx, "persisted session",
			"heat", record.SessionID,
			"drivers", len(record.Drivers),
			"skip_reason", record.SkipReason)
	}
}

func beforeStartYear(cfg Config, startTime string) bool {
	if cfg.StartYear <= 0 || len(startTime) < 4 {
		return false
	}
	year, err := strconv.Atoi(startTime[:4])
	if err != nil {
		return false
	}
	return year < cfg.StartYear
}

// enrichLapsFromPopups fetches the per-driver lap times popup for
// drivers the main page only listed summary rows for. Popup failures
// leave the driver with whatever the page itself yielded.
func enrichLapsFromPopups(ctx context.Context, client *clubspeed.Client, record *clubspeed.SessionRecord) {
	for i := range record.Drivers {
		driver := &record.Drivers[i]
		if len(driver.Laps) > 0 || driver.LapTimesHref == "" {
			continue
		}

		html, err := client.FetchPage(ctx, client.ResolveRef(driver.LapTimesHref))
		if err != nil {
			slog.WarnContext(ctx, "lap times popup unavailable",
				"heat", record.SessionID, "driver", driver.DisplayName, "err", err)
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			slog.WarnContext(ctx, "failed to parse lap times popup",
				"heat", record.SessionID, "driver", driver.DisplayName, "err", err)
			continue
		}

		laps := clubspeed.ParseLapTimesPopup(doc)
		if len(laps) == 0 {
			continue
		}
		driver.Laps = laps
		if driver.BestLapSeconds == nil {
			best := laps[0].LapSeconds
			for _, lap := range laps[1:] {
				if lap.LapSeconds < best {
					best = lap.LapSeconds
				}
			}
			driver.BestLapSeconds = &best
		}
	}
}
