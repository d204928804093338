package commands

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"pgptimes-backend/lib/chrono"
	"pgptimes-backend/lib/roster"
	"pgptimes-backend/lib/scrapers/clubspeed"
	"pgptimes-backend/lib/serviceutil"
	"pgptimes-backend/lib/timeline"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

var alllapsOut *string

func init() {
	alllapsOut = alllapsCmd.Flags().String("out", "all_laps.csv", "The CSV file to write laps to.")
	rootCmd.AddCommand(alllapsCmd)
}

var alllapsCmd = &cobra.Command{
	Use:   "alllaps [--out <path/to/all_laps.csv>]",
	Short: "Exports every lap for every roster driver by walking their racer history pages.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := newClient(cfg)

		drivers, err := roster.Load(cfg.Roster)
		if err != nil {
			serviceutil.Fatal("failed to load driver roster", err)
		}
		slog.Info("exporting laps", "drivers", len(drivers))

		ctx := serviceutil.SignalContext()

		var rows []timeline.LapRow
		for _, driver := range drivers {
			if ctx.Err() != nil {
				break
			}
			rows = append(rows, collectDriverLaps(ctx, cfg, client, driver)...)
		}

		sort.Slice(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.DriverName != b.DriverName {
				return a.DriverName < b.DriverName
			}
			if a.SessionID != b.SessionID {
				return a.SessionID < b.SessionID
			}
			return a.LapNumber < b.LapNumber
		})

		out, err := os.Create(*alllapsOut)
		if err != nil {
			serviceutil.Fatal("failed to create output file", err)
		}
		defer out.Close()
		if err := timeline.WriteAllLaps(out, rows); err != nil {
			serviceutil.Fatal("failed to write laps", err)
		}
		slog.Info("wrote laps", "rows", len(rows), "out", *alllapsOut)
	},
}

func collectDriverLaps(ctx context.Context, cfg Config, client *clubspeed.Client, driver roster.Driver) []timeline.LapRow {
	historyHtml, err := client.FetchRacerHistory(ctx, driver.ExternalID)
	if err != nil {
		slog.WarnContext(ctx, "racer history unavailable",
			"driver", driver.DisplayName, "err", err)
		return nil
	}
	historyDoc, err := goquery.NewDocumentFromReader(strings.NewReader(historyHtml))
	if err != nil {
		slog.WarnContext(ctx, "failed to parse racer history",
			"driver", driver.DisplayName, "err", err)
		return nil
	}

	heats := clubspeed.ExtractHeatNumbers(ctx, historyDoc)
	dates := clubspeed.ExtractHeatDates(historyDoc)
	slog.InfoContext(ctx, "found heats for driver",
		"driver", driver.DisplayName, "heats", len(heats))

	var rows []timeline.LapRow
	for _, heat := range heats {
		if ctx.Err() != nil {
			break
		}

		// year filter from the history date, before fetching anything
		if date, found := dates[heat]; found && cfg.StartYear > 0 && date.Year() < cfg.StartYear {
			slog.DebugContext(ctx, "heat predates start year",
				"heat", heat, "date", date.Format("2006-01-02"))
			continue
		}

		variants := client.FetchHeatVariants(ctx, heat)
		best, lapsByRacer, ok := clubspeed.PickBestVariant(ctx, variants)
		if !ok {
			slog.WarnContext(ctx, "no variant yielded laps", "heat", heat)
			continue
		}

		rows = append(rows, heatLapRows(ctx, cfg, driver, heat, dates, best, lapsByRacer)...)
	}
	return rows
}

// heatLapRows turns one heat's best variant into CSV rows for one
// roster driver. The page pins the display name and the timestamp; the
// history row only fills in when the page has no date of its own.
func heatLapRows(
	ctx context.Context,
	cfg Config,
	driver roster.Driver,
	heat int,
	histDates map[int]time.Time,
	best clubspeed.PageVariant,
	lapsByRacer map[string][]clubspeed.LapRecord,
) []timeline.LapRow {
	target := driver.DisplayName
	startTime := ""
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(best.HTML)); err == nil {
		if name := clubspeed.ExtractCustomerNames(doc)[driver.ExternalID]; name != "" {
			target = name
		}
		startTime = clubspeed.ExtractHeatMetadata(doc).StartTime
	}
	if startTime == "" {
		if date, found := histDates[heat]; found {
			startTime = chrono.FormatISO(date)
		}
	}
	if cfg.StartYear > 0 && len(startTime) >= 4 {
		if year, err := strconv.Atoi(startTime[:4]); err == nil && year < cfg.StartYear {
			slog.DebugContext(ctx, "heat predates start year",
				"heat", heat, "date", startTime)
			return nil
		}
	}

	keys := make([]string, 0, len(lapsByRacer))
	for key := range lapsByRacer {
		keys = append(keys, key)
	}
	// stable candidate order; the fuzzy tiers could otherwise flap
	sort.Strings(keys)
	matched, ok := clubspeed.MatchDisplayName(ctx, target, keys)
	if !ok {
		slog.WarnContext(ctx, "driver not found on heat page",
			"driver", target, "heat", heat)
		return nil
	}

	var rows []timeline.LapRow
	for _, lap := range lapsByRacer[matched] {
		rows = append(rows, timeline.LapRow{
			DriverName: target,
			DriverID:   driver.ExternalID,
			SessionID:  heat,
			StartTime:  startTime,
			LapNumber:  lap.LapNumber,
			LapSeconds: lap.LapSeconds,
		})
	}
	return rows
}
