package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"pgptimes-backend/lib/heatstore"
	"pgptimes-backend/lib/heatstore/db"
	"pgptimes-backend/lib/serviceutil"
	"pgptimes-backend/lib/sqliteutil"
	"pgptimes-backend/lib/timeline"

	"github.com/spf13/cobra"
)

var (
	rebuildDb     *string
	rebuildOutDir *string
)

func init() {
	rebuildDb = rebuildCmd.Flags().String("db", "results.db", "The database to read sessions from.")
	rebuildOutDir = rebuildCmd.Flags().String("out-dir", "data", "The directory to write rebuilt views into.")
	rootCmd.AddCommand(rebuildCmd)
}

type runSummary struct {
	GeneratedAt string `json:"generated_at"`
	Sessions    int    `json:"sessions"`
	Skipped     int    `json:"skipped"`
	Drivers     int    `json:"drivers"`
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [--db <path/to/results.db>] [--out-dir <dir>]",
	Short: "Rebuilds the driver index and leaderboard from all persisted sessions.",
	Run: func(cmd *cobra.Command, args []string) {
		sqlite, err := sqliteutil.OpenDB(db.Schema, *rebuildDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer sqlite.Close()
		store := heatstore.NewStore(sqlite)

		ctx := serviceutil.SignalContext()

		sessions, err := store.List(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list sessions", err)
		}

		index := timeline.BuildDriverTimeline(sessions)
		board := timeline.BuildLeaderboard(sessions)

		names := make([]string, 0, len(index))
		for name := range index {
			names = append(names, name)
		}
		for _, pair := range timeline.NameVariants(names, 0.93) {
			slog.WarnContext(ctx, "possible name variants kept separate",
				"a", pair[0], "b", pair[1])
		}

		skipped := 0
		for _, session := range sessions {
			if session.SkipReason != "" {
				skipped++
			}
		}

		if err := os.MkdirAll(*rebuildOutDir, 0777); err != nil {
			serviceutil.Fatal("failed to create output directory", err)
		}
		writeJson(filepath.Join(*rebuildOutDir, "driver_index.json"), index)
		writeJson(filepath.Join(*rebuildOutDir, "leaderboard.json"), board)
		writeJson(filepath.Join(*rebuildOutDir, "summary.json"), runSummary{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Sessions:    len(sessions),
			Skipped:     skipped,
			Drivers:     len(index),
		})

		slog.InfoContext(ctx, "rebuilt views",
			"sessions", len(sessions), "skipped", skipped, "drivers", len(index))
	},
}

func writeJson(path string, value any) {
	contents, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		serviceutil.Fatal("failed to encode "+path, err)
	}
	if err := os.WriteFile(path, append(contents, '\n'), 0644); err != nil {
		serviceutil.Fatal("failed to write "+path, err)
	}
}
