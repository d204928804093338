package commands

import (
	"fmt"
	"os"
	"pgptimes-backend/lib/heatstore"
	"pgptimes-backend/lib/heatstore/db"
	"pgptimes-backend/lib/serviceutil"
	"pgptimes-backend/lib/sqliteutil"
	"pgptimes-backend/lib/timeline"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	leaderboardDb  *string
	leaderboardTop *int
)

func init() {
	leaderboardDb = leaderboardCmd.Flags().String("db", "results.db", "The database to read sessions from.")
	leaderboardTop = leaderboardCmd.Flags().Int("top", 25, "How many drivers to show.")
	rootCmd.AddCommand(leaderboardCmd)
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard [--db <path/to/results.db>] [--top <n>]",
	Short: "Prints the best-lap leaderboard across all persisted sessions.",
	Run: func(cmd *cobra.Command, args []string) {
		sqlite, err := sqliteutil.OpenDB(db.Schema, *leaderboardDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer sqlite.Close()
		store := heatstore.NewStore(sqlite)

		sessions, err := store.List(serviceutil.SignalContext())
		if err != nil {
			serviceutil.Fatal("failed to list sessions", err)
		}
		board := timeline.BuildLeaderboard(sessions)
		if *leaderboardTop > 0 && len(board) > *leaderboardTop {
			board = board[:*leaderboardTop]
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Driver", "Best Lap", "Heat", "Date"})
		for i, row := range board {
			t.AppendRow(table.Row{
				i + 1,
				row.DisplayName,
				fmt.Sprintf("%.3f", row.BestLapSeconds),
				row.SessionID,
				row.StartTime,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
