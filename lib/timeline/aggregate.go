package timeline

import (
	"sort"
	"pgptimes-backend/lib/scrapers/clubspeed"

	"github.com/antzucaro/matchr"
)

// Entry is one driver's participation in one session.
type Entry struct {
	SessionID      int                   `json:"session_id"`
	SessionType    string                `json:"session_type"`
	Position       *int                  `json:"position,omitempty"`
	Kart           string                `json:"kart,omitempty"`
	BestLapSeconds *float64              `json:"best_lap_seconds,omitempty"`
	Laps           []clubspeed.LapRecord `json:"laps,omitempty"`
	StartTime      string                `json:"start_time,omitempty"`
}

// BuildDriverTimeline folds persisted sessions into a per-driver view,
// keyed by exact display name. Name variants across sessions are not
// reconciled here; see NameVariants. Entries are sorted by
// (start_time, session_id) ascending with absent start times first.
// The view is rebuilt in full on every run, never patched.
func BuildDriverTimeline(sessions []clubspeed.SessionRecord) map[string][]Entry {
	byName := map[string][]Entry{}
	for _, session := range sessions {
		for _, driver := range session.Drivers {
			if driver.DisplayName == "" {
				continue
			}
			byName[driver.DisplayName] = append(byName[driver.DisplayName], Entry{
				SessionID:      session.SessionID,
				SessionType:    session.SessionType,
				Position:       driver.Position,
				Kart:           driver.Kart,
				BestLapSeconds: driver.BestLapSeconds,
				Laps:           driver.Laps,
				StartTime:      session.StartTime,
			})
		}
	}

	for _, entries := range byName {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].StartTime != entries[j].StartTime {
				// "" sorts before any timestamp
				return entries[i].StartTime < entries[j].StartTime
			}
			return entries[i].SessionID < entries[j].SessionID
		})
	}
	return byName
}

// LeaderboardRow is one driver's single best session.
type LeaderboardRow struct {
	DisplayName    string  `json:"display_name"`
	BestLapSeconds float64 `json:"best_lap_seconds"`
	SessionID      int     `json:"session_id"`
	StartTime      string  `json:"start_time,omitempty"`
}

// BuildLeaderboard picks, for each display name, the session with the
// minimum best lap, sorted ascending by that lap. Equal bests keep the
// earlier session; equal laps across drivers order by name so output
// is deterministic.
func BuildLeaderboard(sessions []clubspeed.SessionRecord) []LeaderboardRow {
	bestByName := map[string]LeaderboardRow{}
	for _, session := range sessions {
		for _, driver := range session.Drivers {
			if driver.DisplayName == "" || driver.BestLapSeconds == nil {
				continue
			}
			current, found := bestByName[driver.DisplayName]
			if found && current.BestLapSeconds <= *driver.BestLapSeconds {
				continue
			}
			bestByName[driver.DisplayName] = LeaderboardRow{
				DisplayName:    driver.DisplayName,
				BestLapSeconds: *driver.BestLapSeconds,
				SessionID:      session.SessionID,
				StartTime:      session.StartTime,
			}
		}
	}

	rows := make([]LeaderboardRow, 0, len(bestByName))
	for _, row := range bestByName {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BestLapSeconds != rows[j].BestLapSeconds {
			return rows[i].BestLapSeconds < rows[j].BestLapSeconds
		}
		return rows[i].DisplayName < rows[j].DisplayName
	})
	return rows
}

// NameVariants reports pairs of distinct display names similar enough
// to plausibly be the same driver rendered differently. The aggregator
// keys by exact name; this surfaces the gap without silently merging.
func NameVariants(names []string, threshold float64) [][2]string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var pairs [][2]string
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if matchr.JaroWinkler(sorted[i], sorted[j], false) >= threshold {
				pairs = append(pairs, [2]string{sorted[i], sorted[j]})
			}
		}
	}
	return pairs
}
