package clubspeed

// LapRecord is one timed lap for one driver within a session, created
// from a single table row and immutable afterward.
type LapRecord struct {
	LapNumber  int     `json:"lap_number"`
	LapSeconds float64 `json:"lap_seconds"`
	// running position on this lap, -1 when the page gives none
	LapPosition int `json:"lap_position"`
}

type DriverResult struct {
	DisplayName string `json:"display_name"`
	// external id from the roster, filled in by callers that know it
	CanonicalID    string      `json:"canonical_id,omitempty"`
	Position       *int        `json:"position,omitempty"`
	Kart           string      `json:"kart,omitempty"`
	BestLapSeconds *float64    `json:"best_lap_seconds,omitempty"`
	Laps           []LapRecord `json:"laps,omitempty"`
	// relative link to the per-driver lap times popup, when the page
	// lists one instead of inline laps
	LapTimesHref string `json:"lap_times_href,omitempty"`
}

// SessionRecord is the persisted form of one heat page. Drivers keep
// page order, not finishing order.
type SessionRecord struct {
	SessionID     int            `json:"session_id"`
	SessionType   string         `json:"session_type"`
	StartTime     string         `json:"start_time,omitempty"`
	Drivers       []DriverResult `json:"drivers"`
	SourceLocator string         `json:"source_locator"`
	SkipReason    string         `json:"skip_reason,omitempty"`
}

func bestOf(laps []LapRecord) *float64 {
	if len(laps) == 0 {
		return nil
	}
	best := laps[0].LapSeconds
	for _, lap := range laps[1:] {
		if lap.LapSeconds < best {
			best = lap.LapSeconds
		}
	}
	return &best
}

// finalPosition scans from the last lap backward for the first lap
// carrying a running position. Earlier laps are running order, not
// final classification.
func finalPosition(laps []LapRecord) *int {
	for i := len(laps) - 1; i >= 0; i-- {
		if laps[i].LapPosition > 0 {
			pos := laps[i].LapPosition
			return &pos
		}
	}
	return nil
}
