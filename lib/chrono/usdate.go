package chrono

import (
	"regexp"
	"strings"
	"time"
)

const months = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`

var (
	numericDateTimeRegex = regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+(\d{1,2}:\d{2}(?::\d{2})?)\s*([AP]M)`)
	monthDateTimeRegex   = regexp.MustCompile(`(?i)((?:` + months + `)\s+\d{1,2},\s*\d{4})\s+(\d{1,2}:\d{2}(?::\d{2})?)\s*([AP]M)`)
	bareDateRegex        = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
)

// ParseUSDateTime searches text for a U.S.-style timestamp. The three
// formats are tried in a fixed priority order, first match wins:
//
//  1. "8/23/2025 1:15 PM" (optionally with seconds)
//  2. "Aug 23, 2025 1:15 PM" (optionally with seconds)
//  3. "8/23/2025" alone, pinned to local noon so same-day comparisons
//     stay stable without a real time-of-day signal
func ParseUSDateTime(text string) (time.Time, bool) {
	t := whitespaceRegex.ReplaceAllString(text, " ")

	if m := numericDateTimeRegex.FindStringSubmatch(t); m != nil {
		layout := "1/2/2006 3:04PM"
		if strings.Count(m[2], ":") == 2 {
			layout = "1/2/2006 3:04:05PM"
		}
		parsed, err := time.Parse(layout, m[1]+" "+m[2]+strings.ToUpper(m[3]))
		if err == nil {
			return parsed, true
		}
	}

	if m := monthDateTimeRegex.FindStringSubmatch(t); m != nil {
		layout := "Jan 2, 2006 3:04PM"
		if strings.Count(m[2], ":") == 2 {
			layout = "Jan 2, 2006 3:04:05PM"
		}
		date := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
		parsed, err := time.Parse(layout, date+" "+m[2]+strings.ToUpper(m[3]))
		if err == nil {
			return parsed, true
		}
	}

	if m := bareDateRegex.FindString(t); m != "" {
		parsed, err := time.Parse("1/2/2006", m)
		if err == nil {
			return parsed.Add(12 * time.Hour), true
		}
	}

	return time.Time{}, false
}

// FormatISO renders a timestamp the way session documents store it:
// ISO-8601 to second precision, no zone suffix.
func FormatISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// ParseUSDateTimeISO is ParseUSDateTime pre-formatted for storage.
// Returns "" when no timestamp is found.
func ParseUSDateTimeISO(text string) string {
	t, ok := ParseUSDateTime(text)
	if !ok {
		return ""
	}
	return FormatISO(t)
}
