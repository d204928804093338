package chrono

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseLapSeconds converts a lap time cell ("1:21.234" or "81.234")
// into seconds. Returns false on empty or non-numeric text.
func ParseLapSeconds(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		minutes, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0, false
		}
		seconds, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil {
			return 0, false
		}
		return float64(minutes)*60 + seconds, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var bareIntRegex = regexp.MustCompile(`^\d+$`)

func IsBareInt(s string) bool {
	return bareIntRegex.MatchString(s)
}
