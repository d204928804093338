package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeIdentity prepares a display name for equality/prefix
// comparisons. The result is never shown to users.
func NormalizeIdentity(name string) string {
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return strings.ToLower(name)
}

// LastToken returns the final whitespace-delimited token of a name,
// lowercased. Usually the surname.
func LastToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.Trim(s, " \n\t"), " ")
}
