package clubspeed

import (
	"context"
	"log/slog"
	"strings"
	"pgptimes-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// MatchDisplayName resolves a roster driver's name against the names
// observed on one page. Precedence, first success wins:
//
//  1. exact string match
//  2. case/whitespace-normalized exact match
//  3. normalized prefix match in either direction (truncated names)
//  4. last-token (surname) containment
//
// A miss means the driver is absent from this page, not an error.
func MatchDisplayName(ctx context.Context, target string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if c == target {
			return c, true
		}
	}

	normTarget := textutil.NormalizeIdentity(target)
	if normTarget == "" {
		return "", false
	}
	for _, c := range candidates {
		if textutil.NormalizeIdentity(c) == normTarget {
			return c, true
		}
	}

	for _, c := range candidates {
		normC := textutil.NormalizeIdentity(c)
		if normC == "" {
			continue
		}
		if strings.HasPrefix(normC, normTarget) || strings.HasPrefix(normTarget, normC) {
			return c, true
		}
	}

	if last := textutil.LastToken(target); last != "" {
		for _, c := range candidates {
			if strings.Contains(textutil.NormalizeIdentity(c), last) {
				return c, true
			}
		}
	}

	closest, similarity := ClosestName(target, candidates)
	slog.DebugContext(ctx, "no identity match",
		"target", target, "closest", closest, "similarity", similarity)
	return "", false
}

// ClosestName reports the most similar candidate by Jaro-Winkler
// distance. Diagnostic only; never used to resolve an identity.
func ClosestName(target string, candidates []string) (string, float64) {
	var closest string
	var best float64
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(target, c, false)
		if similarity > best {
			best = similarity
			closest = c
		}
	}
	return closest, best
}
