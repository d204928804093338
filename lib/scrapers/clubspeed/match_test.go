package clubspeed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchDisplayName(t *testing.T) {
	ctx := context.Background()

	match, ok := MatchDisplayName(ctx, "Jane Racer", []string{"John Doe", "Jane Racer"})
	require.True(t, ok)
	require.Equal(t, "Jane Racer", match)

	// case and whitespace differences
	match, ok = MatchDisplayName(ctx, "Jane  Racer", []string{"jane racer"})
	require.True(t, ok)
	require.Equal(t, "jane racer", match)

	// truncated page rendition
	match, ok = MatchDisplayName(ctx, "Jane R", []string{"John Doe", "Jane Racer"})
	require.True(t, ok)
	require.Equal(t, "Jane Racer", match)

	// surname containment
	match, ok = MatchDisplayName(ctx, "Jane Racer", []string{"RACER, J"})
	require.True(t, ok)
	require.Equal(t, "RACER, J", match)

	// absence is not an error
	_, ok = MatchDisplayName(ctx, "Jane Racer", []string{"John Doe"})
	require.False(t, ok)
}

func TestMatchDisplayNamePrecedence(t *testing.T) {
	ctx := context.Background()

	// exact beats the prefix tier even when a prefix candidate comes first
	match, ok := MatchDisplayName(ctx, "Jane Racer", []string{"Jane Racer Jr", "Jane Racer"})
	require.True(t, ok)
	require.Equal(t, "Jane Racer", match)
}

func TestClosestName(t *testing.T) {
	closest, similarity := ClosestName("Jane Racer", []string{"Jane Race", "John Doe"})
	require.Equal(t, "Jane Race", closest)
	require.Greater(t, similarity, 0.9)
}
