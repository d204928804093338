package clubspeed

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type AssembleOptions struct {
	// used when no tier of the heat-number chain produces a value,
	// normally the number the page was requested with
	FallbackSessionID int
	// heat types excluded from enrichment, case-insensitive exact
	ExcludedHeatTypes []string
	SourceLocator     string
}

// AssembleSession combines metadata and driver extraction into one
// record. An excluded heat type still yields a record, tagged with a
// skip reason so the exclusion stays auditable; its drivers must not be
// enriched further by the caller.
func AssembleSession(ctx context.Context, doc *goquery.Document, opts AssembleOptions) SessionRecord {
	meta := ExtractHeatMetadata(doc)

	sessionId := meta.HeatNumber
	if sessionId == 0 {
		sessionId = opts.FallbackSessionID
	}

	drivers, strategy := ExtractDrivers(doc)
	slog.DebugContext(ctx, "assembled session",
		"session_id", sessionId,
		"heat_type", meta.HeatType,
		"strategy", strategy,
		"drivers", len(drivers))

	record := SessionRecord{
		SessionID:     sessionId,
		SessionType:   meta.HeatType,
		StartTime:     meta.StartTime,
		Drivers:       drivers,
		SourceLocator: opts.SourceLocator,
	}

	heatType := strings.TrimSpace(meta.HeatType)
	if heatType != "" {
		for _, excluded := range opts.ExcludedHeatTypes {
			if strings.EqualFold(heatType, excluded) {
				record.SkipReason = "excluded heat type: " + heatType
				break
			}
		}
	}
	return record
}

// ParseHeatDetails is AssembleSession over raw page text.
func ParseHeatDetails(ctx context.Context, html string, opts AssembleOptions) (SessionRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return SessionRecord{}, err
	}
	return AssembleSession(ctx, doc, opts), nil
}
