package clubspeed

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"pgptimes-backend/lib/chrono"
	"pgptimes-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var (
	heatNoHrefRegex = regexp.MustCompile(`HeatNo=(\d+)`)
	custIdHrefRegex = regexp.MustCompile(`CustID=([^&\s]+)`)
)

// ExtractHeatNumbers lists the distinct heat numbers linked from a
// racer history page, in page order.
func ExtractHeatNumbers(ctx context.Context, doc *goquery.Document) []int {
	seen := map[int]bool{}
	var heats []int
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("a[href]")) {
		m := heatNoHrefRegex.FindStringSubmatch(anchor.Href)
		if m == nil {
			continue
		}
		heatNo, err := strconv.Atoi(m[1])
		if err != nil || seen[heatNo] {
			continue
		}
		seen[heatNo] = true
		heats = append(heats, heatNo)
	}
	return heats
}

// ExtractHeatDates maps heat numbers to the dates shown alongside their
// links on a racer history page. Used for early year filtering before
// any heat page is fetched.
func ExtractHeatDates(doc *goquery.Document) map[int]time.Time {
	heatDates := map[int]time.Time{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		m := heatNoHrefRegex.FindStringSubmatch(a.AttrOr("href", ""))
		if m == nil {
			return
		}
		heatNo, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}

		row := a.Closest("tr")
		row.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			if parsed, ok := chrono.ParseUSDateTime(htmlutil.Text(td)); ok {
				heatDates[heatNo] = parsed
				return false
			}
			return true
		})
		if _, found := heatDates[heatNo]; !found {
			text := htmlutil.Text(a) + " " + htmlutil.Text(row)
			if parsed, ok := chrono.ParseUSDateTime(text); ok {
				heatDates[heatNo] = parsed
			}
		}
	})
	return heatDates
}

// ExtractCustomerNames maps customer ids to the display names a heat
// page renders for them, via the racer history links in the results
// table. Lets a roster id pin down its display name before matching.
func ExtractCustomerNames(doc *goquery.Document) map[string]string {
	names := map[string]string{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if !strings.Contains(href, "RacerHistory.aspx") {
			return
		}
		m := custIdHrefRegex.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if name := htmlutil.Text(a); name != "" {
			names[m[1]] = name
		}
	})
	return names
}
