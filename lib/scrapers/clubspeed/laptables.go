package clubspeed

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"pgptimes-backend/lib/chrono"
	"pgptimes-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// A lapStrategy is one self-contained way of pulling driver results out
// of a page. Strategies run in fixed priority order; the first one to
// produce any drivers wins for the whole page.
type lapStrategy struct {
	name  string
	parse func(doc *goquery.Document) []DriverResult
}

var lapStrategies = []lapStrategy{
	{"grouped-tables", parseLapTimesContainer},
	{"racer-text-blocks", parseRacerTextBlocks},
	{"header-table", parseHeaderTable},
	{"global-lap-table", parseGlobalLapTable},
}

// ExtractDrivers runs the strategy chain and returns the drivers in
// page order along with the name of the strategy that produced them.
func ExtractDrivers(doc *goquery.Document) ([]DriverResult, string) {
	for _, strategy := range lapStrategies {
		if drivers := strategy.parse(doc); len(drivers) > 0 {
			return drivers, strategy.name
		}
	}
	return nil, ""
}

// LapsByRacer maps each lap-bearing driver name to its ordered laps.
func LapsByRacer(doc *goquery.Document) map[string][]LapRecord {
	drivers, _ := ExtractDrivers(doc)
	laps := map[string][]LapRecord{}
	for _, d := range drivers {
		if len(d.Laps) > 0 {
			laps[d.DisplayName] = d.Laps
		}
	}
	return laps
}

var (
	bracketPosRegex   = regexp.MustCompile(`\[(\d+)\]`)
	bracketStripRegex = regexp.MustCompile(`\[[^\]]*\]`)
)

// parseLapTimesContainer handles the canonical layout: a container
// table holding one sub-table per driver, the driver's name in the
// header cell and one (lap, time) row per lap. A time cell may carry a
// bracketed running position, "81.234 [3]".
func parseLapTimesContainer(doc *goquery.Document) []DriverResult {
	container := doc.Find("table.LapTimesContainer").First()
	if container.Length() == 0 {
		return nil
	}

	var drivers []DriverResult
	container.Find("table.LapTimes").Each(func(_ int, tbl *goquery.Selection) {
		name := htmlutil.Text(tbl.Find("th").First())
		if name == "" {
			return
		}

		var laps []LapRecord
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			tds := tr.Find("td")
			if tds.Length() < 2 {
				return
			}
			lapIdx := htmlutil.Text(tds.Eq(0))
			// only rows whose first cell is a bare lap number
			if !chrono.IsBareInt(lapIdx) {
				return
			}

			value := htmlutil.Text(tds.Eq(1))
			position := -1
			if m := bracketPosRegex.FindStringSubmatch(value); m != nil {
				position, _ = strconv.Atoi(m[1])
			}
			timeText := strings.TrimSpace(bracketStripRegex.ReplaceAllString(value, ""))
			seconds, ok := chrono.ParseLapSeconds(timeText)
			if !ok {
				return
			}

			number, _ := strconv.Atoi(lapIdx)
			laps = append(laps, LapRecord{
				LapNumber:   number,
				LapSeconds:  seconds,
				LapPosition: position,
			})
		})

		drivers = append(drivers, DriverResult{
			DisplayName:    name,
			Position:       finalPosition(laps),
			BestLapSeconds: bestOf(laps),
			Laps:           laps,
		})
	})
	return drivers
}

var (
	penaltiesRegex = regexp.MustCompile(`^\(Penalties:\s*\d+\)`)
	lapLineRegex   = regexp.MustCompile(`^(\d+)\s+([\d:.]+)$`)
)

// parseRacerTextBlocks reads the "Lap Times by Racer" section of the
// print rendition: the page flattened to text lines, racer blocks
// delimited by a name line immediately followed by a penalties line.
func parseRacerTextBlocks(doc *goquery.Document) []DriverResult {
	lines := htmlutil.TextLines(doc.Selection)
	start := -1
	for i, line := range lines {
		if strings.Contains(line, "Lap Times by Racer") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var drivers []DriverResult
	i := start
	for i < len(lines) {
		if i+1 >= len(lines) || !penaltiesRegex.MatchString(lines[i+1]) {
			i++
			continue
		}

		name := lines[i]
		i += 2
		var laps []LapRecord
		for i < len(lines) {
			if i+1 < len(lines) && penaltiesRegex.MatchString(lines[i+1]) {
				break
			}
			if m := lapLineRegex.FindStringSubmatch(lines[i]); m != nil {
				if seconds, ok := chrono.ParseLapSeconds(m[2]); ok {
					number, _ := strconv.Atoi(m[1])
					laps = append(laps, LapRecord{
						LapNumber:   number,
						LapSeconds:  seconds,
						LapPosition: -1,
					})
				}
			}
			i++
		}

		if len(laps) > 0 {
			drivers = append(drivers, DriverResult{
				DisplayName:    name,
				BestLapSeconds: bestOf(laps),
				Laps:           laps,
			})
		}
	}
	return drivers
}

var (
	headerTableKeys = []string{"driver", "racer", "pos", "kart", "best", "laps"}
	digitsRegex     = regexp.MustCompile(`\d+`)
	kartCleanRegex  = regexp.MustCompile(`[^0-9A-Za-z-]+`)
	lapTimesHrefRe  = regexp.MustCompile(`(?i)LapTimes`)
)

// parseHeaderTable handles the summary layout: any table whose header
// row names recognizable columns, matched by substring. Absent columns
// yield absent fields, never a fabricated default.
func parseHeaderTable(doc *goquery.Document) []DriverResult {
	var drivers []DriverResult
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var headers []string
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.ToLower(htmlutil.Text(th)))
		})
		joined := strings.Join(headers, " | ")
		recognized := false
		for _, key := range headerTableKeys {
			if strings.Contains(joined, key) {
				recognized = true
				break
			}
		}
		if !recognized {
			return true
		}

		col := func(key string) int {
			for i, h := range headers {
				if strings.Contains(h, key) {
					return i
				}
			}
			return -1
		}
		nameIdx := col("driver")
		if nameIdx < 0 {
			nameIdx = col("racer")
		}
		posIdx := col("pos")
		kartIdx := col("kart")
		bestIdx := col("best")

		table.Find("tr").Each(func(rowIdx int, tr *goquery.Selection) {
			if rowIdx == 0 {
				return
			}
			cells := tr.Find("td,th")
			if cells.Length() < 2 {
				return
			}
			texts := make([]string, cells.Length())
			cells.Each(func(i int, cell *goquery.Selection) {
				texts[i] = htmlutil.Text(cell)
			})
			at := func(i int) string {
				if i < 0 || i >= len(texts) {
					return ""
				}
				return texts[i]
			}

			name := at(nameIdx)
			if name == "" {
				return
			}
			driver := DriverResult{DisplayName: name}

			if digits := digitsRegex.FindString(at(posIdx)); digits != "" {
				if pos, err := strconv.Atoi(digits); err == nil {
					driver.Position = &pos
				}
			}
			if kart := kartCleanRegex.ReplaceAllString(at(kartIdx), ""); kart != "" {
				driver.Kart = kart
			}
			if best, ok := chrono.ParseLapSeconds(at(bestIdx)); ok {
				driver.BestLapSeconds = &best
			}

			tr.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href := a.AttrOr("href", "")
				if lapTimesHrefRe.MatchString(href) {
					driver.LapTimesHref = href
					return false
				}
				return true
			})

			drivers = append(drivers, driver)
		})
		// first recognizable table only
		return false
	})
	return drivers
}

// parseGlobalLapTable is the lowest-priority structure: a single flat
// table of (lap, name, time) triples for all drivers combined, column
// order unknown. The three plausible orderings are tried per row and
// the first self-consistent one wins.
func parseGlobalLapTable(doc *goquery.Document) []DriverResult {
	byName := map[string][]LapRecord{}
	var order []string

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() < 3 {
				return
			}
			texts := [3]string{
				htmlutil.Text(cells.Eq(0)),
				htmlutil.Text(cells.Eq(1)),
				htmlutil.Text(cells.Eq(2)),
			}
			number, name, seconds, ok := matchLapTriple(texts)
			if !ok {
				return
			}
			if _, seen := byName[name]; !seen {
				order = append(order, name)
			}
			byName[name] = append(byName[name], LapRecord{
				LapNumber:   number,
				LapSeconds:  seconds,
				LapPosition: -1,
			})
		})
	})

	var drivers []DriverResult
	for _, name := range order {
		laps := byName[name]
		drivers = append(drivers, DriverResult{
			DisplayName:    name,
			BestLapSeconds: bestOf(laps),
			Laps:           laps,
		})
	}
	return drivers
}

var lapTripleOrders = [][3]int{
	{0, 1, 2}, // lap, name, time
	{0, 2, 1}, // lap, time, name
	{1, 0, 2}, // name, lap, time
}

func matchLapTriple(texts [3]string) (int, string, float64, bool) {
	for _, ord := range lapTripleOrders {
		lapText := texts[ord[0]]
		nameText := texts[ord[1]]
		timeText := texts[ord[2]]

		if !chrono.IsBareInt(lapText) {
			continue
		}
		if !strings.ContainsAny(timeText, ".:") {
			continue
		}
		seconds, ok := chrono.ParseLapSeconds(timeText)
		if !ok {
			continue
		}
		if nameText == "" || chrono.IsBareInt(nameText) {
			continue
		}
		if _, numeric := chrono.ParseLapSeconds(nameText); numeric {
			continue
		}

		number, _ := strconv.Atoi(lapText)
		return number, nameText, seconds, true
	}
	return 0, "", 0, false
}

// PickBestVariant parses each raw page variant independently and keeps
// the one producing the most distinct lap-bearing driver names. Ties
// keep the earlier variant.
func PickBestVariant(ctx context.Context, variants []PageVariant) (PageVariant, map[string][]LapRecord, bool) {
	var best PageVariant
	var bestLaps map[string][]LapRecord
	bestKeys := -1

	for _, v := range variants {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(v.HTML))
		if err != nil {
			slog.WarnContext(ctx, "failed to parse variant html", "variant", v.Tag, "err", err)
			continue
		}
		laps := LapsByRacer(doc)
		slog.DebugContext(ctx, "parsed page variant", "variant", v.Tag, "racer_sections", len(laps))
		if len(laps) > bestKeys {
			best = v
			bestLaps = laps
			bestKeys = len(laps)
		}
	}

	return best, bestLaps, bestKeys > 0
}

// ParseLapTimesPopup reads the standalone per-driver lap times page
// linked from summary tables: the first table whose header mentions
// laps, one lap per row, first parseable duration in the row is the
// time and the first bare integer after it the running position.
func ParseLapTimesPopup(doc *goquery.Document) []LapRecord {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		var headers []string
		t.Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.ToLower(htmlutil.Text(th)))
		})
		joined := strings.Join(headers, " | ")
		if strings.Contains(joined, "lap") &&
			(strings.Contains(joined, "time") || strings.Contains(joined, "position")) {
			table = t
			return false
		}
		return true
	})
	if table == nil {
		doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
			var headers []string
			t.Find("th").Each(func(_ int, th *goquery.Selection) {
				headers = append(headers, strings.ToLower(htmlutil.Text(th)))
			})
			if strings.Contains(strings.Join(headers, " | "), "lap") {
				table = t
				return false
			}
			return true
		})
	}
	if table == nil {
		return nil
	}

	var laps []LapRecord
	table.Find("tr").Each(func(rowIdx int, tr *goquery.Selection) {
		if rowIdx == 0 {
			return
		}
		var texts []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			texts = append(texts, htmlutil.Text(td))
		})
		if len(texts) == 0 {
			return
		}

		seconds := -1.0
		timeIdx := -1
		for i, t := range texts {
			if !strings.ContainsAny(t, ".:") {
				continue
			}
			if v, ok := chrono.ParseLapSeconds(t); ok {
				seconds = v
				timeIdx = i
				break
			}
		}
		if seconds < 0 {
			return
		}
		position := -1
		for _, t := range texts[timeIdx+1:] {
			if chrono.IsBareInt(t) {
				position, _ = strconv.Atoi(t)
				break
			}
		}

		laps = append(laps, LapRecord{
			LapNumber:   len(laps) + 1,
			LapSeconds:  seconds,
			LapPosition: position,
		})
	})
	return laps
}
