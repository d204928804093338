package clubspeed

import (
	"regexp"
	"strconv"
	"pgptimes-backend/lib/chrono"
	"pgptimes-backend/lib/htmlutil"
	"pgptimes-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// HeatMetadata holds the three fields extracted independently from a
// heat page, each through its own locator chain. HeatNumber is 0 when
// no tier produced one; the caller supplies a fallback.
type HeatMetadata struct {
	HeatNumber int
	HeatType   string
	StartTime  string
}

// locator is one tier of a fallback chain: a pure lookup that returns
// "" on a structural miss.
type locator func(doc *goquery.Document) string

func firstResult(doc *goquery.Document, locators ...locator) string {
	for _, locate := range locators {
		if v := locate(doc); v != "" {
			return v
		}
	}
	return ""
}

func ExtractHeatMetadata(doc *goquery.Document) HeatMetadata {
	return HeatMetadata{
		HeatNumber: extractHeatNumber(doc),
		HeatType:   firstResult(doc, heatTypeLabel, heatTypeSibling),
		StartTime:  firstResult(doc, startTimeExact, startTimeDateRow, startTimeLabelScan),
	}
}

var heatNumberRegex = regexp.MustCompile(`(?i)heat(?:no)?\s*[#:=]?\s*(\d+)`)

func extractHeatNumber(doc *goquery.Document) int {
	number := firstResult(doc, heatNumberFromTitle, heatNumberFromHeadings)
	if number == "" {
		return 0
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return 0
	}
	return n
}

func heatNumberFromTitle(doc *goquery.Document) string {
	title := htmlutil.Text(doc.Find("title"))
	if m := heatNumberRegex.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return ""
}

func heatNumberFromHeadings(doc *goquery.Document) string {
	found := ""
	doc.Find("h1,h2,h3,span,div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if m := heatNumberRegex.FindStringSubmatch(htmlutil.Text(sel)); m != nil {
			found = m[1]
			return false
		}
		return true
	})
	return found
}

func heatTypeLabel(doc *goquery.Document) string {
	return htmlutil.Text(doc.Find("[id*='lblRaceType']").First())
}

var heatTypeLabelRegex = regexp.MustCompile(`(?i)(heat|race)\s*type`)

func heatTypeSibling(doc *goquery.Document) string {
	return nextLabeledValue(doc, heatTypeLabelRegex, nil)
}

func startTimeExact(doc *goquery.Document) string {
	return chrono.ParseUSDateTimeISO(htmlutil.Text(doc.Find("#lblDate")))
}

// startTimeDateRow looks for the structural results row whose left cell
// is the "Date" label and whose right cell holds the value.
func startTimeDateRow(doc *goquery.Document) string {
	found := ""
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		left := tr.Find("td.HeatResultsLeftCell")
		right := tr.Find("td.HeatResultsRightCell")
		if left.Length() == 0 || right.Length() == 0 {
			return true
		}
		label := left.Find("#lblDate1")
		if label.Length() == 0 || textutil.NormalizeIdentity(htmlutil.Text(label)) != "date" {
			return true
		}
		// prefer a span inside the right cell
		text := htmlutil.Text(right.Find("span"))
		if text == "" {
			text = htmlutil.Text(right)
		}
		found = chrono.ParseUSDateTimeISO(text)
		return found == ""
	})
	return found
}

var startTimeLabelRegex = regexp.MustCompile(`(?i)(start\s*time|date\s*time|session\s*time)`)

// startTimeLabelScan is the last resort; generic date-phrase scanning
// on these pages risks matching unrelated timestamps, so it runs only
// when the structural tiers miss.
func startTimeLabelScan(doc *goquery.Document) string {
	return nextLabeledValue(doc, startTimeLabelRegex, chrono.ParseUSDateTimeISO)
}

// nextLabeledValue finds the first cell/label element whose text
// matches labelRegex and returns the text of the next cell-like element
// in document order. A non-nil accept function transforms the value and
// rejects candidates it maps to "".
func nextLabeledValue(doc *goquery.Document, labelRegex *regexp.Regexp, accept func(string) string) string {
	nodes := doc.Find("td,span,div,th").Nodes
	for i, n := range nodes {
		if !labelRegex.MatchString(htmlutil.CleanText(htmlutil.GetText(n))) {
			continue
		}
		for _, next := range nodes[i+1:] {
			if next.Data == "th" {
				continue
			}
			value := htmlutil.CleanText(htmlutil.GetText(next))
			// nested markup can surface the label again
			if value == "" || labelRegex.MatchString(value) {
				continue
			}
			if accept != nil {
				value = accept(value)
				if value == "" {
					continue
				}
			}
			return value
		}
	}
	return ""
}
