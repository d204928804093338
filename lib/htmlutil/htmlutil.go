package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"unicode"
	"pgptimes-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("pgptimes.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if c == '\u00a0' {
			newStr.WriteRune(' ')
			continue
		}
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// Text renders a selection's text the way timing pages are compared:
// &nbsp; replaced by spaces, non-printables dropped, inner whitespace
// runs collapsed to one space, trimmed.
func Text(sel *goquery.Selection) string {
	return CleanText(sel.Text())
}

func CleanText(s string) string {
	return textutil.CollapseWhitespace(removeNonPrintable(s))
}

// TextLines flattens a selection into one cleaned line per text node,
// skipping blanks. Mirrors how the legacy print pages read when
// stripped of markup.
func TextLines(sel *goquery.Selection) []string {
	var lines []string
	for _, n := range sel.Nodes {
		textLinesRecursive(n, &lines)
	}
	return lines
}

func textLinesRecursive(node *html.Node, lines *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		// a single text node can carry several lines (pre-style blocks)
		for _, raw := range strings.Split(node.Data, "\n") {
			line := CleanText(raw)
			if line != "" {
				*lines = append(*lines, line)
			}
		}
		return
	}
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	child := node.FirstChild
	for child != nil {
		textLinesRecursive(child, lines)
		child = child.NextSibling
	}
}

type Anchor struct {
	Name string
	Href string
}

func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := CleanText(GetText(n))
		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
