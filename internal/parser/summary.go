package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// PlainSummary converts the catalog's HTML show summary to a single line of
// plain text. Paragraphs and list items are separated by a space.
func PlainSummary(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	if !strings.Contains(html, "<") {
		return collapseSpaces(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapseSpaces(html)
	}

	var parts []string
	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpaces(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return collapseSpaces(doc.Text())
	}
	return strings.Join(parts, " ")
}

// NormalizeQuery trims and collapses whitespace and applies Unicode NFC, so
// that visually identical queries produce the same cache key and compare equal.
func NormalizeQuery(query string) string {
	return norm.NFC.String(collapseSpaces(query))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
