/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nameHeading finds the member name block on a detail page.
func nameHeading(doc *goquery.Document) *goquery.Selection {
	return doc.Find("font[size='5']").FilterFunction(
		func(_ int, s *goquery.Selection) bool {
			return strings.TrimSpace(s.Text()) != ""
		}).First()
}

// leafCells returns every table cell which does not itself contain a table
// cell, in document order. Layout tables nest deeply on the detail page so
// only the innermost cells hold a single label or value.
func leafCells(doc *goquery.Document) *goquery.Selection {
	return doc.Find("td").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find("td").Length() == 0
	})
}

// labeledValue returns the text of the cell following the first cell matched
// by isLabel.
func labeledValue(cells *goquery.Selection,
	isLabel func(text string) bool) (string, bool) {

	for i := 0; i < cells.Length()-1; i++ {
		if isLabel(cells.Eq(i).Text()) {
			return cells.Eq(i + 1).Text(), true
		}
	}

	return "", false
}

func hasLabel(label string) func(string) bool {
	return func(text string) bool {
		return strings.Contains(text, label)
	}
}

func isRegularRatingLabel(text string) bool {
	return strings.Contains(text, "Regular Rating") &&
		!strings.Contains(strings.ToLower(text), "pre-rating")
}

// beforeSlash drops the games-played suffix of cells such as "1500/25".
func beforeSlash(text string) string {
	before, _, _ := strings.Cut(text, "/")
	return before
}

// extractLabeled parses a member detail page. The heading may be prefixed
// with the member id ("12345678: SMITH, JOHN"), in which case the id is
// taken from it.
func extractLabeled(doc *goquery.Document) []Player {
	heading := collapseSpace(nameHeading(doc).Text())
	if heading == "" {
		return []Player{}
	}

	raw := rawRecord{name: heading}
	if prefix, rest, ok := strings.Cut(heading, ":"); ok &&
		ValidLookupID(prefix) {

		raw.id = strings.TrimSpace(prefix)
		raw.name = rest
	}

	cells := leafCells(doc)
	if v, ok := labeledValue(cells, isRegularRatingLabel); ok {
		raw.regRating = beforeSlash(v)
	}
	if v, ok := labeledValue(cells, hasLabel("Quick Rating")); ok {
		raw.quickRating = beforeSlash(v)
	}
	if v, ok := labeledValue(cells, hasLabel("State:")); ok {
		raw.state = v
	}
	if v, ok := labeledValue(cells, hasLabel("Expires")); ok {
		raw.expiration = v
	}

	return []Player{raw.toPlayer()}
}
