/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Mode selects how many records a listing may produce.
type Mode int

const (
	SingleRecord Mode = iota
	MultiRecord
)

// Shape identifies which upstream page layout a response body uses.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeLabeled is the member detail page: a large name heading followed
	// by "label | value" table cells.
	ShapeLabeled
	// ShapeTabular is the member search listing: one 10 column row per
	// player.
	ShapeTabular
	// ShapeFormField is the lightweight member page which renders each field
	// as a read-only form input.
	ShapeFormField
	// ShapeText is the plain text member listing: one preformatted line per
	// player.
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeLabeled:
		return "labeled"
	case ShapeTabular:
		return "tabular"
	case ShapeFormField:
		return "formfield"
	case ShapeText:
		return "text"
	default:
		return "unknown"
	}
}

// lowercase substrings which indicate an anti-bot or access denied page
var blockedMarkers = []string{
	"access denied",
	"attention required!",
	"checking your browser",
	"request unsuccessful",
	"you have been blocked",
}

// patterns which indicate a legitimate empty result; word boundaries keep
// "10 members found" from reading as empty
var noResultsMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bplayers found:\s*0\b`),
	regexp.MustCompile(`(?i)\bno players found\b`),
	regexp.MustCompile(`(?i)\b0 members found\b`),
	regexp.MustCompile(`(?i)\binvalid id\b`),
}

// Extract parses one upstream response body into player records. An empty
// result with a nil error means the page legitimately held no players.
// ErrBlocked, ErrUnrecognizedShape and ErrMalformed report why nothing could
// be extracted; they are informational and never accompany partial results.
func Extract(body string, mode Mode) ([]Player, error) {
	_, players, err := extract(body, mode)
	return players, err
}

// DetectShape reports which layout body uses without extracting anything.
func DetectShape(body string) Shape {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ShapeUnknown
	}

	return detectShape(doc)
}

func extract(body string, mode Mode) (shape Shape, players []Player,
	err error) {

	defer func() {
		if r := recover(); r != nil {
			players = nil
			err = fmt.Errorf("%w: %v shape: %v", ErrMalformed, shape, r)
		}
	}()

	lower := strings.ToLower(body)
	if containsAny(lower, blockedMarkers) {
		return ShapeUnknown, nil, ErrBlocked
	}
	if matchesAny(body, noResultsMarkers) {
		return ShapeUnknown, []Player{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ShapeUnknown, nil, fmt.Errorf("%w: parsing HTML: %v",
			ErrMalformed, err)
	}

	shape = detectShape(doc)
	switch shape {
	case ShapeTabular:
		players = extractTabular(doc, mode)
	case ShapeLabeled:
		players = extractLabeled(doc)
	case ShapeFormField:
		players = extractFormField(doc)
	case ShapeText:
		players = extractText(doc, mode)
	default:
		return shape, nil, ErrUnrecognizedShape
	}

	return shape, players, nil
}

// detectShape checks the most specific layouts first; a search listing may
// carry decorative headings which would otherwise look like a detail page.
func detectShape(doc *goquery.Document) Shape {
	if doc.Find(formFieldSelector("memname")).Length() > 0 {
		return ShapeFormField
	}
	if hasTabularRow(doc) {
		return ShapeTabular
	}
	if hasTextListing(doc) {
		return ShapeText
	}
	if nameHeading(doc).Length() > 0 {
		return ShapeLabeled
	}

	return ShapeUnknown
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}

	return false
}
