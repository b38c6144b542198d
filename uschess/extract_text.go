/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// textLineRe matches one line of the plain text member listing, e.g.
//
//	12345678  SMITH, JOHN Q            Reg: 1234 Exp:2025-12-31 TX
//
// The state column is absent for members without one.
var textLineRe = regexp.MustCompile(
	`^\s*(\d{7,8}\S*)\s+(.*?)\s+Reg:\s*(\S+)\s+Exp:\s*(\S+)(?:\s+([A-Za-z]{2}))?\s*$`)

const (
	textID = iota + 1
	textName
	textRegRating
	textExpiration
	textState
)

// textLines returns the lines of every <pre> block in document order.
func textLines(doc *goquery.Document) []string {
	var lines []string
	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, strings.Split(s.Text(), "\n")...)
	})

	return lines
}

func hasTextListing(doc *goquery.Document) bool {
	for _, line := range textLines(doc) {
		if textLineRe.MatchString(line) {
			return true
		}
	}

	return false
}

// extractText scans a preformatted member listing. Column headers and other
// lines which do not carry a member record are skipped.
func extractText(doc *goquery.Document, mode Mode) []Player {
	players := []Player{}

	for _, line := range textLines(doc) {
		m := textLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		raw := rawRecord{
			id:         m[textID],
			name:       m[textName],
			regRating:  m[textRegRating],
			expiration: m[textExpiration],
			state:      strings.ToUpper(m[textState]),
		}
		player, ok := raw.normalize()
		if !ok {
			continue
		}
		players = append(players, player)
		if mode == SingleRecord {
			break
		}
	}

	return players
}
