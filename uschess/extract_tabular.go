/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"github.com/PuerkitoBio/goquery"
)

// Column layout of a member search listing row. The blitz and online rating
// columns are present but unused.
const (
	colID          = 0
	colRegRating   = 1
	colQuickRating = 2
	colState       = 7
	colExpiration  = 8
	colName        = 9

	tabularColumns = 10
)

func rowCells(row *goquery.Selection) *goquery.Selection {
	return row.ChildrenFiltered("td")
}

func hasTabularRow(doc *goquery.Document) bool {
	found := false
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		tds := rowCells(row)
		if tds.Length() >= tabularColumns && ValidID(tds.Eq(colID).Text()) {
			found = true
			return false // stop iteration
		}
		return true // continue
	})

	return found
}

// extractTabular scans listing rows in document order. Header, spacer and
// short rows are skipped.
func extractTabular(doc *goquery.Document, mode Mode) []Player {
	players := []Player{}

	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		tds := rowCells(row)
		if tds.Length() < tabularColumns {
			return true
		}

		raw := rawRecord{
			id:          tds.Eq(colID).Text(),
			regRating:   tds.Eq(colRegRating).Text(),
			quickRating: tds.Eq(colQuickRating).Text(),
			state:       tds.Eq(colState).Text(),
			expiration:  tds.Eq(colExpiration).Text(),
			name:        tds.Eq(colName).Text(),
		}
		player, ok := raw.normalize()
		if !ok {
			return true
		}
		players = append(players, player)

		return mode == MultiRecord
	})

	return players
}
