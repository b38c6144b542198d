/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

func formFieldSelector(name string) string {
	return fmt.Sprintf("input[name='%v']", name)
}

func formFieldValue(doc *goquery.Document, name string) string {
	return doc.Find(formFieldSelector(name)).First().AttrOr("value", "")
}

// extractFormField parses the lightweight member page, e.g.
//
//	<input type=text name=memname size=40 value='SMITH, JOHN' readonly>
//
// An unknown id renders the same form with every value empty.
func extractFormField(doc *goquery.Document) []Player {
	raw := rawRecord{
		name:        formFieldValue(doc, "memname"),
		regRating:   formFieldValue(doc, "rating1"),
		quickRating: formFieldValue(doc, "rating2"),
		state:       formFieldValue(doc, "state_country"),
		expiration:  formFieldValue(doc, "memexpdt"),
	}
	if collapseSpace(raw.name) == "" {
		return []Player{}
	}
	if id := formFieldValue(doc, "memid"); ValidLookupID(id) {
		raw.id = id
	}

	return []Player{raw.toPlayer()}
}
