/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingDigitsRe = regexp.MustCompile(`^\d+`)
	rowIDRe         = regexp.MustCompile(`^\d{7,8}`)
	lookupIDRe      = regexp.MustCompile(`^\d{7,8}$`)
)

// ParseRating extracts the leading integer from a rating cell such as "602",
// "602/25" or "1500*". Empty, "Unrated" and non-numeric cells yield nil.
func ParseRating(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "unrated") {
		return nil
	}

	digits := leadingDigitsRe.FindString(text)
	if digits == "" {
		return nil
	}
	r, err := strconv.Atoi(digits)
	if err != nil {
		// overflow
		return nil
	}

	return &r
}

// ValidID reports whether text begins with a 7 or 8 digit member id. Anything
// after the id is tolerated, which is what row scanning needs.
func ValidID(text string) bool {
	return rowIDRe.MatchString(strings.TrimSpace(text))
}

// ValidLookupID reports whether text is exactly a 7 or 8 digit member id.
func ValidLookupID(text string) bool {
	return lookupIDRe.MatchString(strings.TrimSpace(text))
}

func optionalText(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return &text
}

// rawRecord holds the untyped cell text for one record before normalization.
type rawRecord struct {
	id          string
	name        string
	regRating   string
	quickRating string
	state       string
	expiration  string
}

// normalize validates and converts a rawRecord scanned from a listing row.
// The second return value is false when the id cell does not look like a
// member id, i.e. the row was a header or decoration rather than player data.
func (raw rawRecord) normalize() (Player, bool) {
	if !ValidID(raw.id) {
		return Player{}, false
	}

	p := raw.toPlayer()
	// drop trailing markers such as "12345678*"
	p.ID = leadingDigitsRe.FindString(p.ID)

	return p, true
}

// toPlayer converts a rawRecord without validating its id. Detail pages use
// this directly since their id comes from the page heading or the request.
func (raw rawRecord) toPlayer() Player {
	return Player{
		ID:             strings.TrimSpace(raw.id),
		RegRating:      ParseRating(raw.regRating),
		QuickRating:    ParseRating(raw.quickRating),
		Name:           FormatName(collapseSpace(raw.name)),
		State:          optionalText(raw.state),
		ExpirationDate: optionalText(raw.expiration),
	}
}

// collapseSpace trims s and folds internal whitespace runs (including
// non-breaking spaces) into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
