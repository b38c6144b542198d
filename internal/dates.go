/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// placeholders uschess.org renders instead of a date
var noDateValues = map[string]struct{}{
	"":     {},
	"null": {},
	"n/a":  {},
	"life": {},
	"-":    {},
}

// ParseDateOrZero returns a parsed time, or the zero time if s is empty or a
// known placeholder such as "null" or "Life".
func ParseDateOrZero(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if _, ok := noDateValues[strings.ToLower(s)]; ok {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}
