/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"fmt"
	"log"
	"strings"
)

// FormatName converts a raw "LAST, FIRST MIDDLE" member name into the
// "Last, First, Middle" display form. Case is passed through unchanged. Names
// without a comma are returned trimmed.
func FormatName(raw string) (name string) {
	trimmed := strings.TrimSpace(raw)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("uschess.name: failed to format %q: %v", raw, r)
			name = trimmed
		}
	}()

	last, rest, found := strings.Cut(trimmed, ",")
	if !found {
		return trimmed
	}
	last = strings.TrimSpace(last)

	tokens := strings.Fields(rest)
	switch len(tokens) {
	case 0:
		return last
	case 1:
		return fmt.Sprintf("%v, %v", last, tokens[0])
	default:
		return fmt.Sprintf("%v, %v, %v", last, tokens[0],
			strings.Join(tokens[1:], " "))
	}
}
