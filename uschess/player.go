/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"time"

	"github.com/mikeb26/uscf-lookup/internal"
)

// Player holds the normalized record for one USCF member.
type Player struct {
	ID             string  `json:"uscf_id"`
	Name           string  `json:"name"`
	RegRating      *int    `json:"rating_regular"`
	QuickRating    *int    `json:"rating_quick"`
	State          *string `json:"state"`
	ExpirationDate *string `json:"expiration_date"`
}

// Expires interprets the free-text expiration date. The second return value
// is false when the date is absent or not in a recognizable format.
func (p *Player) Expires() (time.Time, bool) {
	if p.ExpirationDate == nil {
		return time.Time{}, false
	}
	t, err := internal.ParseDateOrZero(*p.ExpirationDate)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}

	return t, true
}

// IsExpired reports whether the membership lapsed before now. Memberships
// whose expiration cannot be interpreted are never considered expired.
func (p *Player) IsExpired(now time.Time) bool {
	exp, ok := p.Expires()
	if !ok {
		return false
	}
	// upstream dates are day granular; a membership is good through its
	// expiration day
	return now.After(exp.AddDate(0, 0, 1))
}
