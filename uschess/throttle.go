/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between outbound requests so we avoid
// pegging uschess.org. It is safe for concurrent use; concurrent callers are
// handed successive slots one interval apart.
type Throttle struct {
	interval time.Duration

	mu sync.Mutex
	// last is the most recently reserved slot, possibly in the future
	last time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait reserves the next free slot and blocks until it arrives. If ctx is
// done first, Wait returns ctx.Err() and gives the slot back when no later
// caller has reserved one behind it.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	prev := t.last
	next := time.Now()
	if !prev.IsZero() {
		if earliest := prev.Add(t.interval); earliest.After(next) {
			next = earliest
		}
	}
	t.last = next
	t.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		if t.last.Equal(next) {
			t.last = prev
		}
		t.mu.Unlock()
		return ctx.Err()
	}
}
