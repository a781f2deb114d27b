// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

// Throttle limits how often location updates reach a listener, per provider:
// an update passes when at least MinTime has elapsed since the last accepted
// one and it moved at least MinDistance metres.
type Throttle struct {
	MinTime     time.Duration
	MinDistance float64

	clock clock.Clock
	mu    sync.Mutex
	last  map[string]accepted
}

type accepted struct {
	at  time.Time
	loc geo.Location
}

// NewThrottle creates a throttle. A nil clock uses the wall clock.
func NewThrottle(minTime time.Duration, minDistance float64, clk clock.Clock) *Throttle {
	if clk == nil {
		clk = clock.New()
	}
	return &Throttle{
		MinTime:     minTime,
		MinDistance: minDistance,
		clock:       clk,
		last:        map[string]accepted{},
	}
}

// Allow reports whether loc should be delivered and records it if so.
func (t *Throttle) Allow(loc geo.Location) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	prev, seen := t.last[loc.Provider]
	if seen {
		if now.Sub(prev.at) < t.MinTime {
			return false
		}
		if t.MinDistance > 0 && geo.Distance(prev.loc, loc) < t.MinDistance {
			return false
		}
	}
	t.last[loc.Provider] = accepted{at: now, loc: loc}
	return true
}

// Reset forgets all providers so the next update always passes.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.last = map[string]accepted{}
	t.mu.Unlock()
}
