// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rotation

// Unknown is reported by orientation sensors when the device lies flat.
const Unknown = -1

// Listener receives screen orientation changes.
type Listener interface {
	// OnScreenOrientationChanged receives the rotation the screen content
	// adopts for the new device orientation.
	OnScreenOrientationChanged(screen Quadrant)
	// OnScreenRotationChanged receives the physical device rotation in degrees.
	OnScreenRotationChanged(degrees int)
}

// Tracker turns raw device tilt angles into quadrant changes. A new quadrant
// is only accepted once the angle is within 45-Hysteresis degrees of its
// center, so readings near a boundary do not flap.
type Tracker struct {
	Hysteresis int

	listener Listener
	current  Quadrant
	started  bool
}

// NewTracker returns a tracker that notifies l. A hysteresis of 10 degrees
// is used unless changed on the returned value.
func NewTracker(l Listener) *Tracker {
	return &Tracker{Hysteresis: 10, listener: l}
}

// Update feeds a raw orientation in degrees (0..359, or Unknown).
// It reports whether the listener was notified.
func (t *Tracker) Update(degrees int) bool {
	if degrees == Unknown || degrees < 0 {
		return false
	}
	q := QuadrantFromDegrees(degrees)
	if t.started && q == t.current {
		return false
	}
	if t.started && angularDistance(degrees, int(q)) > 45-t.Hysteresis {
		return false
	}
	t.current = q
	t.started = true
	if t.listener != nil {
		t.listener.OnScreenRotationChanged(int(q))
		t.listener.OnScreenOrientationChanged(Quadrant((360 - int(q)) % 360))
	}
	return true
}

// Current returns the accepted device rotation and whether any reading has
// been accepted yet.
func (t *Tracker) Current() (Quadrant, bool) {
	return t.current, t.started
}

// Reset forgets the accepted rotation so the next reading notifies.
func (t *Tracker) Reset() {
	t.started = false
	t.current = Rotation0
}

func angularDistance(a, b int) int {
	d := ((a-b)%360 + 360) % 360
	if d > 180 {
		d = 360 - d
	}
	return d
}
