// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package rotation maps screen and mounting rotations onto the counter
// rotation that keeps the compass graphics earth relative.
package rotation

import "fmt"

// Quadrant is a rotation restricted to multiples of 90 degrees.
type Quadrant int

const (
	Rotation0   Quadrant = 0
	Rotation90  Quadrant = 90
	Rotation180 Quadrant = 180
	Rotation270 Quadrant = 270
)

// Valid reports whether q is one of the four quadrant values.
func (q Quadrant) Valid() bool {
	switch q {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return true
	}
	return false
}

func (q Quadrant) String() string {
	return fmt.Sprintf("%d°", int(q))
}

// Parse accepts a configured rotation in degrees.
func Parse(degrees int) (Quadrant, error) {
	q := Quadrant(degrees)
	if !q.Valid() {
		return Rotation0, fmt.Errorf("rotation must be 0, 90, 180 or 270, got %d", degrees)
	}
	return q, nil
}

// FromSurface converts a display surface index (0..3) into degrees.
// Unknown indices map to 0.
func FromSurface(surface int) Quadrant {
	switch surface {
	case 1:
		return Rotation90
	case 2:
		return Rotation180
	case 3:
		return Rotation270
	}
	return Rotation0
}

// QuadrantFromDegrees snaps an arbitrary angle to the nearest quadrant.
func QuadrantFromDegrees(degrees int) Quadrant {
	d := ((degrees % 360) + 360) % 360
	return Quadrant(((d + 45) / 90 % 4) * 90)
}

// MountingOffset is the fixed correction for how the device's natural
// orientation differs from the upright reference. It is read once at startup.
func MountingOffset(natural Quadrant) Quadrant {
	if !natural.Valid() {
		return Rotation0
	}
	return natural
}

// Inverse returns the counter rotation for an OS screen rotation:
// 0→0, 90→270, 180→180, 270→90.
func Inverse(q Quadrant) int {
	switch q {
	case Rotation90:
		return 270
	case Rotation180:
		return 180
	case Rotation270:
		return 90
	}
	return 0
}

// DisplayRotation combines the inverse of the OS screen rotation with the
// mounting offset, modulo 360.
func DisplayRotation(screen, offset Quadrant) int {
	return (Inverse(screen) + 360 - int(MountingOffset(offset))) % 360
}
