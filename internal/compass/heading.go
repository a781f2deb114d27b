// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package compass turns raw motion sensor samples into a smoothed heading and
// corrects it to a display heading.
package compass

import (
	"math"

	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

// Wrap360 maps any finite angle onto [0,360).
func Wrap360(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r -= 360
	}
	return r
}

// Normalize corrects a raw magnetic compass bearing into the display heading:
// declination (east positive) turns it into a true bearing, and the mounting
// offset accounts for how the sensor sits relative to the display.
func Normalize(raw, declination float64, offset rotation.Quadrant) float64 {
	return Wrap360(raw + declination + float64(rotation.MountingOffset(offset)))
}

// Relative returns the direction of a target bearing as seen from the
// current heading, in [0,360). 0 means straight ahead.
func Relative(bearing, heading float64) float64 {
	return Wrap360(bearing - heading)
}
