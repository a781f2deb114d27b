// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"time"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

const knotsToMetersPerSecond = 1852.0 / 3600.0

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Provider   string    `json:"provider"`    // "gps", "network", "mock"
	Time       time.Time `json:"time"`        // UTC time of the fix
	Latitude   float64   `json:"lat"`         // decimal degrees
	Longitude  float64   `json:"lon"`         // decimal degrees
	Altitude   float64   `json:"alt_m"`       // metres above mean sea level
	HasAlt     bool      `json:"has_alt"`     // a GGA sentence contributed altitude
	SpeedKnots float64   `json:"speed_knots"` // speed over ground
	CourseDeg  float64   `json:"course_deg"`  // course over ground
	Satellites int64     `json:"satellites"`
	Validity   string    `json:"validity"` // "A" (valid) / "V" (void), etc.
}

// Valid reports whether the receiver flagged the fix as usable.
func (f Fix) Valid() bool {
	return f.Validity == "A"
}

// Location converts the fix into the radar's location type.
func (f Fix) Location() geo.Location {
	return geo.Location{
		Provider:  f.Provider,
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
		Altitude:  f.Altitude,
		HasAlt:    f.HasAlt,
		Speed:     f.SpeedKnots * knotsToMetersPerSecond,
		HasSpeed:  true,
		Time:      f.Time,
	}
}
