// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"
	"time"
)

// Location is a single position fix or a user chosen destination.
type Location struct {
	Provider  string    `json:"provider,omitempty"` // "gps", "network", "user"
	Latitude  float64   `json:"lat"`                // decimal degrees
	Longitude float64   `json:"lon"`                // decimal degrees
	Altitude  float64   `json:"alt_m,omitempty"`    // metres above the ellipsoid
	Speed     float64   `json:"speed_mps,omitempty"`
	HasAlt    bool      `json:"has_alt,omitempty"`
	HasSpeed  bool      `json:"has_speed,omitempty"`
	Time      time.Time `json:"time,omitempty"`
}

// E6 is a coordinate pair in fixed point degrees × 1e6, the form the
// destination is persisted in.
type E6 struct {
	LatitudeE6  int32 `json:"lat_e6"`
	LongitudeE6 int32 `json:"lon_e6"`
}

const e6 = 1e6

// ToE6 rounds the location to fixed point. The round trip error is at most
// 5e-7 degrees per axis.
func (l Location) ToE6() E6 {
	return E6{
		LatitudeE6:  int32(math.Round(l.Latitude * e6)),
		LongitudeE6: int32(math.Round(l.Longitude * e6)),
	}
}

// Location converts back to decimal degrees.
func (p E6) Location(provider string) Location {
	return Location{
		Provider:  provider,
		Latitude:  float64(p.LatitudeE6) / e6,
		Longitude: float64(p.LongitudeE6) / e6,
	}
}

// Valid reports whether the coordinates are finite and within range.
func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}
