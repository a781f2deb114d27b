// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigator

import (
	"github.com/relabs-tech/inertial_radar/internal/compass"
	"github.com/relabs-tech/inertial_radar/internal/geo"
)

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Resumed         bool          `json:"resumed"`
	MountingOffset  int           `json:"mounting_offset"`
	Destination     *geo.Location `json:"destination,omitempty"`
	Current         *geo.Location `json:"current,omitempty"`
	HasHeading      bool          `json:"has_heading"`
	Heading         float64       `json:"heading"`
	Declination     float64       `json:"declination"`
	Roll            float64       `json:"roll"`
	Pitch           float64       `json:"pitch"`
	ScreenRotation  int           `json:"screen_rotation"`
	DisplayRotation int           `json:"display_rotation"`
	HasNavigation   bool          `json:"has_navigation"`
	Bearing         float64       `json:"bearing"`
	Distance        int           `json:"distance_m"`
	Relative        float64       `json:"relative_bearing"` // needs a heading
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	resumed := m.Resumed()

	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		Resumed:         resumed,
		MountingOffset:  int(m.offset),
		HasHeading:      m.hasHeading,
		Heading:         m.heading,
		Declination:     m.declination,
		Roll:            m.roll,
		Pitch:           m.pitch,
		ScreenRotation:  int(m.screen),
		DisplayRotation: m.display,
	}
	if m.destination != nil {
		d := *m.destination
		s.Destination = &d
	}
	if m.current != nil {
		c := *m.current
		s.Current = &c
	}
	if m.destination != nil && m.current != nil {
		s.HasNavigation = true
		s.Bearing = m.bearing
		s.Distance = m.distance
		if m.hasHeading {
			s.Relative = compass.Relative(m.bearing, m.heading)
		}
	}
	return s
}
