// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigator

import (
	"fmt"

	"github.com/relabs-tech/inertial_radar/internal/compass"
	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

// OnScreenOrientationChanged counter-rotates the rotate view so the compass
// graphics stay earth relative.
func (m *Manager) OnScreenOrientationChanged(screen rotation.Quadrant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screen = screen
	m.display = rotation.DisplayRotation(screen, m.offset)
	m.logger.Debugf("screen rotation %d°, display rotation %d°", int(screen), m.display)
	m.deps.Rotate.StartRotateAnimation(m.display)
}

// OnScreenRotationChanged forwards the physical rotation to the compass.
func (m *Manager) OnScreenRotationChanged(degrees int) {
	m.filter.SetScreenRotation(degrees)
}

// OnDirectionChanged receives the smoothed magnetic azimuth in degrees.
func (m *Manager) OnDirectionChanged(bearing float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heading = compass.Normalize(bearing, m.declination, m.offset)
	m.hasHeading = true
	m.deps.Radar.SetAzimuth(m.heading)
}

// OnRollChanged receives roll in degrees.
func (m *Manager) OnRollChanged(roll float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roll = roll
	if tv, ok := m.deps.Radar.(TiltView); ok {
		tv.SetTilt(m.roll, m.pitch)
	}
}

// OnPitchChanged receives pitch in degrees.
func (m *Manager) OnPitchChanged(pitch float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pitch = pitch
	if tv, ok := m.deps.Radar.(TiltView); ok {
		tv.SetTilt(m.roll, m.pitch)
	}
}

// OnLocationChanged updates the declination for the new position and
// recomputes bearing and distance.
func (m *Manager) OnLocationChanged(loc geo.Location) {
	if !loc.Valid() {
		m.logger.Debugw("ignoring invalid location", "lat", loc.Latitude, "lon", loc.Longitude)
		return
	}
	decl := m.deps.Declination.Declination(loc.Latitude, loc.Longitude, loc.Altitude, m.deps.Clock.Now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger.Debugw("location", "provider", loc.Provider, "lat", loc.Latitude, "lon", loc.Longitude, "declination", decl)
	m.declination = decl
	m.deps.Radar.SetDeclination(decl)
	m.current = &loc
	m.calculateDestinationAndBearing()
}

// calculateDestinationAndBearing must be called with m.mu held.
func (m *Manager) calculateDestinationAndBearing() {
	if m.destination == nil || m.current == nil {
		return
	}
	m.distance, m.bearing = geo.Navigate(*m.current, *m.destination)
	m.deps.Radar.SetDistance(m.distance)
	m.deps.Rotate.SetDistance(m.distance)
	m.deps.Rotate.SetSpeedText(FormatSpeed(*m.current))
	m.deps.Radar.SetBearing(m.bearing)
}

// FormatSpeed renders the speed of a fix for the rotate view.
func FormatSpeed(loc geo.Location) string {
	if !loc.HasSpeed {
		return "-- km/h"
	}
	return fmt.Sprintf("%.1f km/h", loc.Speed*3.6)
}
