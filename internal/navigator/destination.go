// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigator

import (
	"context"
	"fmt"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

// SetDestination points the radar at a new destination.
func (m *Manager) SetDestination(latitude, longitude float64) error {
	dest := geo.Location{Provider: "user", Latitude: latitude, Longitude: longitude}
	if !dest.Valid() {
		return fmt.Errorf("navigator: invalid destination %.6f,%.6f", latitude, longitude)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.destination = &dest
	m.logger.Infof("destination set to %.6f,%.6f", latitude, longitude)
	m.calculateDestinationAndBearing()
	return nil
}

// SetDestinationE6 sets the destination from fixed point degrees × 1e6.
func (m *Manager) SetDestinationE6(latitudeE6, longitudeE6 int32) error {
	loc := geo.E6{LatitudeE6: latitudeE6, LongitudeE6: longitudeE6}.Location("user")
	return m.SetDestination(loc.Latitude, loc.Longitude)
}

// Destination returns the current destination, if any.
func (m *Manager) Destination() (geo.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destination == nil {
		return geo.Location{}, false
	}
	return *m.destination, true
}

// SaveDestination persists the destination. Without one it does nothing.
func (m *Manager) SaveDestination(ctx context.Context) error {
	dest, ok := m.Destination()
	if !ok {
		return nil
	}
	if err := m.deps.Store.Save(ctx, dest.ToE6()); err != nil {
		return fmt.Errorf("navigator: save destination: %w", err)
	}
	return nil
}

// RestoreDestination loads the persisted destination, if one was saved.
func (m *Manager) RestoreDestination(ctx context.Context) error {
	p, ok, err := m.deps.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("navigator: load destination: %w", err)
	}
	if !ok {
		return nil
	}
	return m.SetDestinationE6(p.LatitudeE6, p.LongitudeE6)
}

// ClearDestination forgets the destination, in memory and in the store.
// The views keep their last values.
func (m *Manager) ClearDestination(ctx context.Context) error {
	m.mu.Lock()
	m.destination = nil
	m.mu.Unlock()
	if err := m.deps.Store.Clear(ctx); err != nil {
		return fmt.Errorf("navigator: clear destination: %w", err)
	}
	return nil
}
