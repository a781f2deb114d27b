// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package navigator receives data from the motion sensors, the screen
// orientation sensor and the location service and updates the radar views.
package navigator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/compass"
	"github.com/relabs-tech/inertial_radar/internal/declination"
	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
	"github.com/relabs-tech/inertial_radar/internal/store"
)

// Location update request parameters.
const (
	DefaultMinTime     = 15 * time.Second
	DefaultMinDistance = 0
)

// DefaultProviders are requested when Config.Providers is empty.
var DefaultProviders = []string{"gps", "network"}

// Config holds the tunables of a Manager.
type Config struct {
	NaturalRotation rotation.Quadrant
	Providers       []string
	MinTime         time.Duration
	MinDistance     float64
	Smoothing       float64
}

// Deps are the collaborators of a Manager. Radar, Rotate and Store are
// required; a missing sensor service simply never produces data.
type Deps struct {
	Sensors     MotionSensors
	Locations   LocationService
	Orientation OrientationSensor
	Store       store.Store
	Radar       RadarView
	Rotate      RotateView
	Declination declination.Model
	Clock       clock.Clock
	Logger      *zap.SugaredLogger
}

// Manager is the radar controller.
type Manager struct {
	cfg    Config
	deps   Deps
	logger *zap.SugaredLogger
	filter *compass.Filter
	offset rotation.Quadrant

	// lifeMu serialises Resume/Pause and guards the subscription state; it is
	// never held while a callback runs
	lifeMu      sync.Mutex
	resumed     bool
	sensorsOn   bool
	providersOn map[string]bool
	screenOn    bool

	mu          sync.Mutex
	destination *geo.Location
	current     *geo.Location
	declination float64
	heading     float64
	hasHeading  bool
	roll, pitch float64
	screen      rotation.Quadrant
	display     int
	bearing     float64
	distance    int
}

// New builds a manager, restores the saved destination and seeds the current
// position from the best provider's last known location.
func New(ctx context.Context, cfg Config, deps Deps) (*Manager, error) {
	if deps.Radar == nil || deps.Rotate == nil {
		return nil, fmt.Errorf("navigator: radar and rotate views are required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("navigator: destination store is required")
	}
	if deps.Declination == nil {
		deps.Declination = declination.NewIGRF()
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders
	}
	if cfg.MinTime <= 0 {
		cfg.MinTime = DefaultMinTime
	}

	m := &Manager{
		cfg:         cfg,
		deps:        deps,
		logger:      deps.Logger.Named("navigator"),
		offset:      rotation.MountingOffset(cfg.NaturalRotation),
		providersOn: map[string]bool{},
	}
	m.filter = compass.NewFilter(m, cfg.Smoothing)
	m.display = rotation.DisplayRotation(rotation.Rotation0, m.offset)
	m.logger.Infof("mounting offset %d°", int(m.offset))

	if err := m.RestoreDestination(ctx); err != nil {
		m.logger.Warnw("could not restore destination", "error", err)
	}
	m.seedLastKnownLocation()
	return m, nil
}

func (m *Manager) seedLastKnownLocation() {
	if m.deps.Locations == nil {
		return
	}
	provider := m.deps.Locations.BestProvider()
	loc, ok := m.deps.Locations.LastKnownLocation(provider)
	if !ok {
		m.logger.Debugf("no last known location from %q", provider)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &loc
	m.calculateDestinationAndBearing()
}

// MountingOffset returns the fixed offset computed at startup.
func (m *Manager) MountingOffset() rotation.Quadrant { return m.offset }

// Filter returns the compass fusion fed by the motion sensors.
func (m *Manager) Filter() *compass.Filter { return m.filter }

// Resume starts the sensors: motion samples, location updates from every
// configured provider and the screen orientation listener. Failures of one
// source do not prevent the others from starting; they are returned combined
// and the failed sources are retried by the next Resume.
func (m *Manager) Resume() error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	var err error
	started := 0
	if m.deps.Sensors != nil && !m.sensorsOn {
		if e := m.deps.Sensors.RegisterListener(m.filter); e != nil {
			err = multierr.Append(err, fmt.Errorf("navigator: register motion sensors: %w", e))
		} else {
			m.sensorsOn = true
			started++
		}
	}
	if m.deps.Locations != nil {
		for _, p := range m.cfg.Providers {
			if m.providersOn[p] {
				continue
			}
			if e := m.deps.Locations.RequestLocationUpdates(p, m.cfg.MinTime, m.cfg.MinDistance, m); e != nil {
				err = multierr.Append(err, fmt.Errorf("navigator: request %s updates: %w", p, e))
			} else {
				m.providersOn[p] = true
				started++
			}
		}
	}
	if m.deps.Orientation != nil && !m.screenOn {
		if e := m.deps.Orientation.Enable(m); e != nil {
			err = multierr.Append(err, fmt.Errorf("navigator: enable orientation listener: %w", e))
		} else {
			m.screenOn = true
			started++
		}
	}
	m.resumed = true
	if started > 0 {
		m.logger.Infof("resumed %d sources", started)
	}
	return err
}

// Pause stops all sensors. Nothing reaches the views until the next Resume.
func (m *Manager) Pause() error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	if !m.resumed {
		return nil
	}

	var err error
	if m.sensorsOn {
		err = multierr.Append(err, m.deps.Sensors.UnregisterListener(m.filter))
		m.sensorsOn = false
	}
	if len(m.providersOn) > 0 {
		err = multierr.Append(err, m.deps.Locations.RemoveUpdates(m))
		clear(m.providersOn)
	}
	if m.screenOn {
		err = multierr.Append(err, m.deps.Orientation.Disable())
		m.screenOn = false
	}
	m.filter.Reset()
	m.resumed = false
	m.logger.Info("paused")
	return err
}

// Resumed reports whether the sensors are currently subscribed.
func (m *Manager) Resumed() bool {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	return m.resumed
}
