// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/config"
	"github.com/relabs-tech/inertial_radar/internal/declination"
	"github.com/relabs-tech/inertial_radar/internal/navigator"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
	"github.com/relabs-tech/inertial_radar/internal/store"
)

// OpenStore opens the destination store configured in cfg.
func OpenStore(cfg *config.Config) (store.Store, error) {
	return store.Open(store.Options{
		Backend:   cfg.PrefsBackend,
		Name:      cfg.PrefsName,
		Dir:       cfg.PrefsDir,
		RedisAddr: cfg.RedisAddr,
	})
}

// NewGeocoderFromConfig returns nil when no API key is configured.
func NewGeocoderFromConfig(cfg *config.Config) (Geocoder, error) {
	if cfg.GoogleMapsAPIKey == "" {
		return nil, nil
	}
	g, err := NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// RunRadar runs the radar controller: MQTT sensor services in, the state
// view out to MQTT, the web feed and optionally the OLED panels. It returns
// when ctx is done, after pausing and saving the destination.
func RunRadar(ctx context.Context, logger *zap.SugaredLogger) (err error) {
	cfg := config.Get()

	natural, err := rotation.Parse(cfg.NaturalRotation)
	if err != nil {
		return fmt.Errorf("radar: %w", err)
	}
	model, err := declination.New(cfg.DeclinationModel, cfg.DeclinationFixedDeg)
	if err != nil {
		return fmt.Errorf("radar: %w", err)
	}

	st, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	geocoder, err := NewGeocoderFromConfig(cfg)
	if err != nil {
		logger.Warnf("radar: geocoding disabled: %v", err)
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDRadar, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	view := NewStateView()
	clk := clock.New()
	manager, err := navigator.New(ctx, navigator.Config{
		NaturalRotation: natural,
		Providers:       cfg.LocationProviders,
		MinTime:         cfg.LocationMinTime(),
		MinDistance:     cfg.LocationMinDistanceM,
		Smoothing:       cfg.CompassSmoothing,
	}, navigator.Deps{
		Sensors:     NewMQTTSensors(client, cfg.TopicIMU, logger),
		Locations:   NewMQTTLocations(client, cfg.TopicGPS, cfg.LocationProviders, clk, logger),
		Orientation: NewMQTTOrientation(client, cfg.TopicScreen, logger),
		Store:       st,
		Radar:       view,
		Rotate:      view,
		Declination: model,
		Clock:       clk,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	view.OnChange(func(s NavState) {
		if err := publishJSON(client, cfg.TopicNavState, true, s); err != nil {
			logger.Debugf("radar: %v", err)
		}
	})

	web := NewWebServer(manager, view, geocoder, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go view.Run(runCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- web.Run(runCtx, fmt.Sprintf(":%d", cfg.WebServerPort)) }()
	if cfg.DisplayEnabled {
		go func() {
			err := RunDisplay(runCtx, view, DisplayOptions{
				Bus:        cfg.DisplayI2CBus,
				RadarAddr:  cfg.DisplayRadarI2CAddr,
				RotateAddr: cfg.DisplayRotateI2CAddr,
				Interval:   time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond,
			}, logger)
			if err != nil {
				logger.Errorf("radar: %v", err)
			}
		}()
	}

	if err := manager.Resume(); err != nil {
		logger.Warnf("radar: resume: %v", err)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		logger.Errorf("radar: %v", runErr)
	}

	logger.Info("radar: shutting down")
	cancel()
	return stopRadar(manager, runErr)
}

// stopRadar releases the sensors. The destination is not written back: every
// change made while running is already saved, and edits made to the store
// from outside must survive.
func stopRadar(m *navigator.Manager, runErr error) error {
	return multierr.Append(runErr, m.Pause())
}
