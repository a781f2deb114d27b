// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/config"
	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/gps"
	"github.com/relabs-tech/inertial_radar/internal/orientation"
)

const (
	mockWalkSpeed  = 1.4   // m/s
	mockWalkRadius = 200.0 // m
)

// MockWalk simulates someone walking a circle around a centre point.
type MockWalk struct {
	Center   geo.Location
	Provider string
	start    time.Time
}

// NewMockWalk starts a walk at t0.
func NewMockWalk(center geo.Location, provider string, t0 time.Time) *MockWalk {
	return &MockWalk{Center: center, Provider: provider, start: t0}
}

// FixAt returns the simulated fix at t. The walker moves clockwise, so the
// course is the radial bearing plus 90°.
func (w *MockWalk) FixAt(t time.Time) gps.Fix {
	elapsed := t.Sub(w.start).Seconds()
	radial := math.Mod(elapsed*mockWalkSpeed/mockWalkRadius*180/math.Pi, 360)
	loc := geo.Offset(w.Center, radial, mockWalkRadius)
	return gps.Fix{
		Provider:   w.Provider,
		Time:       t.UTC(),
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		Altitude:   w.Center.Altitude,
		HasAlt:     true,
		SpeedKnots: mockWalkSpeed * 3600 / 1852,
		CourseDeg:  math.Mod(radial+90, 360),
		Satellites: 8,
		Validity:   "A",
	}
}

// RunMockProducer publishes a spinning mock IMU and a simulated walk around
// center, for running the radar without hardware.
func RunMockProducer(ctx context.Context, center geo.Location, logger *zap.SugaredLogger) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDMock, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	walk := NewMockWalk(center, cfg.GPSProviderName, time.Now())
	topic := providerTopic(cfg.TopicGPS, cfg.GPSProviderName)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				fix := walk.FixAt(t)
				if err := publishJSON(client, topic, true, fix); err != nil {
					logger.Warnf("mock: %v", err)
					continue
				}
				logger.Debugf("mock: fix %.6f,%.6f", fix.Latitude, fix.Longitude)
			}
		}
	}()

	p := &samplePublisher{
		client:      client,
		imuTopic:    cfg.TopicIMU,
		screenTopic: cfg.TopicScreen,
		logger:      logger,
		lastScreen:  -2,
	}
	logger.Infof("mock: walking around %.6f,%.6f", center.Latitude, center.Longitude)
	return p.run(ctx, orientation.NewMockSource(), time.Duration(cfg.IMUSampleInterval)*time.Millisecond)
}
