// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/gps"
	"github.com/relabs-tech/inertial_radar/internal/imu"
	"github.com/relabs-tech/inertial_radar/internal/navigator"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

// MQTTSensors delivers imu.Samples published on the IMU topic.
type MQTTSensors struct {
	client mqtt.Client
	topic  string
	logger *zap.SugaredLogger

	mu        sync.Mutex
	listeners []navigator.SensorListener
}

// NewMQTTSensors creates the motion sensor service.
func NewMQTTSensors(client mqtt.Client, topic string, logger *zap.SugaredLogger) *MQTTSensors {
	return &MQTTSensors{client: client, topic: topic, logger: logger}
}

// RegisterListener subscribes to the IMU topic with the first listener.
func (s *MQTTSensors) RegisterListener(l navigator.SensorListener) error {
	s.mu.Lock()
	for _, existing := range s.listeners {
		if existing == l {
			s.mu.Unlock()
			return nil
		}
	}
	first := len(s.listeners) == 0
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	if !first {
		return nil
	}
	if err := subscribe(s.client, s.topic, s.handle); err != nil {
		s.remove(l)
		return err
	}
	s.logger.Infof("sensors: subscribed to %s", s.topic)
	return nil
}

// UnregisterListener unsubscribes once the last listener is gone.
func (s *MQTTSensors) UnregisterListener(l navigator.SensorListener) error {
	if !s.remove(l) {
		return nil
	}
	s.mu.Lock()
	last := len(s.listeners) == 0
	s.mu.Unlock()
	if !last {
		return nil
	}
	return unsubscribe(s.client, s.topic)
}

func (s *MQTTSensors) remove(l navigator.SensorListener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (s *MQTTSensors) handle(_ mqtt.Client, msg mqtt.Message) {
	var sample imu.Sample
	if err := json.Unmarshal(msg.Payload(), &sample); err != nil {
		s.logger.Debugf("sensors: sample unmarshal error: %v", err)
		return
	}
	s.mu.Lock()
	listeners := append([]navigator.SensorListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.OnSensorChanged(sample)
	}
}

// DefaultRetainedWait bounds how long LastKnownLocation waits for the
// broker to hand out a retained fix.
const DefaultRetainedWait = 2 * time.Second

// MQTTLocations delivers gps.Fix messages, one retained topic per provider.
// Each provider serves at most one listener at a time.
type MQTTLocations struct {
	client    mqtt.Client
	baseTopic string
	providers []string
	clock     clock.Clock
	logger    *zap.SugaredLogger

	RetainedWait time.Duration

	mu       sync.Mutex
	requests map[string]*locationRequest
	last     map[string]geo.Location
}

type locationRequest struct {
	listener navigator.LocationListener
	throttle *gps.Throttle
}

// NewMQTTLocations creates the location service for the given providers, in
// order of preference.
func NewMQTTLocations(client mqtt.Client, baseTopic string, providers []string, clk clock.Clock, logger *zap.SugaredLogger) *MQTTLocations {
	if clk == nil {
		clk = clock.New()
	}
	return &MQTTLocations{
		client:       client,
		baseTopic:    baseTopic,
		providers:    providers,
		clock:        clk,
		logger:       logger,
		RetainedWait: DefaultRetainedWait,
		requests:     map[string]*locationRequest{},
		last:         map[string]geo.Location{},
	}
}

// BestProvider returns the provider with the freshest fix seen so far, or the
// most preferred one when nothing has been received yet.
func (s *MQTTLocations) BestProvider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := ""
	var bestTime time.Time
	for _, p := range s.providers {
		loc, ok := s.last[p]
		if !ok {
			continue
		}
		if best == "" || loc.Time.After(bestTime) {
			best, bestTime = p, loc.Time
		}
	}
	if best == "" && len(s.providers) > 0 {
		best = s.providers[0]
	}
	return best
}

// LastKnownLocation returns the last fix of provider. When nothing has been
// received yet it briefly subscribes to pick up the retained message.
func (s *MQTTLocations) LastKnownLocation(provider string) (geo.Location, bool) {
	s.mu.Lock()
	loc, ok := s.last[provider]
	_, active := s.requests[provider]
	s.mu.Unlock()
	if ok || active || provider == "" {
		return loc, ok
	}

	got := make(chan geo.Location, 1)
	topic := providerTopic(s.baseTopic, provider)
	err := subscribe(s.client, topic, func(_ mqtt.Client, msg mqtt.Message) {
		if l, ok := s.decode(provider, msg); ok {
			select {
			case got <- l:
			default:
			}
		}
	})
	if err != nil {
		s.logger.Warnf("location: %v", err)
		return geo.Location{}, false
	}
	defer func() {
		if err := unsubscribe(s.client, topic); err != nil {
			s.logger.Warnf("location: %v", err)
		}
	}()

	select {
	case l := <-got:
		s.remember(l)
		return l, true
	case <-s.clock.After(s.RetainedWait):
		return geo.Location{}, false
	}
}

// RequestLocationUpdates subscribes to provider's topic. Fixes closer than
// minTime or minDistance to the last delivered one are dropped.
func (s *MQTTLocations) RequestLocationUpdates(provider string, minTime time.Duration, minDistance float64, l navigator.LocationListener) error {
	req := &locationRequest{listener: l, throttle: gps.NewThrottle(minTime, minDistance, s.clock)}

	s.mu.Lock()
	_, existing := s.requests[provider]
	s.requests[provider] = req
	s.mu.Unlock()
	if existing {
		return nil
	}

	topic := providerTopic(s.baseTopic, provider)
	if err := subscribe(s.client, topic, s.handler(provider)); err != nil {
		s.mu.Lock()
		delete(s.requests, provider)
		s.mu.Unlock()
		return err
	}
	s.logger.Infof("location: subscribed to %s (min time %s, min distance %.0fm)", topic, minTime, minDistance)
	return nil
}

// RemoveUpdates drops every request made by l.
func (s *MQTTLocations) RemoveUpdates(l navigator.LocationListener) error {
	var topics []string
	s.mu.Lock()
	for p, r := range s.requests {
		if r.listener == l {
			delete(s.requests, p)
			topics = append(topics, providerTopic(s.baseTopic, p))
		}
	}
	s.mu.Unlock()

	var err error
	for _, t := range topics {
		err = multierr.Append(err, unsubscribe(s.client, t))
	}
	return err
}

func (s *MQTTLocations) handler(provider string) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		loc, ok := s.decode(provider, msg)
		if !ok {
			return
		}
		s.remember(loc)

		s.mu.Lock()
		req := s.requests[provider]
		s.mu.Unlock()
		if req == nil || !req.throttle.Allow(loc) {
			return
		}
		req.listener.OnLocationChanged(loc)
	}
}

func (s *MQTTLocations) decode(provider string, msg mqtt.Message) (geo.Location, bool) {
	var fix gps.Fix
	if err := json.Unmarshal(msg.Payload(), &fix); err != nil {
		s.logger.Debugf("location: fix unmarshal error: %v", err)
		return geo.Location{}, false
	}
	if !fix.Valid() {
		return geo.Location{}, false
	}
	loc := fix.Location()
	loc.Provider = provider
	return loc, true
}

func (s *MQTTLocations) remember(loc geo.Location) {
	s.mu.Lock()
	s.last[loc.Provider] = loc
	s.mu.Unlock()
}

// MQTTOrientation feeds raw screen angles from the screen topic through a
// rotation.Tracker.
type MQTTOrientation struct {
	client mqtt.Client
	topic  string
	logger *zap.SugaredLogger

	mu         sync.Mutex
	tracker    *rotation.Tracker
	subscribed bool
}

// NewMQTTOrientation creates the screen orientation sensor.
func NewMQTTOrientation(client mqtt.Client, topic string, logger *zap.SugaredLogger) *MQTTOrientation {
	return &MQTTOrientation{client: client, topic: topic, logger: logger}
}

// Enable starts reporting to l.
func (o *MQTTOrientation) Enable(l rotation.Listener) error {
	o.mu.Lock()
	o.tracker = rotation.NewTracker(l)
	already := o.subscribed
	o.subscribed = true
	o.mu.Unlock()
	if already {
		return nil
	}

	if err := subscribe(o.client, o.topic, o.handle); err != nil {
		o.mu.Lock()
		o.tracker, o.subscribed = nil, false
		o.mu.Unlock()
		return err
	}
	o.logger.Infof("orientation: subscribed to %s", o.topic)
	return nil
}

// Disable stops reporting.
func (o *MQTTOrientation) Disable() error {
	o.mu.Lock()
	was := o.subscribed
	o.tracker, o.subscribed = nil, false
	o.mu.Unlock()
	if !was {
		return nil
	}
	return unsubscribe(o.client, o.topic)
}

func (o *MQTTOrientation) handle(_ mqtt.Client, msg mqtt.Message) {
	var m ScreenMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		o.logger.Debugf("orientation: unmarshal error: %v", err)
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tracker != nil {
		o.tracker.Update(m.Degrees)
	}
}
