// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

type fakeRadar struct {
	azimuths     []float64
	declinations []float64
	bearings     []float64
	distances    []int
	roll, pitch  float64
}

func (f *fakeRadar) SetAzimuth(d float64)     { f.azimuths = append(f.azimuths, d) }
func (f *fakeRadar) SetDeclination(d float64) { f.declinations = append(f.declinations, d) }
func (f *fakeRadar) SetBearing(d float64)     { f.bearings = append(f.bearings, d) }
func (f *fakeRadar) SetDistance(m int)        { f.distances = append(f.distances, m) }
func (f *fakeRadar) SetTilt(roll, pitch float64) {
	f.roll, f.pitch = roll, pitch
}

type fakeRotate struct {
	rotations []int
	distances []int
	speeds    []string
}

func (f *fakeRotate) StartRotateAnimation(d int) { f.rotations = append(f.rotations, d) }
func (f *fakeRotate) SetDistance(m int)          { f.distances = append(f.distances, m) }
func (f *fakeRotate) SetSpeedText(s string)      { f.speeds = append(f.speeds, s) }

type memStore struct {
	p       geo.E6
	ok      bool
	loadErr error
	cleared int
	saved   int
}

func (s *memStore) Load(context.Context) (geo.E6, bool, error) { return s.p, s.ok, s.loadErr }
func (s *memStore) Save(_ context.Context, p geo.E6) error {
	s.p, s.ok = p, true
	s.saved++
	return nil
}
func (s *memStore) Clear(context.Context) error {
	s.p, s.ok = geo.E6{}, false
	s.cleared++
	return nil
}
func (s *memStore) Close() error { return nil }

type fakeSensors struct {
	mu        sync.Mutex
	listeners []SensorListener
	err       error
}

func (f *fakeSensors) RegisterListener(l SensorListener) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.listeners = append(f.listeners, l)
	return nil
}

func (f *fakeSensors) UnregisterListener(SensorListener) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = nil
	return nil
}

type request struct {
	provider    string
	minTime     time.Duration
	minDistance float64
}

type fakeLocations struct {
	best       string
	last       map[string]geo.Location
	requests   []request
	listener   LocationListener
	removed    int
	removeErr  error
	requestErr map[string]error
}

func (f *fakeLocations) BestProvider() string { return f.best }

func (f *fakeLocations) LastKnownLocation(p string) (geo.Location, bool) {
	loc, ok := f.last[p]
	return loc, ok
}

func (f *fakeLocations) RequestLocationUpdates(p string, minTime time.Duration, minDistance float64, l LocationListener) error {
	if err := f.requestErr[p]; err != nil {
		return err
	}
	f.requests = append(f.requests, request{p, minTime, minDistance})
	f.listener = l
	return nil
}

func (f *fakeLocations) RemoveUpdates(LocationListener) error {
	f.removed++
	f.listener = nil
	return f.removeErr
}

type fakeOrientation struct {
	listener   rotation.Listener
	enableErr  error
	enabled    int
	disableErr error
}

func (f *fakeOrientation) Enable(l rotation.Listener) error {
	if f.enableErr != nil {
		return f.enableErr
	}
	f.enabled++
	f.listener = l
	return nil
}

func (f *fakeOrientation) Disable() error {
	f.listener = nil
	return f.disableErr
}

var errBoom = errors.New("boom")
