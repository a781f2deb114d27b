// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/relabs-tech/inertial_radar/internal/compass"
)

// NavState is what the two radar surfaces currently show.
type NavState struct {
	Azimuth         float64   `json:"azimuth"` // needle, degrees from true north
	Declination     float64   `json:"declination"`
	HasBearing      bool      `json:"has_bearing"`
	Bearing         float64   `json:"bearing"`
	Relative        float64   `json:"relative_bearing"` // bearing seen from the needle
	HasDistance     bool      `json:"has_distance"`
	Distance        int       `json:"distance_m"`
	SpeedText       string    `json:"speed_text,omitempty"`
	DisplayRotation int       `json:"display_rotation"`
	Roll            float64   `json:"roll"`
	Pitch           float64   `json:"pitch"`
	Updated         time.Time `json:"updated"`
}

// StateView implements both radar surfaces in memory. Changes are coalesced
// and handed to sinks from a single goroutine, so view calls never block on
// I/O.
type StateView struct {
	mu    sync.RWMutex
	state NavState
	now   func() time.Time

	changed chan struct{}

	sinkMu sync.Mutex
	sinks  []func(NavState)
}

// NewStateView creates an empty view.
func NewStateView() *StateView {
	return &StateView{now: time.Now, changed: make(chan struct{}, 1)}
}

// OnChange registers a sink. Sinks run on the Run goroutine.
func (v *StateView) OnChange(sink func(NavState)) {
	v.sinkMu.Lock()
	v.sinks = append(v.sinks, sink)
	v.sinkMu.Unlock()
}

// State returns the current state.
func (v *StateView) State() NavState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Run delivers changes to the sinks until ctx is done.
func (v *StateView) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.changed:
			s := v.State()
			v.sinkMu.Lock()
			sinks := slices.Clone(v.sinks)
			v.sinkMu.Unlock()
			for _, sink := range sinks {
				sink(s)
			}
		}
	}
}

func (v *StateView) update(fn func(s *NavState)) {
	v.mu.Lock()
	fn(&v.state)
	if v.state.HasBearing {
		v.state.Relative = compass.Relative(v.state.Bearing, v.state.Azimuth)
	}
	v.state.Updated = v.now()
	v.mu.Unlock()

	select {
	case v.changed <- struct{}{}:
	default:
	}
}

// SetAzimuth implements navigator.RadarView.
func (v *StateView) SetAzimuth(degrees float64) {
	v.update(func(s *NavState) { s.Azimuth = degrees })
}

// SetDeclination implements navigator.RadarView.
func (v *StateView) SetDeclination(degrees float64) {
	v.update(func(s *NavState) { s.Declination = degrees })
}

// SetBearing implements navigator.RadarView.
func (v *StateView) SetBearing(degrees float64) {
	v.update(func(s *NavState) { s.Bearing, s.HasBearing = degrees, true })
}

// SetDistance implements navigator.RadarView and navigator.RotateView.
func (v *StateView) SetDistance(meters int) {
	v.update(func(s *NavState) { s.Distance, s.HasDistance = meters, true })
}

// StartRotateAnimation implements navigator.RotateView.
func (v *StateView) StartRotateAnimation(degrees int) {
	v.update(func(s *NavState) { s.DisplayRotation = degrees })
}

// SetSpeedText implements navigator.RotateView.
func (v *StateView) SetSpeedText(text string) {
	v.update(func(s *NavState) { s.SpeedText = text })
}

// SetTilt implements navigator.TiltView.
func (v *StateView) SetTilt(roll, pitch float64) {
	v.update(func(s *NavState) { s.Roll, s.Pitch = roll, pitch })
}
