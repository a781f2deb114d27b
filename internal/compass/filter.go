// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package compass

import (
	"math"
	"sync"

	"github.com/relabs-tech/inertial_radar/internal/imu"
	"github.com/relabs-tech/inertial_radar/internal/orientation"
)

// DirectionListener receives the fused compass output.
type DirectionListener interface {
	// OnDirectionChanged receives the smoothed magnetic azimuth in degrees.
	OnDirectionChanged(bearing float64)
	OnRollChanged(roll float64)
	OnPitchChanged(pitch float64)
}

// DefaultSmoothing is the weight of a new sample in the low pass filter.
const DefaultSmoothing = 0.15

// Filter fuses accelerometer and magnetometer samples into a smoothed
// azimuth. Smoothing runs on the unit circle so the 359°→0° wrap does not
// swing the needle the long way round.
type Filter struct {
	mu sync.Mutex

	listener DirectionListener
	alpha    float64

	accel     [3]float64
	mag       [3]float64
	haveAccel bool
	haveMag   bool

	sin, cos float64
	primed   bool

	screenRotation int
}

// NewFilter creates a filter reporting to l. smoothing is the weight of each
// new sample in (0,1]; out of range values fall back to DefaultSmoothing.
func NewFilter(l DirectionListener, smoothing float64) *Filter {
	if smoothing <= 0 || smoothing > 1 || math.IsNaN(smoothing) {
		smoothing = DefaultSmoothing
	}
	return &Filter{listener: l, alpha: smoothing}
}

// SetScreenRotation sets the physical device rotation in degrees; it is
// added to the reported azimuth so the heading follows the screen's top edge.
func (f *Filter) SetScreenRotation(degrees int) {
	f.mu.Lock()
	f.screenRotation = degrees
	f.mu.Unlock()
}

// OnSensorChanged feeds one sample. Samples may carry only one of the two
// vectors; output starts once both have been seen.
func (f *Filter) OnSensorChanged(s imu.Sample) {
	f.mu.Lock()
	if s.HasAccel {
		f.accel = s.Accel()
		f.haveAccel = true
	}
	if s.HasMag {
		f.mag = s.Mag()
		f.haveMag = true
	}
	if !f.haveAccel || !f.haveMag {
		f.mu.Unlock()
		return
	}

	pose, ok := orientation.ComputePose(f.accel, f.mag)
	if !ok {
		f.mu.Unlock()
		return
	}

	rad := pose.Yaw * math.Pi / 180
	if !f.primed {
		f.sin, f.cos = math.Sin(rad), math.Cos(rad)
		f.primed = true
	} else {
		f.sin += f.alpha * (math.Sin(rad) - f.sin)
		f.cos += f.alpha * (math.Cos(rad) - f.cos)
	}
	azimuth := Wrap360(math.Atan2(f.sin, f.cos)*180/math.Pi + float64(f.screenRotation))
	l := f.listener
	f.mu.Unlock()

	if l == nil {
		return
	}
	l.OnDirectionChanged(azimuth)
	l.OnRollChanged(pose.Roll)
	l.OnPitchChanged(pose.Pitch)
}

// Reset drops the smoothing state and the last vectors, e.g. after the
// sensors were unregistered for a while.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.haveAccel, f.haveMag, f.primed = false, false, false
	f.sin, f.cos = 0, 0
}
