// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/inertial_radar/internal/imu"
)

// Earth field used by the mock, roughly central Europe: 20 µT horizontal,
// 44 µT down.
const (
	mockFieldHorizontal = 20.0
	mockFieldDown       = 44.0
	gravity             = 9.81
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock sample source for a device lying flat and
// slowly spinning clockwise (30°/s), with a little wobble.
func NewMockSource() imu.Source {
	return &mockSource{start: time.Now(), now: time.Now}
}

func (m *mockSource) Next() (imu.Sample, error) {
	t := m.now()
	elapsed := t.Sub(m.start).Seconds()
	return SampleForHeading(math.Mod(elapsed*30, 360), 3*math.Sin(elapsed), t), nil
}

// SampleForHeading synthesises the accel + mag reading of a device lying
// face up with its top edge at the given magnetic azimuth, rolled by
// rollDeg about its y axis.
func SampleForHeading(azimuthDeg, rollDeg float64, t time.Time) imu.Sample {
	az := azimuthDeg / radToDeg
	roll := rollDeg / radToDeg

	// field in the level device frame: north is at -azimuth from the top edge
	mx := -mockFieldHorizontal * math.Sin(az)
	my := mockFieldHorizontal * math.Cos(az)
	mz := -mockFieldDown

	// rotate both vectors about y by roll
	rot := func(x, z float64) (float64, float64) {
		return x*math.Cos(roll) + z*math.Sin(roll), -x*math.Sin(roll) + z*math.Cos(roll)
	}
	ax, az2 := rot(0, gravity)
	mx, mz = rot(mx, mz)

	return imu.Sample{
		Source:   "mock",
		Time:     t,
		Ax:       ax,
		Ay:       0,
		Az:       az2,
		Mx:       mx,
		My:       my,
		Mz:       mz,
		HasAccel: true,
		HasMag:   true,
	}
}
