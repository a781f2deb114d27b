// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigator

import (
	"time"

	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/imu"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

// RadarView is the compass surface: the needle follows the azimuth and the
// destination marker sits at the bearing.
type RadarView interface {
	SetAzimuth(degrees float64)
	SetDeclination(degrees float64)
	SetBearing(degrees float64)
	SetDistance(meters int)
}

// RotateView is the surface that counter-rotates with the screen and shows
// distance and speed.
type RotateView interface {
	StartRotateAnimation(degrees int)
	SetDistance(meters int)
	SetSpeedText(text string)
}

// TiltView is optionally implemented by a RadarView that shows a level.
type TiltView interface {
	SetTilt(roll, pitch float64)
}

// SensorListener receives motion sensor samples.
type SensorListener interface {
	OnSensorChanged(s imu.Sample)
}

// MotionSensors delivers accelerometer and magnetometer samples.
type MotionSensors interface {
	RegisterListener(l SensorListener) error
	UnregisterListener(l SensorListener) error
}

// LocationListener receives position fixes.
type LocationListener interface {
	OnLocationChanged(loc geo.Location)
}

// LocationService delivers position fixes from one or more providers.
type LocationService interface {
	// BestProvider names the provider to ask for a last known location.
	BestProvider() string
	LastKnownLocation(provider string) (geo.Location, bool)
	RequestLocationUpdates(provider string, minTime time.Duration, minDistance float64, l LocationListener) error
	RemoveUpdates(l LocationListener) error
}

// OrientationSensor reports how the device is being held.
type OrientationSensor interface {
	Enable(l rotation.Listener) error
	Disable() error
}
