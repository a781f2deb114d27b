// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "time"

// Sample is one accelerometer + magnetometer reading, the input of the
// compass fusion. Accel only needs consistent units since only its direction
// is used; Mag is in µT.
type Sample struct {
	Source string    `json:"source"` // "mpu9250", "mock", ...
	Time   time.Time `json:"time"`

	Ax float64 `json:"ax"` // accel, device frame: x right, y top, z out of the screen
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Mx float64 `json:"mx"` // magnetometer
	My float64 `json:"my"`
	Mz float64 `json:"mz"`

	HasAccel bool `json:"has_accel"`
	HasMag   bool `json:"has_mag"`
}

// Accel returns the acceleration vector.
func (s Sample) Accel() [3]float64 { return [3]float64{s.Ax, s.Ay, s.Az} }

// Mag returns the magnetic field vector.
func (s Sample) Mag() [3]float64 { return [3]float64{s.Mx, s.My, s.Mz} }

// Source is anything that can produce samples over time.
type Source interface {
	Next() (Sample, error)
}
