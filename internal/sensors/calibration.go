// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"
)

// ErrInsufficientRotation means the samples did not cover enough orientations
// to estimate a correction.
var ErrInsufficientRotation = errors.New("magnetometer: insufficient rotation, rotate more in 3D and move away from metal")

const (
	minMagHalfRange = 5.0 // µT per axis
	minMagSamples   = 50
)

// MagCalibration is a hard iron offset plus a diagonal soft iron scale:
// corrected = (raw - Offset) / Scale.
type MagCalibration struct {
	Offset [3]float64 `json:"offset"`
	Scale  [3]float64 `json:"scale"`
}

// IdentityMagCalibration leaves readings unchanged.
var IdentityMagCalibration = MagCalibration{Scale: [3]float64{1, 1, 1}}

// Apply corrects a raw field vector.
func (c MagCalibration) Apply(v [3]float64) [3]float64 {
	var out [3]float64
	for i := range v {
		s := c.Scale[i]
		if s == 0 {
			s = 1
		}
		out[i] = (v[i] - c.Offset[i]) / s
	}
	return out
}

// IsIdentity reports whether Apply is a no-op.
func (c MagCalibration) IsIdentity() bool {
	return c == IdentityMagCalibration
}

// MagCalibrator estimates a MagCalibration with the min/max method while the
// device is rotated through as many orientations as possible.
type MagCalibrator struct {
	min, max [3]float64
	samples  [][3]float64
}

// NewMagCalibrator returns an empty calibrator.
func NewMagCalibrator() *MagCalibrator {
	c := &MagCalibrator{}
	for i := 0; i < 3; i++ {
		c.min[i] = math.Inf(1)
		c.max[i] = math.Inf(-1)
	}
	return c
}

// Add records one raw reading.
func (c *MagCalibrator) Add(v [3]float64) {
	for i := 0; i < 3; i++ {
		c.min[i] = math.Min(c.min[i], v[i])
		c.max[i] = math.Max(c.max[i], v[i])
	}
	c.samples = append(c.samples, v)
}

// Count returns the number of recorded readings.
func (c *MagCalibrator) Count() int { return len(c.samples) }

// Result returns the calibration and a confidence in [0,1] combining axis
// coverage and how spherical the corrected samples are.
func (c *MagCalibrator) Result() (MagCalibration, float64, error) {
	if len(c.samples) < minMagSamples {
		return IdentityMagCalibration, 0, ErrInsufficientRotation
	}

	var cal MagCalibration
	var half [3]float64
	for i := 0; i < 3; i++ {
		cal.Offset[i] = (c.max[i] + c.min[i]) / 2
		half[i] = (c.max[i] - c.min[i]) / 2
		if half[i] < minMagHalfRange {
			return IdentityMagCalibration, 0, ErrInsufficientRotation
		}
	}

	// scale each axis to the mean radius so output stays in µT
	ref := (half[0] + half[1] + half[2]) / 3
	for i := 0; i < 3; i++ {
		cal.Scale[i] = half[i] / ref
	}

	coverage := clamp01(1 - stdDev(half[:])/ref/0.7)

	norms := make([]float64, len(c.samples))
	for i, s := range c.samples {
		v := cal.Apply(s)
		norms[i] = math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	mean := meanOf(norms)
	sphericity := 0.0
	if mean > 0 {
		sphericity = clamp01(1 - stdDev(norms)/mean/0.5)
	}

	return cal, clamp01(0.55*coverage + 0.45*sphericity), nil
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func stdDev(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	m := meanOf(v)
	var acc float64
	for _, x := range v {
		acc += (x - m) * (x - m)
	}
	return math.Sqrt(acc / float64(len(v)))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
