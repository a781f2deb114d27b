// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap/zaptest"
	"go.viam.com/test"
)

// ellipsoid returns points on a sphere of radius r, stretched per axis and
// shifted by offset, sweeping all orientations.
func ellipsoid(r float64, stretch, offset [3]float64) [][3]float64 {
	var out [][3]float64
	for lat := -80.0; lat <= 80; lat += 10 {
		for lon := 0.0; lon < 360; lon += 15 {
			phi, lam := lat*math.Pi/180, lon*math.Pi/180
			v := [3]float64{
				r * math.Cos(phi) * math.Cos(lam),
				r * math.Cos(phi) * math.Sin(lam),
				r * math.Sin(phi),
			}
			for i := range v {
				v[i] = v[i]*stretch[i] + offset[i]
			}
			out = append(out, v)
		}
	}
	// poles so min/max on z are exact
	out = append(out,
		[3]float64{offset[0], offset[1], r*stretch[2] + offset[2]},
		[3]float64{offset[0], offset[1], -r*stretch[2] + offset[2]},
	)
	return out
}

func TestMagCalibratorRecoversOffsetAndScale(t *testing.T) {
	offset := [3]float64{12, -7, 30}
	stretch := [3]float64{1.2, 0.9, 0.9}
	c := NewMagCalibrator()
	for _, v := range ellipsoid(48, stretch, offset) {
		c.Add(v)
	}

	cal, confidence, err := c.Result()
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 3; i++ {
		test.That(t, cal.Offset[i], test.ShouldAlmostEqual, offset[i], 1e-6)
		test.That(t, cal.Scale[i], test.ShouldAlmostEqual, stretch[i], 1e-6)
	}
	test.That(t, confidence, test.ShouldBeGreaterThan, 0.8)

	// corrected points lie on a sphere
	for _, v := range ellipsoid(48, stretch, offset)[:20] {
		w := cal.Apply(v)
		test.That(t, math.Sqrt(w[0]*w[0]+w[1]*w[1]+w[2]*w[2]), test.ShouldAlmostEqual, 48, 1e-6)
	}
}

func TestMagCalibratorNeedsRotation(t *testing.T) {
	c := NewMagCalibrator()
	_, _, err := c.Result()
	test.That(t, errors.Is(err, ErrInsufficientRotation), test.ShouldBeTrue)

	// flat spin: z never changes
	for deg := 0; deg < 360; deg += 5 {
		rad := float64(deg) * math.Pi / 180
		c.Add([3]float64{20 * math.Cos(rad), 20 * math.Sin(rad), -44})
	}
	test.That(t, c.Count(), test.ShouldEqual, 72)
	cal, _, err := c.Result()
	test.That(t, errors.Is(err, ErrInsufficientRotation), test.ShouldBeTrue)
	test.That(t, cal.IsIdentity(), test.ShouldBeTrue)
}

func TestSourceAppliesMagCalibration(t *testing.T) {
	accel := &fakeReader{v: [3]float64{0, 0, 9.8}}
	mag := &fakeReader{v: [3]float64{22, 13, -40}}
	s := NewSource("test", accel, mag, zaptest.NewLogger(t).Sugar())
	s.SetMagCalibration(MagCalibration{Offset: [3]float64{2, -7, 4}, Scale: [3]float64{1, 1, 2}})

	sample, err := s.Next()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sample.Mag(), test.ShouldResemble, [3]float64{20, 20, -22})
}
