// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestComputePoseFromAccelLevel(t *testing.T) {
	p := ComputePoseFromAccel(0, 0, 9.81)
	test.That(t, p.Roll, test.ShouldAlmostEqual, 0)
	test.That(t, p.Pitch, test.ShouldAlmostEqual, 0)
	test.That(t, p.Yaw, test.ShouldEqual, 0.0)

	p = ComputePoseFromAccel(0, 9.81, 0)
	test.That(t, p.Roll, test.ShouldAlmostEqual, 90)
}

func TestTiltCompensatedAzimuthFlat(t *testing.T) {
	for _, heading := range []float64{0, 45, 90, 135, 180, 225, 270, 315, 359} {
		s := SampleForHeading(heading, 0, time.Time{})
		az, ok := TiltCompensatedAzimuth(s.Accel(), s.Mag())
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, az, test.ShouldAlmostEqual, heading, 1e-6)
	}
}

func TestTiltCompensatedAzimuthRolled(t *testing.T) {
	s := SampleForHeading(120, 25, time.Time{})
	az, ok := TiltCompensatedAzimuth(s.Accel(), s.Mag())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, az, test.ShouldAlmostEqual, 120, 1e-6)
}

func TestTiltCompensatedAzimuthDegenerate(t *testing.T) {
	_, ok := TiltCompensatedAzimuth([3]float64{0, 0, 0}, [3]float64{20, 0, -40})
	test.That(t, ok, test.ShouldBeFalse)

	// field straight down, parallel to gravity
	_, ok = TiltCompensatedAzimuth([3]float64{0, 0, 9.81}, [3]float64{0, 0, -40})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestComputePose(t *testing.T) {
	s := SampleForHeading(300, 0, time.Time{})
	p, ok := ComputePose(s.Accel(), s.Mag())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Yaw, test.ShouldAlmostEqual, 300, 1e-6)
	test.That(t, p.Roll, test.ShouldAlmostEqual, 0)
}

func TestMockSourceProducesFullSamples(t *testing.T) {
	src := NewMockSource()
	s, err := src.Next()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.HasAccel, test.ShouldBeTrue)
	test.That(t, s.HasMag, test.ShouldBeTrue)
	test.That(t, s.Source, test.ShouldEqual, "mock")
}

func TestScreenDegrees(t *testing.T) {
	for _, c := range []struct {
		accel [3]float64
		want  int
	}{
		{[3]float64{0, 9.81, 0}, 0},
		{[3]float64{-9.81, 0, 0}, 90},
		{[3]float64{0, -9.81, 0}, 180},
		{[3]float64{9.81, 0, 0}, 270},
		{[3]float64{-6.94, 6.94, 0}, 45},
	} {
		deg, ok := ScreenDegrees(c.accel)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, deg, test.ShouldEqual, c.want)
	}

	_, ok := ScreenDegrees([3]float64{0.5, 0.5, 9.8})
	test.That(t, ok, test.ShouldBeFalse)
}
