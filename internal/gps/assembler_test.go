// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"testing"
	"time"

	"go.viam.com/test"
)

const (
	ggaLine     = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
	rmcLine     = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230324,003.1,W*61"
	rmcVoidLine = "$GPRMC,123520,V,4807.038,N,01131.000,E,000.0,000.0,230324,003.1,W*70"
)

func TestAssemblerCombinesGGAAndRMC(t *testing.T) {
	a := NewAssembler("gps")

	_, ok, err := a.Feed(ggaLine)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	fix, ok, err := a.Feed(rmcLine + "\r\n")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, fix.Valid(), test.ShouldBeTrue)
	test.That(t, fix.Provider, test.ShouldEqual, "gps")
	test.That(t, fix.Latitude, test.ShouldAlmostEqual, 48.1173, 1e-4)
	test.That(t, fix.Longitude, test.ShouldAlmostEqual, 11.516667, 1e-4)
	test.That(t, fix.SpeedKnots, test.ShouldAlmostEqual, 22.4)
	test.That(t, fix.CourseDeg, test.ShouldAlmostEqual, 84.4)
	test.That(t, fix.Altitude, test.ShouldAlmostEqual, 545.4)
	test.That(t, fix.HasAlt, test.ShouldBeTrue)
	test.That(t, fix.Satellites, test.ShouldEqual, int64(8))
	test.That(t, fix.Time.Equal(time.Date(2024, time.March, 23, 12, 35, 19, 0, time.UTC)), test.ShouldBeTrue)

	loc := fix.Location()
	test.That(t, loc.Speed, test.ShouldAlmostEqual, 22.4*1852.0/3600.0)
	test.That(t, loc.HasSpeed, test.ShouldBeTrue)
	test.That(t, loc.Provider, test.ShouldEqual, "gps")
}

func TestAssemblerVoidFix(t *testing.T) {
	a := NewAssembler("gps")
	fix, ok, err := a.Feed(rmcVoidLine)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, fix.Valid(), test.ShouldBeFalse)
}

func TestAssemblerRejectsGarbage(t *testing.T) {
	a := NewAssembler("gps")

	_, ok, err := a.Feed("")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, errors.Is(err, ErrSkipped), test.ShouldBeTrue)

	_, ok, err = a.Feed("hello")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, errors.Is(err, ErrSkipped), test.ShouldBeTrue)

	// bad checksum
	_, ok, err = a.Feed("$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230324,003.1,W*00")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, err, test.ShouldNotBeNil)
}
