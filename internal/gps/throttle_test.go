// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

func TestThrottleMinTime(t *testing.T) {
	clk := clock.NewMock()
	th := NewThrottle(15*time.Second, 0, clk)

	a := geo.Location{Provider: "gps", Latitude: 1, Longitude: 1}
	test.That(t, th.Allow(a), test.ShouldBeTrue)
	test.That(t, th.Allow(a), test.ShouldBeFalse)

	clk.Add(14 * time.Second)
	test.That(t, th.Allow(a), test.ShouldBeFalse)

	clk.Add(time.Second)
	test.That(t, th.Allow(a), test.ShouldBeTrue)
}

func TestThrottlePerProvider(t *testing.T) {
	clk := clock.NewMock()
	th := NewThrottle(15*time.Second, 0, clk)

	test.That(t, th.Allow(geo.Location{Provider: "gps"}), test.ShouldBeTrue)
	test.That(t, th.Allow(geo.Location{Provider: "network"}), test.ShouldBeTrue)
	test.That(t, th.Allow(geo.Location{Provider: "gps"}), test.ShouldBeFalse)

	th.Reset()
	test.That(t, th.Allow(geo.Location{Provider: "gps"}), test.ShouldBeTrue)
}

func TestThrottleMinDistance(t *testing.T) {
	clk := clock.NewMock()
	th := NewThrottle(0, 50, clk)

	start := geo.Location{Provider: "gps", Latitude: 48, Longitude: 11}
	test.That(t, th.Allow(start), test.ShouldBeTrue)

	near := geo.Location{Provider: "gps", Latitude: 48.0001, Longitude: 11} // ~11 m
	test.That(t, th.Allow(near), test.ShouldBeFalse)

	far := geo.Location{Provider: "gps", Latitude: 48.001, Longitude: 11} // ~111 m
	test.That(t, th.Allow(far), test.ShouldBeTrue)
}
