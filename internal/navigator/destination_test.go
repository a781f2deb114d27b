// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigator

import (
	"context"
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

func TestSaveWithoutDestinationIsNoop(t *testing.T) {
	h := newHarness(t, rotation.Rotation0, nil, nil)
	test.That(t, h.m.SaveDestination(context.Background()), test.ShouldBeNil)
	test.That(t, h.store.saved, test.ShouldEqual, 0)
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, rotation.Rotation0, nil, nil)
	test.That(t, h.m.SetDestination(-33.8688197, 151.2093), test.ShouldBeNil)
	test.That(t, h.m.SaveDestination(ctx), test.ShouldBeNil)
	test.That(t, h.store.p, test.ShouldResemble, geo.E6{LatitudeE6: -33868820, LongitudeE6: 151209300})

	restored := newHarness(t, rotation.Rotation0, h.store, nil)
	dest, ok := restored.m.Destination()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dest.Latitude, test.ShouldAlmostEqual, -33.8688197, 1e-6)
	test.That(t, dest.Longitude, test.ShouldAlmostEqual, 151.2093, 1e-6)
}

func TestSetDestinationE6(t *testing.T) {
	h := newHarness(t, rotation.Rotation0, nil, nil)
	test.That(t, h.m.SetDestinationE6(48137154, 11576124), test.ShouldBeNil)
	dest, ok := h.m.Destination()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dest.Latitude, test.ShouldAlmostEqual, 48.137154, 1e-9)
}

func TestClearDestination(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, rotation.Rotation0, nil, nil)
	test.That(t, h.m.SetDestination(10, 10), test.ShouldBeNil)
	test.That(t, h.m.SaveDestination(ctx), test.ShouldBeNil)

	test.That(t, h.m.ClearDestination(ctx), test.ShouldBeNil)
	_, ok := h.m.Destination()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, h.store.ok, test.ShouldBeFalse)
	test.That(t, h.store.cleared, test.ShouldEqual, 1)

	// later fixes no longer touch bearing or distance
	h.m.OnLocationChanged(geo.Location{Latitude: 0, Longitude: 0})
	test.That(t, h.radar.bearings, test.ShouldBeEmpty)
}

func TestFormatSpeed(t *testing.T) {
	test.That(t, FormatSpeed(geo.Location{}), test.ShouldEqual, "-- km/h")
	test.That(t, FormatSpeed(geo.Location{Speed: 3.4166, HasSpeed: true}), test.ShouldEqual, "12.3 km/h")
}
