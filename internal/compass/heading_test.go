// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package compass

import (
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

func TestWrap360(t *testing.T) {
	test.That(t, Wrap360(0), test.ShouldEqual, 0.0)
	test.That(t, Wrap360(360), test.ShouldEqual, 0.0)
	test.That(t, Wrap360(725), test.ShouldAlmostEqual, 5)
	test.That(t, Wrap360(-10), test.ShouldAlmostEqual, 350)
	test.That(t, Wrap360(-1e-20), test.ShouldBeLessThan, 360)
}

func TestNormalize(t *testing.T) {
	test.That(t, Normalize(10, 2.5, rotation.Rotation0), test.ShouldAlmostEqual, 12.5)
	test.That(t, Normalize(350, 15, rotation.Rotation0), test.ShouldAlmostEqual, 5)
	test.That(t, Normalize(5, -10, rotation.Rotation0), test.ShouldAlmostEqual, 355)
	test.That(t, Normalize(100, 0, rotation.Rotation270), test.ShouldAlmostEqual, 10)
	test.That(t, Normalize(100, 0, rotation.Quadrant(33)), test.ShouldAlmostEqual, 100)

	for raw := -720.0; raw <= 720; raw += 7.3 {
		for _, off := range []rotation.Quadrant{0, 90, 180, 270} {
			h := Normalize(raw, -3.2, off)
			test.That(t, h, test.ShouldBeGreaterThanOrEqualTo, 0)
			test.That(t, h, test.ShouldBeLessThan, 360)
		}
	}
}

func TestRelative(t *testing.T) {
	test.That(t, Relative(90, 90), test.ShouldEqual, 0.0)
	test.That(t, Relative(10, 350), test.ShouldAlmostEqual, 20)
	test.That(t, Relative(350, 10), test.ShouldAlmostEqual, 340)
}
