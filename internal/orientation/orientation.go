// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Pose is the canonical representation of orientation for the radar.
// Yaw is the magnetic azimuth of the top edge of the device.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

const radToDeg = 180.0 / math.Pi

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is left at 0; see ComputePose for the magnetometer fused version.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * radToDeg,
		Pitch: pitchRad * radToDeg,
	}
}

// TiltCompensatedAzimuth returns the magnetic azimuth in degrees [0,360) of
// the device's top edge, given the gravity reaction vector (accelerometer at
// rest) and the magnetic field vector, both in the device frame.
// ok is false when the vectors are degenerate (free fall, or the field is
// parallel to gravity).
func TiltCompensatedAzimuth(accel, mag [3]float64) (azimuth float64, ok bool) {
	// east = mag × gravity, north = gravity × east
	h := cross(mag, accel)
	normH := norm(h)
	normA := norm(accel)
	normM := norm(mag)
	if normA == 0 || normM == 0 || normH/(normA*normM) < 0.1 {
		return 0, false
	}
	for i := range h {
		h[i] /= normH
	}
	a := accel
	for i := range a {
		a[i] /= normA
	}
	m := cross(a, h)

	az := math.Atan2(h[1], m[1]) * radToDeg
	if az < 0 {
		az += 360
	}
	if az >= 360 {
		az -= 360
	}
	return az, true
}

// ComputePose fuses both vectors into a full pose.
func ComputePose(accel, mag [3]float64) (Pose, bool) {
	p := ComputePoseFromAccel(accel[0], accel[1], accel[2])
	yaw, ok := TiltCompensatedAzimuth(accel, mag)
	p.Yaw = yaw
	return p, ok
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// ScreenDegrees is the clockwise rotation of the device about the screen
// normal, 0 when held upright. It reports false when the device lies too
// flat for the angle to mean anything.
func ScreenDegrees(accel [3]float64) (int, bool) {
	x, y, z := -accel[0], -accel[1], -accel[2]
	if (x*x+y*y)*4 < z*z {
		return 0, false
	}
	angle := math.Atan2(-y, x) * radToDeg
	deg := 90 - int(math.Round(angle))
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg, true
}
