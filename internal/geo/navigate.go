// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"

	golanggeo "github.com/kellydunn/golang-geo"
)

// Distance returns the great-circle distance in metres between two locations.
func Distance(from, to Location) float64 {
	p1 := golanggeo.NewPoint(from.Latitude, from.Longitude)
	p2 := golanggeo.NewPoint(to.Latitude, to.Longitude)
	d := p1.GreatCircleDistance(p2) * 1000 // km -> m
	if math.IsNaN(d) {
		// haversine term rounded past 1: the points are antipodal
		return math.Pi * golanggeo.EARTH_RADIUS * 1000
	}
	return math.Abs(d)
}

// Bearing returns the initial great-circle bearing from one location to
// another, in degrees clockwise from true north, within [0,360).
func Bearing(from, to Location) float64 {
	p1 := golanggeo.NewPoint(from.Latitude, from.Longitude)
	p2 := golanggeo.NewPoint(to.Latitude, to.Longitude)
	b := p1.BearingTo(p2)
	if math.IsNaN(b) {
		return 0
	}
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	if b >= 360 {
		b -= 360
	}
	return b
}

// Navigate computes what the radar shows for a destination: the distance in
// whole metres (truncated) and the initial bearing in [0,360).
func Navigate(current, destination Location) (int, float64) {
	return int(Distance(current, destination)), Bearing(current, destination)
}

// Offset returns the location reached by travelling distanceM metres from
// from along the great circle with the given initial bearing.
func Offset(from Location, bearingDeg, distanceM float64) Location {
	p := golanggeo.NewPoint(from.Latitude, from.Longitude).PointAtDistanceAndBearing(distanceM/1000, bearingDeg)
	to := from
	to.Latitude, to.Longitude = p.Lat(), p.Lng()
	return to
}
