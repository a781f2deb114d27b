// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package declination

import (
	"math"
	"time"
)

// IGRF-13 main field at epoch 2020.0 to degree 13, with its secular
// variation to degree 8. Schmidt semi-normalised, nT and nT/year.
const (
	maxDegree   = 13
	epoch       = 2020.0
	refRadiusKm = 6371.2

	// WGS84 ellipsoid
	wgs84A = 6378.137
	wgs84F = 1 / 298.257223563
)

type coeff struct {
	n, m         int
	g, h, dg, dh float64
}

var igrf2020 = []coeff{
	{1, 0, -29404.8, 0, 5.7, 0},
	{1, 1, -1450.9, 4652.5, 7.4, -25.9},
	{2, 0, -2499.6, 0, -11.0, 0},
	{2, 1, 2982.0, -2991.6, -7.0, -30.2},
	{2, 2, 1677.0, -734.6, -2.1, -22.4},
	{3, 0, 1363.2, 0, 2.2, 0},
	{3, 1, -2381.2, -82.1, -5.9, 6.0},
	{3, 2, 1236.2, 241.9, 3.1, -1.1},
	{3, 3, 525.7, -543.4, -12.0, 0.5},
	{4, 0, 903.0, 0, -1.2, 0},
	{4, 1, 809.5, 281.9, -1.6, -0.1},
	{4, 2, 86.3, -158.4, -5.9, 6.5},
	{4, 3, -309.4, 199.7, 5.2, 3.6},
	{4, 4, 48.0, -349.7, -5.1, -5.0},
	{5, 0, -234.3, 0, -0.3, 0},
	{5, 1, 363.2, 47.7, 0.5, 0},
	{5, 2, 187.8, 208.3, -0.6, 2.5},
	{5, 3, -140.7, -121.2, 0.2, -0.6},
	{5, 4, -151.2, 32.3, 1.3, 3.0},
	{5, 5, 13.5, 98.9, 0.9, 0.3},
	{6, 0, 66.0, 0, -0.5, 0},
	{6, 1, 65.5, -19.1, -0.3, 0},
	{6, 2, 72.9, 25.1, 0.4, -1.6},
	{6, 3, -121.5, 52.8, 1.3, -1.3},
	{6, 4, -36.2, -64.5, -1.4, 0.8},
	{6, 5, 13.5, 8.9, 0, 0},
	{6, 6, -64.7, 68.1, 0.9, 1.0},
	{7, 0, 80.6, 0, -0.1, 0},
	{7, 1, -76.7, -51.5, -0.2, 0.6},
	{7, 2, -8.2, -16.9, 0, 0.6},
	{7, 3, 56.5, 2.2, 0.7, -0.8},
	{7, 4, 15.8, 23.5, 0.1, -0.2},
	{7, 5, 6.4, -2.2, -0.5, -1.1},
	{7, 6, -7.2, -27.2, -0.8, 0.1},
	{7, 7, 9.8, -1.8, 0.8, 0.3},
	{8, 0, 23.7, 0, 0, 0},
	{8, 1, 9.7, 8.4, 0.1, -0.2},
	{8, 2, -17.6, -15.3, -0.1, 0.6},
	{8, 3, -0.5, 12.8, 0.4, -0.2},
	{8, 4, -21.1, -11.7, -0.1, 0.5},
	{8, 5, 15.3, 14.9, 0.4, -0.3},
	{8, 6, 13.7, 3.6, 0.3, -0.4},
	{8, 7, -16.5, -6.9, -0.1, 0.5},
	{8, 8, -0.3, 2.8, 0.4, 0},
	{9, 0, 5.0, 0, 0, 0},
	{9, 1, 8.4, -23.4, 0, 0},
	{9, 2, 2.9, 11.0, 0, 0},
	{9, 3, -1.5, 9.8, 0, 0},
	{9, 4, -1.1, -5.1, 0, 0},
	{9, 5, -13.2, -6.3, 0, 0},
	{9, 6, 1.1, 7.8, 0, 0},
	{9, 7, 8.8, 0.4, 0, 0},
	{9, 8, -9.3, -1.4, 0, 0},
	{9, 9, -11.9, 9.6, 0, 0},
	{10, 0, -1.9, 0, 0, 0},
	{10, 1, -6.2, 3.4, 0, 0},
	{10, 2, -0.1, -0.2, 0, 0},
	{10, 3, 1.7, 3.6, 0, 0},
	{10, 4, -0.9, 4.8, 0, 0},
	{10, 5, 0.7, -8.6, 0, 0},
	{10, 6, -0.9, -0.1, 0, 0},
	{10, 7, 1.9, -4.3, 0, 0},
	{10, 8, 1.4, -3.4, 0, 0},
	{10, 9, -2.4, -0.1, 0, 0},
	{10, 10, -3.8, -8.8, 0, 0},
	{11, 0, 3.0, 0, 0, 0},
	{11, 1, -1.4, 0, 0, 0},
	{11, 2, -2.5, 2.5, 0, 0},
	{11, 3, 2.3, -0.6, 0, 0},
	{11, 4, -0.9, -0.4, 0, 0},
	{11, 5, 0.3, 0.6, 0, 0},
	{11, 6, -0.7, -0.2, 0, 0},
	{11, 7, -0.1, -1.7, 0, 0},
	{11, 8, 1.4, -1.6, 0, 0},
	{11, 9, -0.6, -3.0, 0, 0},
	{11, 10, 0.2, -2.0, 0, 0},
	{11, 11, 3.1, -2.6, 0, 0},
	{12, 0, -2.0, 0, 0, 0},
	{12, 1, -0.1, -1.2, 0, 0},
	{12, 2, 0.5, 0.5, 0, 0},
	{12, 3, 1.3, 1.4, 0, 0},
	{12, 4, -1.2, -1.8, 0, 0},
	{12, 5, 0.7, 0.1, 0, 0},
	{12, 6, 0.3, 0.8, 0, 0},
	{12, 7, 0.5, -0.2, 0, 0},
	{12, 8, -0.3, 0.6, 0, 0},
	{12, 9, -0.5, 0.2, 0, 0},
	{12, 10, 0.1, -0.9, 0, 0},
	{12, 11, -1.1, 0, 0, 0},
	{12, 12, -0.3, 0.5, 0, 0},
	{13, 0, 0.1, 0, 0, 0},
	{13, 1, -0.9, -0.9, 0, 0},
	{13, 2, 0.5, 0.6, 0, 0},
	{13, 3, 0.7, 1.4, 0, 0},
	{13, 4, -0.3, -0.4, 0, 0},
	{13, 5, 0.8, -1.3, 0, 0},
	{13, 6, 0, -0.1, 0, 0},
	{13, 7, 0.8, 0.3, 0, 0},
	{13, 8, 0, -0.1, 0, 0},
	{13, 9, 0.4, 0.5, 0, 0},
	{13, 10, 0.1, 0.5, 0, 0},
	{13, 11, 0.5, -0.4, 0, 0},
	{13, 12, -0.5, -0.4, 0, 0},
	{13, 13, -0.4, -0.6, 0, 0},
}

// IGRF evaluates the spherical harmonic field at a geodetic position.
type IGRF struct {
	schmidt [maxDegree + 1][maxDegree + 1]float64
}

// NewIGRF precomputes the Schmidt normalisation factors.
func NewIGRF() *IGRF {
	m := &IGRF{}
	s := &m.schmidt
	s[0][0] = 1
	for n := 1; n <= maxDegree; n++ {
		s[n][0] = s[n-1][0] * float64(2*n-1) / float64(n)
		for k := 1; k <= n; k++ {
			j := 1.0
			if k == 1 {
				j = 2
			}
			s[n][k] = s[n][k-1] * math.Sqrt(float64(n-k+1)*j/float64(n+k))
		}
	}
	return m
}

// Declination implements Model.
func (m *IGRF) Declination(latDeg, lonDeg, altMeters float64, t time.Time) float64 {
	x, y := m.horizontal(latDeg, lonDeg, altMeters, t)
	return math.Atan2(y, x) * 180 / math.Pi
}

// geocentric converts a geodetic latitude and height above the ellipsoid into
// the geocentric radius in km and the cosine and sine of the angle between
// the geodetic and geocentric verticals.
func geocentric(latDeg, altMeters float64) (r, ct, st, cd, sd float64) {
	b := wgs84A * (1 - wgs84F)
	a2, b2 := wgs84A*wgs84A, b*b
	h := altMeters / 1000

	sp, cp := math.Sincos(latDeg * math.Pi / 180)
	rho := math.Hypot(wgs84A*cp, b*sp)
	r = math.Sqrt(h*h + 2*h*rho + (a2*a2*cp*cp+b2*b2*sp*sp)/(rho*rho))
	cd = (h + rho) / r
	sd = (a2 - b2) / rho * cp * sp / r

	// geocentric colatitude
	ct = sp*cd - cp*sd
	st = cp*cd + sp*sd
	return r, ct, st, cd, sd
}

// horizontal returns the geodetic north and east field components in nT.
func (m *IGRF) horizontal(latDeg, lonDeg, altMeters float64, t time.Time) (float64, float64) {
	// the east component divides by sin(colatitude)
	latDeg = math.Max(-89.999, math.Min(89.999, latDeg))

	r, ct, st, cd, sd := geocentric(latDeg, altMeters)
	phi := lonDeg * math.Pi / 180
	ratio := refRadiusKm / r

	// Gauss normalised associated Legendre functions and their θ derivatives
	var p, dp [maxDegree + 1][maxDegree + 1]float64
	p[0][0] = 1
	for n := 1; n <= maxDegree; n++ {
		for k := 0; k <= n; k++ {
			switch {
			case k == n:
				p[n][n] = st * p[n-1][n-1]
				dp[n][n] = st*dp[n-1][n-1] + ct*p[n-1][n-1]
			case n == 1:
				p[1][0] = ct
				dp[1][0] = -st
			default:
				kk := float64((n-1)*(n-1)-k*k) / float64((2*n-1)*(2*n-3))
				var p2, dp2 float64
				if k <= n-2 {
					p2, dp2 = p[n-2][k], dp[n-2][k]
				}
				p[n][k] = ct*p[n-1][k] - kk*p2
				dp[n][k] = ct*dp[n-1][k] - st*p[n-1][k] - kk*dp2
			}
		}
	}

	dt := decimalYear(t) - epoch
	var north, east, down float64
	for _, c := range igrf2020 {
		f := math.Pow(ratio, float64(c.n+2))
		g := (c.g + dt*c.dg) * m.schmidt[c.n][c.m]
		h := (c.h + dt*c.dh) * m.schmidt[c.n][c.m]
		cm, sm := math.Cos(float64(c.m)*phi), math.Sin(float64(c.m)*phi)
		north += f * (g*cm + h*sm) * dp[c.n][c.m]
		east += f * float64(c.m) * (g*sm - h*cm) * p[c.n][c.m] / st
		down -= float64(c.n+1) * f * (g*cm + h*sm) * p[c.n][c.m]
	}
	// rotate from the geocentric to the geodetic frame
	return north*cd + down*sd, east
}
