// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package declination estimates the angle between magnetic north and true
// north for a position and date.
package declination

import (
	"fmt"
	"strings"
	"time"
)

// Model returns the magnetic declination in degrees, east positive.
type Model interface {
	Declination(latDeg, lonDeg, altMeters float64, t time.Time) float64
}

// Fixed is a model that ignores position and time, for installations that
// know their local declination.
type Fixed float64

// Declination returns the configured value.
func (f Fixed) Declination(_, _, _ float64, _ time.Time) float64 {
	return float64(f)
}

// New returns the model selected by name: "igrf" (default) or "fixed".
func New(name string, fixedDeg float64) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "igrf":
		return NewIGRF(), nil
	case "fixed":
		return Fixed(fixedDeg), nil
	default:
		return nil, fmt.Errorf("declination: unknown model %q (want igrf or fixed)", name)
	}
}

// decimalYear converts t into a fractional year, e.g. 2025-07-02 ≈ 2025.5.
func decimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + t.Sub(start).Seconds()/end.Sub(start).Seconds()
}
