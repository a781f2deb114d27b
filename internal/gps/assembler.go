// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// ErrSkipped is returned for lines that are not NMEA sentences.
var ErrSkipped = errors.New("gps: not an NMEA sentence")

// Assembler accumulates NMEA sentences into fixes. RMC drives the output
// (one fix per RMC); the latest GGA contributes altitude and satellites.
type Assembler struct {
	Provider string

	current Fix
}

// NewAssembler returns an assembler stamping fixes with provider.
func NewAssembler(provider string) *Assembler {
	return &Assembler{Provider: provider}
}

// Feed parses one line. It returns the completed fix and true when the line
// was an RMC sentence.
func (a *Assembler) Feed(line string) (Fix, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return Fix{}, false, ErrSkipped
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, false, err
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		a.current.Altitude = m.Altitude
		a.current.HasAlt = m.FixQuality != nmea.Invalid
		a.current.Satellites = m.NumSatellites
		return Fix{}, false, nil

	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)

		a.current.Provider = a.Provider
		a.current.Time = fixTime(m.Date, m.Time)
		a.current.Latitude = m.Latitude
		a.current.Longitude = m.Longitude
		a.current.SpeedKnots = m.Speed
		a.current.CourseDeg = m.Course
		a.current.Validity = m.Validity
		return a.current, true, nil

	default:
		// ignore other sentence types (GSA, GSV, VTG, ...)
		return Fix{}, false, nil
	}
}

func fixTime(d nmea.Date, t nmea.Time) time.Time {
	if !d.Valid || !t.Valid {
		return time.Time{}
	}
	return time.Date(2000+d.YY, time.Month(d.MM), d.DD, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
