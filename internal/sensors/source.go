// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/inertial_radar/internal/imu"
)

// AccelReader reads an acceleration vector.
type AccelReader interface {
	Read() ([3]float64, error)
}

// MagReader reads a magnetic field vector in µT.
type MagReader interface {
	Read() ([3]float64, error)
}

// Options selects the hardware behind an IMU source.
type Options struct {
	SPIDevice  string
	CSPin      string
	AccelRange byte
	MagBus     string // empty selects the first I2C bus
	MagAddr    uint16
	// MagCalibration is applied to every field reading; the zero value
	// leaves readings raw.
	MagCalibration MagCalibration
}

// Source pairs an accelerometer with a magnetometer into imu.Samples.
type Source struct {
	name   string
	accel  AccelReader
	mag    MagReader
	magCal MagCalibration
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewSource builds a source from already opened readers. mag may be nil.
func NewSource(name string, accel AccelReader, mag MagReader, logger *zap.SugaredLogger) *Source {
	return &Source{name: name, accel: accel, mag: mag, magCal: IdentityMagCalibration, now: time.Now, logger: logger}
}

// SetMagCalibration sets the correction applied to field readings.
func (s *Source) SetMagCalibration(c MagCalibration) {
	s.magCal = c
}

// Open initializes the MPU9250 accelerometer and the QMC5883L magnetometer.
// A missing magnetometer is not fatal: samples then carry accel only.
func Open(opts Options, logger *zap.SugaredLogger) (*Source, error) {
	accel, err := NewAccelerometer(opts.SPIDevice, opts.CSPin, opts.AccelRange, logger)
	if err != nil {
		return nil, err
	}

	var mag MagReader
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("magnetometer: periph host init: %w", err)
	}
	bus, err := i2creg.Open(opts.MagBus)
	if err != nil {
		logger.Warnf("magnetometer: open I2C bus %q (continuing without mag): %v", opts.MagBus, err)
	} else if m, err := NewQMC5883(bus, opts.MagAddr, nil); err != nil {
		logger.Warnf("magnetometer: init failed (continuing without mag): %v", err)
		_ = bus.Close()
	} else {
		logger.Infof("magnetometer: %s ready", m)
		mag = m
	}

	src := NewSource("mpu9250+qmc5883", accel, mag, logger)
	if opts.MagCalibration != (MagCalibration{}) {
		src.SetMagCalibration(opts.MagCalibration)
		if !opts.MagCalibration.IsIdentity() {
			logger.Infof("magnetometer: applying calibration offset=%v scale=%v", opts.MagCalibration.Offset, opts.MagCalibration.Scale)
		}
	}
	return src, nil
}

// Next implements imu.Source.
func (s *Source) Next() (imu.Sample, error) {
	a, err := s.accel.Read()
	if err != nil {
		return imu.Sample{}, err
	}
	sample := imu.Sample{
		Source:   s.name,
		Time:     s.now(),
		Ax:       a[0],
		Ay:       a[1],
		Az:       a[2],
		HasAccel: true,
	}
	if s.mag == nil {
		return sample, nil
	}

	m, err := s.mag.Read()
	switch {
	case errors.Is(err, ErrMagNotReady):
		// keep the accel half, the filter holds the last field
	case errors.Is(err, ErrMagOverflow):
		s.logger.Debugf("%s: magnetometer overflow detected", s.name)
	case err != nil:
		s.logger.Warnf("%s: magnetometer read error: %v", s.name, err)
	default:
		m = s.magCal.Apply(m)
		sample.Mx, sample.My, sample.Mz = m[0], m[1], m[2]
		sample.HasMag = true
	}
	return sample, nil
}
