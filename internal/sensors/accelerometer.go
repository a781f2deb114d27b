// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

const standardGravity = 9.80665

// Accelerometer reads the MPU9250 accelerometer over SPI.
type Accelerometer struct {
	imu     *mpu9250.MPU9250
	lsbPerG float64
}

// NewAccelerometer initializes the MPU9250 on spiDev with chip select csPin.
// accelRange is 0=±2g, 1=±4g, 2=±8g, 3=±16g.
func NewAccelerometer(spiDev, csPin string, accelRange byte, logger *zap.SugaredLogger) (*Accelerometer, error) {
	if accelRange > 3 {
		return nil, fmt.Errorf("accelerometer: invalid range %d", accelRange)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("accelerometer: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("accelerometer: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("accelerometer: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("accelerometer: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("accelerometer: initialization: %w", err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("accelerometer: set accel range: %w", err)
	}
	logger.Infof("accelerometer: range set to %d (±%dg)", accelRange, []int{2, 4, 8, 16}[accelRange])

	// calibration assumes the board lies still; a failure only costs accuracy
	if err := dev.Calibrate(); err != nil {
		logger.Warnf("accelerometer: calibration failed: %v", err)
	} else {
		logger.Info("accelerometer: calibration complete")
	}

	return &Accelerometer{
		imu:     dev,
		lsbPerG: LSBPerG(accelRange),
	}, nil
}

// LSBPerG is the accelerometer sensitivity for a full scale range setting.
func LSBPerG(accelRange byte) float64 {
	return 16384 / float64(int(1)<<accelRange)
}

// Read returns the acceleration in m/s².
func (a *Accelerometer) Read() ([3]float64, error) {
	ax, err := a.imu.GetAccelerationX()
	if err != nil {
		return [3]float64{}, fmt.Errorf("accelerometer: accel X: %w", err)
	}
	ay, err := a.imu.GetAccelerationY()
	if err != nil {
		return [3]float64{}, fmt.Errorf("accelerometer: accel Y: %w", err)
	}
	az, err := a.imu.GetAccelerationZ()
	if err != nil {
		return [3]float64{}, fmt.Errorf("accelerometer: accel Z: %w", err)
	}
	return [3]float64{
		RawToMS2(ax, a.lsbPerG),
		RawToMS2(ay, a.lsbPerG),
		RawToMS2(az, a.lsbPerG),
	}, nil
}

// RawToMS2 converts a raw accelerometer count to m/s².
func RawToMS2(raw int16, lsbPerG float64) float64 {
	return float64(raw) / lsbPerG * standardGravity
}
