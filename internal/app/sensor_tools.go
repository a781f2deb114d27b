// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/inertial_radar/internal/config"
	"github.com/relabs-tech/inertial_radar/internal/sensors"
)

const magCalibrationInterval = 10 * time.Millisecond

// openMagnetometer opens the configured QMC5883L. The returned close function
// halts the chip and releases the bus.
func openMagnetometer(cfg *config.Config, logger *zap.SugaredLogger) (*sensors.QMC5883, func(), error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("magnetometer: periph host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.MagI2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("magnetometer: open I2C bus %q: %w", cfg.MagI2CBus, err)
	}
	mag, err := sensors.NewQMC5883(bus, cfg.MagI2CAddr, nil)
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	logger.Infof("magnetometer: %s ready", mag)
	return mag, func() {
		if err := mag.Halt(); err != nil {
			logger.Warnf("magnetometer: halt: %v", err)
		}
		_ = bus.Close()
	}, nil
}

// RunRegisterDump prints every QMC5883L register with its decoded fields.
func RunRegisterDump(out io.Writer, logger *zap.SugaredLogger) error {
	mag, closeFn, err := openMagnetometer(config.Get(), logger)
	if err != nil {
		return err
	}
	defer closeFn()

	regs, err := mag.DumpRegisters()
	if err != nil {
		return err
	}
	return writeRegisters(out, regs)
}

func writeRegisters(out io.Writer, regs []sensors.RegisterValue) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tNAME\tACCESS\tVALUE\tBITS\tDESCRIPTION")
	for _, r := range regs {
		fmt.Fprintf(tw, "0x%02X\t%s\t%s\t0x%02X\t%08b\t%s\n", r.Address, r.Name, r.Access, r.Value, r.Value, r.Description)
		for _, f := range r.BitFields {
			fmt.Fprintf(tw, "\t  %s\t\t\t[%s]\t%s\n", f.Name, f.Bits, f.Description)
		}
	}
	return tw.Flush()
}

// RunMagCalibration samples the magnetometer for up to d while the user
// rotates the device, then prints the MAG_OFFSET_* and MAG_SCALE_* lines for
// the config file.
func RunMagCalibration(ctx context.Context, d time.Duration, out io.Writer, logger *zap.SugaredLogger) error {
	mag, closeFn, err := openMagnetometer(config.Get(), logger)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintf(out, "Rotate the device slowly through every orientation for %s...\n", d)
	cal := collectMagSamples(ctx, mag, magCalibrationInterval, d, logger)

	result, confidence, err := cal.Result()
	if err != nil {
		return fmt.Errorf("calibration: %d samples: %w", cal.Count(), err)
	}
	fmt.Fprint(out, formatMagCalibration(result, confidence, cal.Count()))
	return nil
}

// collectMagSamples reads r every interval until d has elapsed or ctx is done.
func collectMagSamples(ctx context.Context, r sensors.MagReader, interval, d time.Duration, logger *zap.SugaredLogger) *sensors.MagCalibrator {
	cal := sensors.NewMagCalibrator()
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return cal
		case <-ticker.C:
		}
		v, err := r.Read()
		switch {
		case errors.Is(err, sensors.ErrMagNotReady):
			continue
		case err != nil:
			logger.Debugf("calibration: read error: %v", err)
			continue
		}
		cal.Add(v)
	}
}

func formatMagCalibration(c sensors.MagCalibration, confidence float64, samples int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# magnetometer calibration: %d samples, confidence %.2f\n", samples, confidence)
	for i, axis := range []string{"X", "Y", "Z"} {
		fmt.Fprintf(&b, "MAG_OFFSET_%s=%.3f\n", axis, c.Offset[i])
	}
	for i, axis := range []string{"X", "Y", "Z"} {
		fmt.Fprintf(&b, "MAG_SCALE_%s=%.4f\n", axis, c.Scale[i])
	}
	return b.String()
}
