// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// QMC5883L register addresses.
const (
	qmcRegData     = 0x00 // X LSB .. Z MSB, then status
	qmcRegStatus   = 0x06
	qmcRegControl1 = 0x09
	qmcRegControl2 = 0x0A
	qmcRegSetReset = 0x0B
	qmcRegChipID   = 0x0D

	qmcChipID = 0xFF

	qmcStatusDRDY = 1 << 0
	qmcStatusOVL  = 1 << 1

	qmcModeContinuous = 0x01
	qmcSoftReset      = 0x80
)

// QMC5883DefaultAddr is the fixed I2C address of the QMC5883L.
const QMC5883DefaultAddr = 0x0D

// settleTime covers the first conversion after start up.
const settleTime = 10 * time.Millisecond

// Output data rates (control register 1, bits 3:2).
const (
	QMCRate10Hz  byte = 0x00
	QMCRate50Hz  byte = 0x04
	QMCRate100Hz byte = 0x08
	QMCRate200Hz byte = 0x0C
)

// Full scale ranges (control register 1, bits 5:4).
const (
	QMCRange2G byte = 0x00
	QMCRange8G byte = 0x10
)

// Over sampling ratios (control register 1, bits 7:6).
const (
	QMCOversample512 byte = 0x00
	QMCOversample256 byte = 0x40
	QMCOversample128 byte = 0x80
	QMCOversample64  byte = 0xC0
)

// Magnetometer errors.
var (
	ErrMagNotReady = errors.New("qmc5883: no new data")
	ErrMagOverflow = errors.New("qmc5883: measurement overflow")
)

// QMC5883Opts configures the magnetometer.
type QMC5883Opts struct {
	Rate       byte
	Range      byte
	Oversample byte
}

// DefaultQMC5883Opts is 200 Hz, ±8 gauss, 512× oversampling.
var DefaultQMC5883Opts = QMC5883Opts{
	Rate:       QMCRate200Hz,
	Range:      QMCRange8G,
	Oversample: QMCOversample512,
}

// QMC5883 is a QMC5883L 3-axis magnetometer on I2C.
type QMC5883 struct {
	dev      i2c.Dev
	utPerLSB float64
}

// NewQMC5883 resets the chip and starts continuous measurement.
func NewQMC5883(bus i2c.Bus, addr uint16, opts *QMC5883Opts) (*QMC5883, error) {
	if opts == nil {
		opts = &DefaultQMC5883Opts
	}
	if addr == 0 {
		addr = QMC5883DefaultAddr
	}
	m := &QMC5883{dev: i2c.Dev{Bus: bus, Addr: addr}}

	id, err := m.readReg(qmcRegChipID)
	if err != nil {
		return nil, fmt.Errorf("qmc5883: read chip id: %w", err)
	}
	if id != qmcChipID {
		return nil, fmt.Errorf("qmc5883: unexpected chip id 0x%02X", id)
	}
	if err := m.writeReg(qmcRegControl2, qmcSoftReset); err != nil {
		return nil, fmt.Errorf("qmc5883: soft reset: %w", err)
	}
	if err := m.writeReg(qmcRegSetReset, 0x01); err != nil {
		return nil, fmt.Errorf("qmc5883: set/reset period: %w", err)
	}
	ctrl := opts.Oversample | opts.Range | opts.Rate | qmcModeContinuous
	if err := m.writeReg(qmcRegControl1, ctrl); err != nil {
		return nil, fmt.Errorf("qmc5883: control: %w", err)
	}
	time.Sleep(settleTime)

	// 12000 LSB/gauss at ±2G, 3000 at ±8G; 1 gauss = 100 µT
	if opts.Range == QMCRange8G {
		m.utPerLSB = 100.0 / 3000
	} else {
		m.utPerLSB = 100.0 / 12000
	}
	return m, nil
}

// Read returns the field in µT. It fails with ErrMagNotReady when no new
// measurement is available and ErrMagOverflow when an axis saturated.
func (m *QMC5883) Read() ([3]float64, error) {
	var buf [7]byte
	if err := m.dev.Tx([]byte{qmcRegData}, buf[:]); err != nil {
		return [3]float64{}, fmt.Errorf("qmc5883: read data: %w", err)
	}
	status := buf[6]
	if status&qmcStatusDRDY == 0 {
		return [3]float64{}, ErrMagNotReady
	}
	if status&qmcStatusOVL != 0 {
		return [3]float64{}, ErrMagOverflow
	}
	x := int16(binary.LittleEndian.Uint16(buf[0:2]))
	y := int16(binary.LittleEndian.Uint16(buf[2:4]))
	z := int16(binary.LittleEndian.Uint16(buf[4:6]))
	return [3]float64{
		float64(x) * m.utPerLSB,
		float64(y) * m.utPerLSB,
		float64(z) * m.utPerLSB,
	}, nil
}

// Halt puts the chip in standby.
func (m *QMC5883) Halt() error {
	return m.writeReg(qmcRegControl1, 0x00)
}

// String implements conn.Resource.
func (m *QMC5883) String() string {
	return fmt.Sprintf("QMC5883L{%s}", &m.dev)
}

// ReadRegister returns the raw value of a register.
func (m *QMC5883) ReadRegister(addr byte) (byte, error) {
	return m.readReg(addr)
}

func (m *QMC5883) readReg(reg byte) (byte, error) {
	var b [1]byte
	if err := m.dev.Tx([]byte{reg}, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *QMC5883) writeReg(reg, value byte) error {
	return m.dev.Tx([]byte{reg, value}, nil)
}
