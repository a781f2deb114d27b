// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// BitField describes a bit range within a register.
type BitField struct {
	Bits        string `json:"bits"` // e.g. "7:6" or "0"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is the metadata of one device register.
type RegisterInfo struct {
	Address     byte       `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterValue is a register read back from the chip.
type RegisterValue struct {
	RegisterInfo
	Value byte `json:"value"`
}

// QMC5883RegisterMap returns metadata for the QMC5883L registers.
func QMC5883RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: 0x00, Name: "DATA_X_LSB", Description: "X axis output, low byte", Access: "R"},
		{Address: 0x01, Name: "DATA_X_MSB", Description: "X axis output, high byte", Access: "R"},
		{Address: 0x02, Name: "DATA_Y_LSB", Description: "Y axis output, low byte", Access: "R"},
		{Address: 0x03, Name: "DATA_Y_MSB", Description: "Y axis output, high byte", Access: "R"},
		{Address: 0x04, Name: "DATA_Z_LSB", Description: "Z axis output, low byte", Access: "R"},
		{Address: 0x05, Name: "DATA_Z_MSB", Description: "Z axis output, high byte", Access: "R"},
		{Address: qmcRegStatus, Name: "STATUS", Description: "Status", Access: "R",
			BitFields: []BitField{
				{Bits: "2", Name: "DOR", Description: "Data skipped for reading", Values: "0=Normal, 1=Skipped"},
				{Bits: "1", Name: "OVL", Description: "Overflow", Values: "0=Normal, 1=Overflow"},
				{Bits: "0", Name: "DRDY", Description: "Data ready", Values: "0=No new data, 1=New data"},
			}},
		{Address: 0x07, Name: "TOUT_LSB", Description: "Temperature output, low byte", Access: "R"},
		{Address: 0x08, Name: "TOUT_MSB", Description: "Temperature output, high byte", Access: "R"},
		{Address: qmcRegControl1, Name: "CONTROL1", Description: "Mode, rate, range and oversampling", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "OSR", Description: "Over sample ratio", Values: "0=512, 1=256, 2=128, 3=64"},
				{Bits: "5:4", Name: "RNG", Description: "Full scale", Values: "0=±2G, 1=±8G"},
				{Bits: "3:2", Name: "ODR", Description: "Output data rate", Values: "0=10Hz, 1=50Hz, 2=100Hz, 3=200Hz"},
				{Bits: "1:0", Name: "MODE", Description: "Mode", Values: "0=Standby, 1=Continuous"},
			}},
		{Address: qmcRegControl2, Name: "CONTROL2", Description: "Reset and interrupt control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "SOFT_RST", Description: "Soft reset", Values: "1=Reset all registers"},
				{Bits: "6", Name: "ROL_PNT", Description: "Pointer roll-over", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "INT_ENB", Description: "Interrupt pin", Values: "0=Enabled, 1=Disabled"},
			}},
		{Address: qmcRegSetReset, Name: "SET_RESET", Description: "SET/RESET period, 0x01 recommended", Access: "RW", Default: "0x00"},
		{Address: qmcRegChipID, Name: "CHIP_ID", Description: "Chip identification", Access: "R", Default: "0xFF"},
	}
}

// DumpRegisters reads every register in the map.
func (m *QMC5883) DumpRegisters() ([]RegisterValue, error) {
	regs := QMC5883RegisterMap()
	out := make([]RegisterValue, 0, len(regs))
	for _, r := range regs {
		v, err := m.readReg(r.Address)
		if err != nil {
			return out, fmt.Errorf("qmc5883: read %s (0x%02X): %w", r.Name, r.Address, err)
		}
		out = append(out, RegisterValue{RegisterInfo: r, Value: v})
	}
	return out, nil
}
