//go:build rp2040

package main

import (
	"machine"

	"scjingle/storage"
)

// I2C0 on the default pins, SDA=GP4 and SCL=GP5
const eepromBusHz = 400000

// InitEEPROM configures I2C0 and returns the AT24C32 on it
func InitEEPROM() (*storage.AT24, error) {
	err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: eepromBusHz,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewAT24(machine.I2C0, storage.AT24C32Size, storage.AT24C32PageSize), nil
}
