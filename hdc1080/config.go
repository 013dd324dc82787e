// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"fmt"
	"time"
)

// Address is the fixed I²C address of the HDC1080.
const Address uint16 = 0x40

// Register pointers.
const (
	RegTemperature   byte = 0x00
	RegHumidity      byte = 0x01
	RegConfiguration byte = 0x02
	regSerialHigh    byte = 0xfb
	regSerialMid     byte = 0xfc
	regSerialLow     byte = 0xfd
	regManufacturer  byte = 0xfe
	regDevice        byte = 0xff
)

// ConversionTime is waited between triggering a measurement and reading it
// back. It is the worst case for a combined 14 bit acquisition and is used
// whatever the configured resolution.
const ConversionTime = 14 * time.Millisecond

// resetTime is the start up time after a soft reset.
const resetTime = 15 * time.Millisecond

// Configuration register bits.
const (
	bitReset       = 15
	bitHeater      = 13
	bitMode        = 12
	bitBattery     = 11
	bitTemp11      = 10
	bitHumidity8   = 9
	bitHumidity11  = 8
	modeSequential = ConfigWord(1 << bitMode)
)

// TemperatureResolution selects the temperature conversion resolution.
type TemperatureResolution uint8

const (
	Temperature14Bit TemperatureResolution = iota
	Temperature11Bit
)

func (r TemperatureResolution) bits() int {
	if r == Temperature11Bit {
		return 11
	}
	return 14
}

func (r TemperatureResolution) String() string {
	switch r {
	case Temperature14Bit:
		return "14 bit"
	case Temperature11Bit:
		return "11 bit"
	default:
		return fmt.Sprintf("TemperatureResolution(%d)", uint8(r))
	}
}

// HumidityResolution selects the humidity conversion resolution.
type HumidityResolution uint8

const (
	Humidity14Bit HumidityResolution = iota
	Humidity11Bit
	Humidity8Bit
)

func (r HumidityResolution) bits() int {
	switch r {
	case Humidity11Bit:
		return 11
	case Humidity8Bit:
		return 8
	default:
		return 14
	}
}

func (r HumidityResolution) String() string {
	switch r {
	case Humidity14Bit:
		return "14 bit"
	case Humidity11Bit:
		return "11 bit"
	case Humidity8Bit:
		return "8 bit"
	default:
		return fmt.Sprintf("HumidityResolution(%d)", uint8(r))
	}
}

// Config is the measurement configuration written to the sensor. The
// acquisition mode is always temperature then humidity in one conversion.
type Config struct {
	Temperature TemperatureResolution
	Humidity    HumidityResolution
	// Heater turns on the internal heater. It only heats while conversions
	// are running.
	Heater bool
}

// Validate returns an error if a resolution is not one the sensor supports.
func (c Config) Validate() error {
	if c.Temperature > Temperature11Bit {
		return fmt.Errorf("hdc1080: invalid temperature resolution %d", uint8(c.Temperature))
	}
	if c.Humidity > Humidity8Bit {
		return fmt.Errorf("hdc1080: invalid humidity resolution %d", uint8(c.Humidity))
	}
	return nil
}

// Encode returns the configuration register value. Unknown resolutions
// encode as 14 bit.
func (c Config) Encode() ConfigWord {
	w := modeSequential
	if c.Heater {
		w |= 1 << bitHeater
	}
	if c.Temperature == Temperature11Bit {
		w |= 1 << bitTemp11
	}
	switch c.Humidity {
	case Humidity11Bit:
		w |= 1 << bitHumidity11
	case Humidity8Bit:
		w |= 1 << bitHumidity8
	}
	return w
}

func (c Config) String() string {
	return fmt.Sprintf("{Temperature: %s, Humidity: %s, Heater: %t}", c.Temperature, c.Humidity, c.Heater)
}

// Encode returns the configuration word for the given resolutions with the
// heater on, the sensor setting this driver has always written.
func Encode(t TemperatureResolution, h HumidityResolution) ConfigWord {
	return Config{Temperature: t, Humidity: h, Heater: true}.Encode()
}

// ConfigWord is the 16 bit content of the configuration register.
type ConfigWord uint16

// Bytes returns w as sent on the wire, most significant byte first.
func (w ConfigWord) Bytes() [2]byte {
	return [2]byte{byte(w >> 8), byte(w)}
}

// ParseConfigWord decodes the two bytes of a configuration register read.
func ParseConfigWord(b []byte) ConfigWord {
	return ConfigWord(b[0])<<8 | ConfigWord(b[1])
}

// Config decodes the resolutions and heater setting. The reserved humidity
// pattern with both bits set decodes as 8 bit.
func (w ConfigWord) Config() Config {
	c := Config{Heater: w&(1<<bitHeater) != 0}
	if w&(1<<bitTemp11) != 0 {
		c.Temperature = Temperature11Bit
	}
	switch {
	case w&(1<<bitHumidity8) != 0:
		c.Humidity = Humidity8Bit
	case w&(1<<bitHumidity11) != 0:
		c.Humidity = Humidity11Bit
	}
	return c
}

// BatteryLow reports the supply voltage status bit, set when the supply is
// below 2.8V. It is read only.
func (w ConfigWord) BatteryLow() bool {
	return w&(1<<bitBattery) != 0
}

func (w ConfigWord) String() string {
	return fmt.Sprintf("0x%04x", uint16(w))
}
