// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

const (
	// Magic numbers for count to value conversions.
	temperatureOffset float64 = -40.0
	temperatureScalar float64 = 165.0
	humidityScalar    float64 = 100.0
	scaleDivisor      float64 = 65536.0
)

// RawSample is the 4 bytes read after a measurement: the temperature code
// then the humidity code, both big endian.
type RawSample [4]byte

// TemperatureCount returns the raw temperature code.
func (r RawSample) TemperatureCount() uint16 {
	return uint16(r[0])<<8 | uint16(r[1])
}

// HumidityCount returns the raw humidity code.
func (r RawSample) HumidityCount() uint16 {
	return uint16(r[2])<<8 | uint16(r[3])
}

// Temperature returns the temperature without rounding.
func (r RawSample) Temperature() physic.Temperature {
	f := float64(r.TemperatureCount())/scaleDivisor*temperatureScalar + temperatureOffset
	return physic.ZeroCelsius + physic.Temperature(f*float64(physic.Celsius))
}

// Humidity returns the relative humidity without truncation.
func (r RawSample) Humidity() physic.RelativeHumidity {
	f := float64(r.HumidityCount()) / scaleDivisor * humidityScalar
	return physic.RelativeHumidity(f * float64(physic.PercentRH))
}

// Sample is a measurement in the units the sensor's application reports.
type Sample struct {
	// Temperature in °C, in [-40, 125).
	Temperature float64
	// Humidity in whole percent, truncated, in [0, 99].
	Humidity uint8
}

func (s Sample) String() string {
	return fmt.Sprintf("%.2f°C %d%%RH", s.Temperature, s.Humidity)
}

// Convert maps the raw codes to physical units. Humidity is truncated toward
// zero, never rounded.
func Convert(r RawSample) Sample {
	return Sample{
		Temperature: float64(r.TemperatureCount())/scaleDivisor*temperatureScalar + temperatureOffset,
		Humidity:    uint8(float64(r.HumidityCount()) / scaleDivisor * humidityScalar),
	}
}

// precision returns the smallest step at the configured resolutions.
func precision(c Config, env *physic.Env) {
	tStep := float64(uint32(1) << (16 - c.Temperature.bits()))
	hStep := float64(uint32(1) << (16 - c.Humidity.bits()))
	env.Temperature = physic.Temperature(math.Round(tStep * temperatureScalar / scaleDivisor * float64(physic.Celsius)))
	env.Humidity = physic.RelativeHumidity(math.Round(hStep * humidityScalar / scaleDivisor * float64(physic.PercentRH)))
	env.Pressure = 0
}
