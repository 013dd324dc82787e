// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"testing"

	"periph.io/x/conn/v3/physic"
)

func rawOf(temperature, humidity uint16) RawSample {
	return RawSample{byte(temperature >> 8), byte(temperature), byte(humidity >> 8), byte(humidity)}
}

func TestConvertRange(t *testing.T) {
	for i := 0; i < 1<<16; i++ {
		s := Convert(rawOf(uint16(i), uint16(i)))
		if s.Temperature < -40.0 || s.Temperature >= 125.0 {
			t.Fatalf("count 0x%04x: temperature %f out of range", i, s.Temperature)
		}
		if s.Humidity > 99 {
			t.Fatalf("count 0x%04x: humidity %d out of range", i, s.Humidity)
		}
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		raw         RawSample
		temperature float64
		humidity    uint8
	}{
		{rawOf(0x0000, 0x0000), -40.0, 0},
		{rawOf(0x8000, 0x8000), 42.5, 50},
		{rawOf(0x4000, 0x4000), 1.25, 25},
		// 49.998% truncates to 49.
		{rawOf(0x0000, 0x7fff), -40.0, 49},
		// 99.998% truncates to 99.
		{rawOf(0x0000, 0xffff), -40.0, 99},
	}
	for _, test := range tests {
		s := Convert(test.raw)
		if s.Temperature != test.temperature || s.Humidity != test.humidity {
			t.Errorf("Convert(%#v) = %s, expected %.2f°C %d%%RH", test.raw, s, test.temperature, test.humidity)
		}
	}

	top := Convert(rawOf(0xffff, 0))
	if top.Temperature >= 125.0 || top.Temperature < 124.99 {
		t.Errorf("Convert(0xffff) = %f", top.Temperature)
	}
}

func TestRawSamplePhysic(t *testing.T) {
	r := rawOf(0x0000, 0x0000)
	if expected := physic.ZeroCelsius - 40*physic.Celsius; r.Temperature() != expected {
		t.Errorf("temperature %s(%d) != %s(%d)", r.Temperature(), r.Temperature(), expected, expected)
	}
	r = rawOf(0x8000, 0x8000)
	if expected := physic.ZeroCelsius + 42500*physic.MilliKelvin; r.Temperature() != expected {
		t.Errorf("temperature %s(%d) != %s(%d)", r.Temperature(), r.Temperature(), expected, expected)
	}
	if expected := 50 * physic.PercentRH; r.Humidity() != expected {
		t.Errorf("humidity %s(%d) != %s(%d)", r.Humidity(), r.Humidity(), expected, expected)
	}
	// The physic value is not truncated.
	r = rawOf(0, 0x7fff)
	if r.Humidity() <= 49*physic.PercentRH {
		t.Errorf("humidity %s should be above 49%%", r.Humidity())
	}
	if r.TemperatureCount() != 0 || r.HumidityCount() != 0x7fff {
		t.Errorf("counts %d %d", r.TemperatureCount(), r.HumidityCount())
	}
}

func TestPrecision(t *testing.T) {
	tests := []struct {
		cfg         Config
		temperature physic.Temperature
		humidity    physic.RelativeHumidity
	}{
		{Config{}, 10070801 * physic.NanoKelvin, 610 * physic.TenthMicroRH},
		{Config{Temperature: Temperature11Bit, Humidity: Humidity11Bit}, 80566406 * physic.NanoKelvin, 4883 * physic.TenthMicroRH},
		{Config{Humidity: Humidity8Bit}, 10070801 * physic.NanoKelvin, 39063 * physic.TenthMicroRH},
	}
	for _, test := range tests {
		env := physic.Env{Pressure: physic.Pascal}
		precision(test.cfg, &env)
		if env.Temperature != test.temperature || env.Humidity != test.humidity || env.Pressure != 0 {
			t.Errorf("precision(%s) = %d %d %d", test.cfg, env.Temperature, env.Humidity, env.Pressure)
		}
	}
}
