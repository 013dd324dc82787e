// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func noSleep(time.Duration) {}

// Playback values for the default configuration write.
var pbConfigure = i2ctest.IO{Addr: Address, W: []byte{RegConfiguration, 0x30, 0x00}}

// Playback values for a single measurement. 42.5°C, 50%RH.
var pbMeasure = []i2ctest.IO{
	{Addr: Address, W: []byte{RegTemperature}},
	{Addr: Address, R: []byte{0x80, 0x00, 0x80, 0x00}},
}

func testOpts() *Opts {
	opts := DefaultOpts
	opts.Sleep = noSleep
	return &opts
}

func TestNewI2C(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{pbConfigure}}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if s := dev.String(); len(s) == 0 {
		t.Error("invalid value for String()")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}

	bus = i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: Address, W: []byte{RegConfiguration, 0x14, 0x00}},
	}}
	opts := Opts{Temperature: Temperature11Bit, Sleep: noSleep}
	if _, err := NewI2C(&bus, &opts); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewI2CErrors(t *testing.T) {
	bus := i2ctest.Playback{DontPanic: true}
	if _, err := NewI2C(&bus, testOpts()); err == nil {
		t.Error("expected error from an empty bus")
	}
	opts := Opts{Temperature: 3}
	if _, err := NewI2C(&bus, &opts); err == nil {
		t.Error("expected error for invalid resolution")
	}
}

func TestDevSense(t *testing.T) {
	bus := i2ctest.Playback{Ops: append([]i2ctest.IO{pbConfigure}, pbMeasure...)}
	s := &sleeper{}
	opts := testOpts()
	opts.Sleep = s.sleep
	dev, err := NewI2C(&bus, opts)
	if err != nil {
		t.Fatal(err)
	}
	e := physic.Env{}
	if err := dev.Sense(&e); err != nil {
		t.Fatal(err)
	}
	if expected := physic.ZeroCelsius + 42500*physic.MilliKelvin; e.Temperature != expected {
		t.Fatalf("temperature %s(%d) != %s(%d)", expected, expected, e.Temperature, e.Temperature)
	}
	if expected := 50 * physic.PercentRH; e.Humidity != expected {
		t.Fatalf("humidity %s(%d) != %s(%d)", expected, expected, e.Humidity, e.Humidity)
	}
	if expected := 0 * physic.Pascal; e.Pressure != expected {
		t.Fatalf("pressure %s(%d) != %s(%d)", expected, expected, e.Pressure, e.Pressure)
	}
	if len(s.delays) != 1 || s.delays[0] != ConversionTime {
		t.Errorf("delays = %v", s.delays)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDevRead(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		pbConfigure,
		{Addr: Address, W: []byte{RegTemperature}},
		// 25.94°C, 49%RH
		{Addr: Address, R: []byte{0x66, 0x4e, 0x7f, 0xff}},
	}}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	temperature, humidity, err := dev.Read()
	if err != nil {
		t.Fatal(err)
	}
	if temperature < 25.93 || temperature > 25.95 || humidity != 49 {
		t.Errorf("Read() = %f, %d", temperature, humidity)
	}
}

func TestDevReadError(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{pbConfigure}, DontPanic: true}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := dev.Read(); err == nil {
		t.Error("expected error")
	}
	e := physic.Env{Temperature: physic.ZeroCelsius}
	if err := dev.Sense(&e); err == nil {
		t.Error("expected error")
	}
	if e.Temperature != 0 {
		t.Errorf("env not cleared on error: %v", e)
	}
}

func TestDevReadConfiguration(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		pbConfigure,
		{Addr: Address, W: []byte{RegConfiguration}, R: []byte{0x38, 0x00}},
	}}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	w, err := dev.ReadConfiguration()
	if err != nil {
		t.Fatal(err)
	}
	if w != 0x3800 || !w.BatteryLow() {
		t.Errorf("ReadConfiguration() = %s", w)
	}
	if c := w.Config(); c != DefaultOpts.config() {
		t.Errorf("Config() = %s", c)
	}
}

func TestDevIdentity(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		pbConfigure,
		{Addr: Address, W: []byte{regManufacturer}, R: []byte{0x54, 0x49}},
		{Addr: Address, W: []byte{regDevice}, R: []byte{0x10, 0x50}},
		{Addr: Address, W: []byte{regSerialHigh}, R: []byte{0x12, 0x34}},
		{Addr: Address, W: []byte{regSerialMid}, R: []byte{0x56, 0x78}},
		{Addr: Address, W: []byte{regSerialLow}, R: []byte{0x9a, 0x80}},
	}}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	id, err := dev.Identity()
	if err != nil {
		t.Fatal(err)
	}
	expected := Identity{
		ManufacturerID: 0x5449,
		DeviceID:       0x1050,
		SerialNumber:   0x1234<<25 | 0x5678<<9 | 0x135,
	}
	if id != expected {
		t.Errorf("Identity() = %#v, expected %#v", id, expected)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDevIdentityMismatch(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		pbConfigure,
		{Addr: Address, W: []byte{regManufacturer}, R: []byte{0x00, 0x00}},
		{Addr: Address, W: []byte{regDevice}, R: []byte{0x10, 0x50}},
	}}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.Identity(); err == nil {
		t.Error("expected error for a foreign manufacturer ID")
	}
}

func TestDevReset(t *testing.T) {
	cfg := i2ctest.IO{Addr: Address, W: []byte{RegConfiguration, 0x11, 0x00}}
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		cfg,
		{Addr: Address, W: []byte{RegConfiguration, 0x80, 0x00}},
		cfg,
	}}
	s := &sleeper{}
	opts := Opts{Humidity: Humidity11Bit, Sleep: s.sleep}
	dev, err := NewI2C(&bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Reset(); err != nil {
		t.Fatal(err)
	}
	if len(s.delays) != 1 || s.delays[0] != resetTime {
		t.Errorf("delays = %v", s.delays)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDevPrecision(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{pbConfigure}}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	env := physic.Env{}
	dev.Precision(&env)
	if env.Temperature != 10070801*physic.NanoKelvin {
		t.Errorf("incorrect temperature precision value got %d", env.Temperature)
	}
	if env.Humidity != 610*physic.TenthMicroRH {
		t.Errorf("incorrect humidity precision got %d", env.Humidity)
	}
}

func TestDevSenseContinuous(t *testing.T) {
	ops := []i2ctest.IO{pbConfigure}
	ops = append(ops, pbMeasure...)
	ops = append(ops, pbMeasure...)
	// Readings past the recorded ones fail and are skipped.
	bus := i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, err := NewI2C(&bus, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.SenseContinuous(time.Millisecond); err == nil {
		t.Error("expected error for an interval shorter than the conversion time")
	}
	ch, err := dev.SenseContinuous(15 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		e := <-ch
		if e.Humidity != 50*physic.PercentRH {
			t.Errorf("reading %d: %v", i, e)
		}
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	for range ch {
	}
}
