// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Dev represents an HDC1080 sensor on a periph.io I²C bus.
type Dev struct {
	d     *i2c.Dev
	sleep func(time.Duration)

	mu  sync.Mutex
	cfg Config

	continuous
}

// Identity holds the read only identification registers.
type Identity struct {
	// ManufacturerID is 0x5449 ("TI").
	ManufacturerID uint16
	// DeviceID is 0x1050.
	DeviceID uint16
	// SerialNumber is the 41 bit unique serial number.
	SerialNumber uint64
}

const (
	manufacturerTI uint16 = 0x5449
	deviceHDC1080  uint16 = 0x1050
)

// NewI2C returns an object that communicates over I²C to an HDC1080 and
// writes the configuration from opts. The Opts can be nil.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: Address}, sleep: opts.sleep()}
	if err := d.Configure(opts.config()); err != nil {
		return nil, err
	}
	return d, nil
}

// Configure writes cfg to the configuration register.
func (d *Dev) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeConfig(cfg.Encode()); err != nil {
		return err
	}
	d.cfg = cfg
	return nil
}

func (d *Dev) writeConfig(w ConfigWord) error {
	b := w.Bytes()
	if err := d.d.Tx([]byte{RegConfiguration, b[0], b[1]}, nil); err != nil {
		return fmt.Errorf("hdc1080: write configuration %w", err)
	}
	return nil
}

// ReadConfiguration returns the configuration register as the sensor holds
// it, including the battery status bit.
func (d *Dev) ReadConfiguration() (ConfigWord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readRegister(RegConfiguration)
	return ConfigWord(v), err
}

func (d *Dev) readRegister(reg byte) (uint16, error) {
	r := make([]byte, 2)
	if err := d.d.Tx([]byte{reg}, r); err != nil {
		return 0, fmt.Errorf("hdc1080: read register 0x%02x %w", reg, err)
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

// Identity reads the manufacturer, device and serial number registers.
func (d *Dev) Identity() (Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var id Identity
	var err error
	if id.ManufacturerID, err = d.readRegister(regManufacturer); err != nil {
		return id, err
	}
	if id.DeviceID, err = d.readRegister(regDevice); err != nil {
		return id, err
	}
	if id.ManufacturerID != manufacturerTI || id.DeviceID != deviceHDC1080 {
		return id, fmt.Errorf("hdc1080: unexpected device 0x%04x:0x%04x", id.ManufacturerID, id.DeviceID)
	}
	// Serial ID[40:25], [24:9] and [8:0] left aligned.
	var serial [3]uint16
	for i, reg := range []byte{regSerialHigh, regSerialMid, regSerialLow} {
		if serial[i], err = d.readRegister(reg); err != nil {
			return id, err
		}
	}
	id.SerialNumber = uint64(serial[0])<<25 | uint64(serial[1])<<9 | uint64(serial[2]>>7)
	return id, nil
}

// Reset performs a soft reset then writes the current configuration again.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeConfig(1 << bitReset); err != nil {
		return err
	}
	d.sleep(resetTime)
	return d.writeConfig(d.cfg.Encode())
}

// Measure triggers a conversion, waits ConversionTime and reads both
// results.
func (d *Dev) Measure() (RawSample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.d.Tx([]byte{RegTemperature}, nil); err != nil {
		return RawSample{}, fmt.Errorf("hdc1080: trigger %w", err)
	}
	d.sleep(ConversionTime)
	var r RawSample
	if err := d.d.Tx(nil, r[:]); err != nil {
		return RawSample{}, fmt.Errorf("hdc1080: read %w", err)
	}
	return r, nil
}

// Read measures and returns the temperature in °C and the humidity in whole
// percent.
func (d *Dev) Read() (float64, uint8, error) {
	r, err := d.Measure()
	if err != nil {
		return 0, 0, err
	}
	s := Convert(r)
	return s.Temperature, s.Humidity, nil
}

// Sense reads temperature and humidity from the device and writes the value
// to the specified env variable. Implements physic.SenseEnv.
func (d *Dev) Sense(env *physic.Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	r, err := d.Measure()
	if err != nil {
		return err
	}
	env.Temperature = r.Temperature()
	env.Humidity = r.Humidity()
	return nil
}

// SenseContinuous continuously reads from the device and writes the value
// to the returned channel. Implements physic.SenseEnv. To terminate the
// continuous read, call Halt().
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	return d.continuous.start(interval, d.Sense)
}

// Precision returns the step between two consecutive readings at the
// configured resolution. Implements physic.SenseEnv.
func (d *Dev) Precision(env *physic.Env) {
	d.mu.Lock()
	defer d.mu.Unlock()
	precision(d.cfg, env)
}

// Halt stops a SenseContinuous loop. The sensor itself sleeps between
// conversions. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.continuous.halt()
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("hdc1080: %s", d.d.String())
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
