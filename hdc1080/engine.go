// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/hdc1080/usci"
)

// ErrBusTimeout is matched by errors.Is when a polled wait ran out of budget.
// An absent sensor never sets the flags and fails the same way.
var ErrBusTimeout = usci.ErrTimeout

// Names of the polled waits of a measurement, reported in usci.TimeoutError.
const (
	stepAddress  = "address"
	stepRegister = "register pointer"
	stepRestart  = "read address"
	stepStop     = "stop"
)

var stepRx = [...]string{"rx byte 0", "rx byte 1", "rx byte 2", "rx byte 3"}

// Engine drives an HDC1080 through a register-level usci.Controller.
//
// Every wait on a controller flag is bounded by Opts.Budget polls and starts
// its own countdown. A transaction always runs to success or to the first
// timeout; it can't be cancelled.
type Engine struct {
	c     usci.Controller
	poll  usci.Poller
	sleep func(time.Duration)

	mu  sync.Mutex
	cfg Config

	continuous
}

// NewEngine writes the configuration from opts to the sensor behind c and
// returns the Engine. The Opts can be nil.
func NewEngine(c usci.Controller, opts *Opts) (*Engine, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	e := &Engine{
		c:     c,
		poll:  usci.Poller{Budget: opts.Budget, Tick: opts.Tick},
		sleep: opts.sleep(),
	}
	if err := e.Configure(opts.config()); err != nil {
		return nil, fmt.Errorf("hdc1080: init %w", err)
	}
	return e, nil
}

// Configure writes cfg to the configuration register:
//
//	[0x40|W] [0x02] [MSB] [LSB] [STOP]
//
// The error from the bus write is returned as is.
func (e *Engine) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	w := cfg.Encode().Bytes()
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := usci.WriteRegister(e.c, &e.poll, Address, RegConfiguration, w[:]); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// Measure triggers a conversion and reads both results back:
//
//	[0x40|W] [0x00] [STOP] ... 14ms ... [0x40|R] [T MSB] [T LSB] [H MSB] [H LSB] [STOP]
//
// On error the returned RawSample is zero.
func (e *Engine) Measure() (RawSample, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var r RawSample
	if err := e.measure(&r); err != nil {
		return RawSample{}, err
	}
	return r, nil
}

func (e *Engine) measure(r *RawSample) error {
	c := e.c
	c.SetTarget(Address)
	c.StartWrite()
	if err := e.poll.Until(stepAddress, c.TxReady); err != nil {
		return err
	}
	// Pointing at the temperature register makes the sensor return both
	// results in one read.
	c.Transmit(RegTemperature)
	if err := e.poll.Until(stepRegister, c.TxReady); err != nil {
		return err
	}
	// This stop starts the conversion.
	c.Stop()
	e.sleep(ConversionTime)

	c.StartRead()
	if err := e.poll.Until(stepRestart, c.TxReady); err != nil {
		return err
	}
	var buf RawSample
	last := len(buf) - 1
	for i := 0; i < last; i++ {
		if err := e.poll.Until(stepRx[i], c.RxReady); err != nil {
			return err
		}
		buf[i] = c.Receive()
	}
	// The stop has to be requested before the last byte is read so it goes
	// out right after it.
	c.Stop()
	if err := e.poll.Until(stepRx[last], c.RxReady); err != nil {
		return err
	}
	buf[last] = c.Receive()
	if err := e.poll.Until(stepStop, func() bool { return !c.StopPending() }); err != nil {
		return err
	}
	*r = buf
	return nil
}

// Read measures and returns the temperature in °C and the humidity in whole
// percent.
func (e *Engine) Read() (float64, uint8, error) {
	r, err := e.Measure()
	if err != nil {
		return 0, 0, err
	}
	s := Convert(r)
	return s.Temperature, s.Humidity, nil
}

// Sense measures temperature and humidity. Implements physic.SenseEnv.
func (e *Engine) Sense(env *physic.Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	r, err := e.Measure()
	if err != nil {
		return fmt.Errorf("hdc1080: %w", err)
	}
	env.Temperature = r.Temperature()
	env.Humidity = r.Humidity()
	return nil
}

// SenseContinuous measures every interval and sends the results on the
// returned channel. Failed measurements are skipped. Call Halt to stop.
// Implements physic.SenseEnv.
func (e *Engine) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	return e.continuous.start(interval, e.Sense)
}

// Precision implements physic.SenseEnv.
func (e *Engine) Precision(env *physic.Env) {
	e.mu.Lock()
	defer e.mu.Unlock()
	precision(e.cfg, env)
}

// Halt stops a SenseContinuous loop. Implements conn.Resource.
func (e *Engine) Halt() error {
	e.continuous.halt()
	return nil
}

func (e *Engine) String() string {
	return fmt.Sprintf("hdc1080: %v", e.c)
}

var _ conn.Resource = &Engine{}
var _ physic.SenseEnv = &Engine{}
