// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"time"

	"github.com/GermanBionicSystems/hdc1080/usci"
)

// Opts holds the configuration options for the device.
type Opts struct {
	Temperature TemperatureResolution
	Humidity    HumidityResolution
	Heater      bool

	// Budget bounds every polled wait of an Engine. 0 means
	// usci.DefaultBudget. Dev ignores it.
	Budget usci.Budget
	// Tick is called by an Engine after each poll that found a flag not
	// ready. nil spins.
	Tick func()
	// Sleep waits out ConversionTime. nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOpts is 14 bit resolution on both channels with the heater bit set.
var DefaultOpts = Opts{
	Temperature: Temperature14Bit,
	Humidity:    Humidity14Bit,
	Heater:      true,
}

func (o *Opts) config() Config {
	return Config{Temperature: o.Temperature, Humidity: o.Humidity, Heater: o.Heater}
}

func (o *Opts) sleep() func(time.Duration) {
	if o.Sleep == nil {
		return time.Sleep
	}
	return o.Sleep
}
