// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// hdc1080 reads an HDC1080 at a fixed cadence and prints the readings.
//
// By default the sensor is reached through a periph.io I²C bus. With -usci
// the driver polls a memory-mapped USCI_B controller directly.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/hdc1080/hdc1080"
	"github.com/GermanBionicSystems/hdc1080/readout"
	"github.com/GermanBionicSystems/hdc1080/usci"
)

// sensor is what the loop needs from either driver.
type sensor interface {
	Read() (float64, uint8, error)
	Halt() error
	String() string
}

type config struct {
	busName  string
	hz       physic.Frequency
	usciBase string
	budget   uint
	interval time.Duration
	count    int
	tres     int
	hres     int
	heater   bool
	led      string
	ansi     bool
	png      string
	verbose  bool
}

func parseFlags() (*config, error) {
	c := &config{}
	flag.StringVar(&c.busName, "bus", "", "I²C bus to use")
	flag.Var(&c.hz, "hz", "I²C bus speed (may require root)")
	flag.StringVar(&c.usciBase, "usci", "", "physical address of a USCI_B controller to drive directly, e.g. 0x05e0")
	flag.UintVar(&c.budget, "budget", uint(usci.DefaultBudget), "polls per wait with -usci")
	flag.DurationVar(&c.interval, "interval", 500*time.Millisecond, "time between readings")
	flag.IntVar(&c.count, "n", 0, "number of readings, 0 for no limit")
	flag.IntVar(&c.tres, "tres", 14, "temperature resolution in bits: 11 or 14")
	flag.IntVar(&c.hres, "hres", 14, "humidity resolution in bits: 8, 11 or 14")
	flag.BoolVar(&c.heater, "heater", true, "set the heater bit")
	flag.StringVar(&c.led, "led", "", "GPIO to toggle after every reading")
	flag.BoolVar(&c.ansi, "ansi", false, "draw a humidity bar instead of text lines")
	flag.StringVar(&c.png, "png", "", "render the last reading to this PNG file")
	flag.BoolVar(&c.verbose, "v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return nil, errors.New("unexpected argument, try -help")
	}
	return c, nil
}

func (c *config) opts() (*hdc1080.Opts, error) {
	opts := hdc1080.Opts{Heater: c.heater, Budget: usci.Budget(c.budget)}
	switch c.tres {
	case 14:
		opts.Temperature = hdc1080.Temperature14Bit
	case 11:
		opts.Temperature = hdc1080.Temperature11Bit
	default:
		return nil, fmt.Errorf("invalid -tres %d", c.tres)
	}
	switch c.hres {
	case 14:
		opts.Humidity = hdc1080.Humidity14Bit
	case 11:
		opts.Humidity = hdc1080.Humidity11Bit
	case 8:
		opts.Humidity = hdc1080.Humidity8Bit
	default:
		return nil, fmt.Errorf("invalid -hres %d", c.hres)
	}
	return &opts, nil
}

// open returns the sensor and a function releasing what open acquired.
func open(c *config, opts *hdc1080.Opts) (sensor, func() error, error) {
	if c.usciBase != "" {
		base, err := strconv.ParseUint(c.usciBase, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid -usci: %w", err)
		}
		p, err := usci.Map(base)
		if err != nil {
			return nil, nil, err
		}
		e, err := hdc1080.NewEngine(p, opts)
		if err != nil {
			_ = p.Close()
			return nil, nil, err
		}
		return e, p.Close, nil
	}

	b, err := i2creg.Open(c.busName)
	if err != nil {
		return nil, nil, err
	}
	if c.hz != 0 {
		if err := b.SetSpeed(c.hz); err != nil {
			_ = b.Close()
			return nil, nil, err
		}
	}
	d, err := hdc1080.NewI2C(b, opts)
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	if id, err := d.Identity(); err != nil {
		log.WithError(err).Warn("could not identify sensor")
	} else {
		log.WithField("serial", fmt.Sprintf("0x%011x", id.SerialNumber)).Info("found HDC1080")
	}
	return d, b.Close, nil
}

// display shows readings either as text lines or as a bar.
type display struct {
	w   io.Writer
	bar *readout.Bar
}

func (d *display) show(s hdc1080.Sample) error {
	if d.bar != nil {
		return d.bar.Write(s)
	}
	_, err := io.WriteString(d.w, readout.Line(s))
	return err
}

func (d *display) halt() error {
	if d.bar != nil {
		return d.bar.Halt()
	}
	return nil
}

func run(c *config, s sensor, led gpio.PinIO, out *display) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	t := time.NewTicker(c.interval)
	defer t.Stop()

	level := gpio.Low
	var last *hdc1080.Sample
loop:
	for i := 0; c.count == 0 || i < c.count; i++ {
		if i != 0 {
			select {
			case <-sig:
				log.Info("interrupted")
				break loop
			case <-t.C:
			}
		}
		temperature, humidity, err := s.Read()
		if err != nil {
			// Keep going: the next reading may succeed.
			log.WithError(err).WithField("sensor", s.String()).Error("reading failed")
		} else {
			sample := hdc1080.Sample{Temperature: temperature, Humidity: humidity}
			last = &sample
			log.WithFields(log.Fields{"temperature": temperature, "humidity": humidity}).Debug("reading")
			if err := out.show(sample); err != nil {
				return err
			}
		}
		if led != nil {
			level = !level
			if err := led.Out(level); err != nil {
				return err
			}
		}
	}
	if c.png != "" && last != nil {
		if err := readout.SavePNG(c.png, *last, 128, 64); err != nil {
			return err
		}
		log.WithField("file", c.png).Info("saved reading")
	}
	return nil
}

func mainImpl() error {
	c, err := parseFlags()
	if err != nil {
		return err
	}
	log.SetOutput(os.Stderr)
	if c.verbose {
		log.SetLevel(log.DebugLevel)
	}
	opts, err := c.opts()
	if err != nil {
		return err
	}
	if _, err := host.Init(); err != nil {
		return err
	}

	var led gpio.PinIO
	if c.led != "" {
		if led = gpioreg.ByName(c.led); led == nil {
			return fmt.Errorf("invalid GPIO %q", c.led)
		}
	}

	s, closer, err := open(c, opts)
	if err != nil {
		return err
	}
	defer closer()
	log.WithFields(log.Fields{"sensor": s.String(), "interval": c.interval}).Info("starting")

	out := &display{w: os.Stdout}
	if c.ansi {
		out.bar = readout.NewBar(nil)
	}
	err = run(c, s, led, out)
	if err2 := out.halt(); err == nil {
		err = err2
	}
	if err2 := s.Halt(); err == nil {
		err = err2
	}
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "hdc1080: %s.\n", err)
		os.Exit(1)
	}
}
