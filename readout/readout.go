// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package readout formats HDC1080 samples for people: as the classic serial
// console line, as an ANSI colored bar on a terminal, or as an image for a
// display.
package readout

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/hdc1080/hdc1080"
)

// Line returns s as printed on the serial console.
func Line(s hdc1080.Sample) string {
	return fmt.Sprintf("Temp = %5.2f  Humi = %02d\r\n", s.Temperature, s.Humidity)
}

// BarOpts represents the options available for a Bar.
type BarOpts struct {
	// W receives the output. nil means a colorable stdout.
	W io.Writer
	// Width is the number of cells of the humidity gauge. 0 means 50.
	Width   int
	Palette *ansi256.Palette
}

// Bar redraws a humidity gauge followed by the temperature on a single
// terminal line.
type Bar struct {
	w       io.Writer
	width   int
	palette ansi256.Palette
	buf     bytes.Buffer
}

// NewBar returns a Bar. The Opts can be nil.
func NewBar(opts *BarOpts) *Bar {
	if opts == nil {
		opts = &BarOpts{}
	}
	b := &Bar{w: opts.W, width: opts.Width}
	if b.w == nil {
		b.w = colorable.NewColorableStdout()
	}
	if b.width <= 0 {
		b.width = 50
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	b.palette = *p
	return b
}

// Write redraws the line for s.
func (b *Bar) Write(s hdc1080.Sample) error {
	b.buf.Reset()
	_, _ = b.buf.WriteString("\r\033[0m")
	filled := int(s.Humidity) * b.width / 100
	wet := humidityColor(s.Humidity)
	dry := color.NRGBA{0x20, 0x20, 0x20, 0xff}
	for i := 0; i < b.width; i++ {
		c := dry
		if i < filled {
			c = wet
		}
		_, _ = io.WriteString(&b.buf, b.palette.Block(c))
	}
	_, _ = fmt.Fprintf(&b.buf, "\033[0m %3d%%  %6.2f°C ", s.Humidity, s.Temperature)
	_, err := b.buf.WriteTo(b.w)
	return err
}

// Halt resets the terminal colors and ends the line.
func (b *Bar) Halt() error {
	_, err := b.w.Write([]byte("\n\033[0m"))
	return err
}

func (b *Bar) String() string {
	return "readout.Bar"
}

// humidityColor goes from sand at 0% to deep blue at 100%.
func humidityColor(h uint8) color.NRGBA {
	f := float64(h) / 100
	return color.NRGBA{
		R: uint8(0xe0 * (1 - f)),
		G: uint8(0xc0*(1-f) + 0x40*f),
		B: uint8(0x60*(1-f) + 0xff*f),
		A: 0xff,
	}
}

// Render draws s on a white w by h image: temperature on top, humidity below
// with a gauge along the bottom edge.
func Render(s hdc1080.Sample, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("readout: invalid image size %dx%d", w, h)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("readout: %w", err)
	}
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	gauge := float64(h) / 8
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: float64(h) / 4}))
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f°C", s.Temperature), float64(w)/2, float64(h)/4, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%d%% RH", s.Humidity), float64(w)/2, float64(h)*5/8, 0.5, 0.5)

	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, float64(h)-gauge-0.5, float64(w)-1, gauge)
	dc.Stroke()
	c := humidityColor(s.Humidity)
	dc.SetColor(c)
	dc.DrawRectangle(1, float64(h)-gauge, (float64(w)-2)*float64(s.Humidity)/100, gauge-1)
	dc.Fill()
	return dc.Image(), nil
}

// SavePNG renders s and writes it to path.
func SavePNG(path string, s hdc1080.Sample, w, h int) error {
	img, err := Render(s, w, h)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
