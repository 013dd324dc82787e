// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hdc1080 controls a Texas Instruments HDC1080 humidity and
// temperature sensor over I²C.
//
// Two drivers share the same configuration encoder and unit conversion:
//
// Dev talks to the sensor through a periph.io i2c.Bus, typically on a Linux
// host.
//
// Engine drives a register-level usci.Controller directly, polling the
// controller's flags with a bounded number of iterations per wait. It is
// meant for a bare controller with no bus driver underneath.
//
// Both trigger a combined temperature and humidity acquisition, wait out the
// worst case conversion time and read the two 16 bit results back to back.
//
// Range: -40°C - 125°C, 0 - 100 %RH
//
// Accuracy: +/- 0.2°C, +/- 2 %RH
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/hdc1080.pdf
package hdc1080
