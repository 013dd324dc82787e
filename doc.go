// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the HDC1080 humidity and temperature
// sensor driver, the two-wire bus controller it can drive directly, and
// helpers to show its readings.
//
// See the hdc1080, usci and readout packages.
package devices
