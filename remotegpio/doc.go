// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package remotegpio exposes the pins of a WebIOPi device as periph
// gpio.PinIO.
//
// Each call is a network round trip to the device. Edge detection and pull
// resistors are not available remotely.
package remotegpio
