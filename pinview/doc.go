// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pinview renders a webiopi.DeviceState for humans.
//
// Terminal draws one line of ANSI 256 colour blocks per state, which is handy
// to watch a device. Image draws a header diagram that can be saved as PNG.
//
// Colours:
//
//	OUT high   green
//	OUT low    dark green
//	IN high    blue
//	IN low     dark blue
//	PWM        yellow
//	other      grey (ALTn and unknown functions)
package pinview
