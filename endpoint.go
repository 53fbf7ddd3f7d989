// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopi

import (
	"context"
	"io"
)

// Endpoint is a WebIOPi device.
//
// Each method is a single request/response round trip. Arguments are checked
// with the Validate functions before anything is sent.
type Endpoint interface {
	// Function returns the mode of pin.
	Function(ctx context.Context, pin int) (Function, error)
	// SetFunction changes the mode of pin and returns the new mode.
	SetFunction(ctx context.Context, pin int, f Function) (Function, error)
	// Value returns the level of pin.
	Value(ctx context.Context, pin int) (int, error)
	// SetValue drives pin and returns the new level.
	SetValue(ctx context.Context, pin, value int) (int, error)
	// Pulse outputs a single pulse on pin and returns its level.
	Pulse(ctx context.Context, pin int) (int, error)
	// PulseRatio outputs a PWM duty cycle in [0.0, 1.0] on pin.
	PulseRatio(ctx context.Context, pin int, ratio float64) (string, error)
	// PulseAngle outputs a servo angle in [-45, 45] degrees on pin.
	PulseAngle(ctx context.Context, pin, angle int) (string, error)
	// Sequence outputs bits on pin, waiting period milliseconds between bits.
	Sequence(ctx context.Context, pin, period int, bits string) (int, error)
	// RunMacro calls a server side macro and returns its result.
	RunMacro(ctx context.Context, name string, args ...string) (string, error)
	// RawState returns the status document, see Decode.
	RawState(ctx context.Context) ([]byte, error)

	io.Closer
}

// ReadState fetches the status document from e and decodes it.
func ReadState(ctx context.Context, e Endpoint) (*DeviceState, error) {
	raw, err := e.RawState(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}
