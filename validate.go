// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Limits accepted by the PWM operations.
const (
	MinAngle = -45
	MaxAngle = 45
)

// ValidatePin checks that pin is a usable pin number.
func ValidatePin(pin int) error {
	if pin < 0 {
		return fmt.Errorf("%w: pin %d is negative", ErrInvalidArgument, pin)
	}
	return nil
}

// ValidateRatio checks that a PWM duty cycle is within [0.0, 1.0].
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return fmt.Errorf("%w: pulse ratio %v out of range [0.0 - 1.0]", ErrInvalidArgument, ratio)
	}
	return nil
}

// ValidateAngle checks that a servo angle is within [MinAngle, MaxAngle].
func ValidateAngle(angle int) error {
	if angle < MinAngle || angle > MaxAngle {
		return fmt.Errorf("%w: pulse angle %d out of range [%d - %d]", ErrInvalidArgument, angle, MinAngle, MaxAngle)
	}
	return nil
}

// ValidateSequence checks the arguments of a bit sequence output.
//
// period is the delay between bits in milliseconds, bits is a non empty
// string of '0' and '1'.
func ValidateSequence(period int, bits string) error {
	if bits == "" {
		return fmt.Errorf("%w: empty bit stream", ErrInvalidArgument)
	}
	if i := strings.IndexFunc(bits, func(r rune) bool { return r != '0' && r != '1' }); i >= 0 {
		return fmt.Errorf("%w: invalid bit sequence %q at offset %d", ErrInvalidArgument, bits, i)
	}
	if period < 0 {
		return fmt.Errorf("%w: delay period %d must be non-negative", ErrInvalidArgument, period)
	}
	return nil
}

// ValidateMacro checks a macro name and its arguments.
func ValidateMacro(name string, args ...string) error {
	if name == "" {
		return fmt.Errorf("%w: empty macro name", ErrInvalidArgument)
	}
	if strings.ContainsRune(name, '/') {
		return fmt.Errorf("%w: macro name %q contains '/'", ErrInvalidArgument, name)
	}
	for _, a := range args {
		if strings.ContainsAny(a, ",/") {
			return fmt.Errorf("%w: macro argument %q contains ',' or '/'", ErrInvalidArgument, a)
		}
	}
	return nil
}

// FormatRatio formats a duty cycle the way it is sent on the wire.
//
// The shortest representation is used, with at least one decimal.
func FormatRatio(ratio float64) string {
	s := strconv.FormatFloat(ratio, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
