// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopi

import (
	"fmt"
	"strings"
)

// Function is a pin mode a client can request.
//
// It is distinct from PinDetails.Function, which holds whatever token the
// device reports.
type Function int

const (
	Unknown Function = iota
	In
	Out
	PWM
)

var functionToToken = map[Function]string{
	In:  "in",
	Out: "out",
	PWM: "pwm",
}

var tokenToFunction = map[string]Function{
	"in":  In,
	"out": Out,
	"pwm": PWM,
}

// ParseFunction maps a device token onto a Function.
//
// Matching ignores case and surrounding white space. Tokens other than "in",
// "out" and "pwm", such as "ALT0", map to Unknown.
func ParseFunction(s string) Function {
	if f, ok := tokenToFunction[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return Unknown
}

// Token returns the token used in "POST /GPIO/{n}/function/{token}".
func (f Function) Token() (string, error) {
	if t, ok := functionToToken[f]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: function %s can't be set", ErrInvalidArgument, f)
}

func (f Function) String() string {
	switch f {
	case Unknown:
		return "Unknown"
	case In:
		return "In"
	case Out:
		return "Out"
	case PWM:
		return "PWM"
	default:
		return fmt.Sprintf("Function(%d)", int(f))
	}
}
