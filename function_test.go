// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopi

import (
	"errors"
	"testing"
)

func TestParseFunction(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Function
	}{
		{"in", In},
		{"IN", In},
		{"Out", Out},
		{"out\n", Out},
		{"pwm", PWM},
		{"PWM", PWM},
		{"ALT0", Unknown},
		{"ALT3", Unknown},
		{"", Unknown},
	} {
		if got := ParseFunction(tc.in); got != tc.want {
			t.Errorf("ParseFunction(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestFunction_Token(t *testing.T) {
	for f, want := range map[Function]string{In: "in", Out: "out", PWM: "pwm"} {
		got, err := f.Token()
		if err != nil {
			t.Errorf("%s.Token() failed: %v", f, err)
		}
		if got != want {
			t.Errorf("%s.Token() = %q, want %q", f, got, want)
		}
		if ParseFunction(got) != f {
			t.Errorf("ParseFunction(%q) != %s", got, f)
		}
	}
	for _, f := range []Function{Unknown, Function(42)} {
		if _, err := f.Token(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s.Token() = %v, want ErrInvalidArgument", f, err)
		}
	}
}

func TestFunction_String(t *testing.T) {
	for f, want := range map[Function]string{
		Unknown:      "Unknown",
		In:           "In",
		Out:          "Out",
		PWM:          "PWM",
		Function(-2): "Function(-2)",
	} {
		if got := f.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
