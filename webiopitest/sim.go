// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopitest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/GermanBionicSystems/webiopi"
)

// MacroFunc implements a simulated macro.
type MacroFunc func(args ...string) (string, error)

// Opts configures a Sim.
type Opts struct {
	// Pins lists the pins that accept operations. Defaults to 2 through 27,
	// the pins of the 40 pin header.
	Pins []int
	// Interface enable flags reported in the status document.
	UART0 bool
	I2C0  bool
	I2C1  bool
	SPI0  bool
	// Macros are called by RunMacro. Names that are not present return
	// "macro run".
	Macros map[string]MacroFunc

	_ struct{}
}

// DefaultPins returns the pins a Sim accepts by default.
func DefaultPins() []int {
	out := make([]int, 0, 26)
	for i := 2; i < 28; i++ {
		out = append(out, i)
	}
	return out
}

type simPin struct {
	function string
	value    int
	open     bool
}

// Sim is a simulated WebIOPi device that implements webiopi.Endpoint.
//
// Every pin starts as "IN" with value 0. It is safe for concurrent use.
type Sim struct {
	mu     sync.Mutex
	flags  webiopi.Flags
	macros map[string]MacroFunc
	pins   []simPin
}

// New returns a simulated device. opts may be nil.
func New(opts *Opts) *Sim {
	if opts == nil {
		opts = &Opts{}
	}
	s := &Sim{
		flags:  webiopi.Flags{UART0: opts.UART0, I2C0: opts.I2C0, I2C1: opts.I2C1, SPI0: opts.SPI0},
		macros: map[string]MacroFunc{},
		pins:   make([]simPin, webiopi.PinCount),
	}
	for name, m := range opts.Macros {
		s.macros[name] = m
	}
	for i := range s.pins {
		s.pins[i] = simPin{function: "IN"}
	}
	open := opts.Pins
	if open == nil {
		open = DefaultPins()
	}
	for _, n := range open {
		if n >= 0 && n < len(s.pins) {
			s.pins[n].open = true
		}
	}
	return s
}

func (s *Sim) String() string {
	return "webiopitest.Sim"
}

// Set overrides the reported function token and value of any pin in
// [0, webiopi.PinCount), including pins that don't accept operations.
//
// It is meant to inject device tokens such as "ALT0".
func (s *Sim) Set(pin int, function string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pins == nil {
		return webiopi.ErrClosed
	}
	if pin < 0 || pin >= len(s.pins) {
		return &webiopi.PinNotFoundError{Number: pin}
	}
	s.pins[pin].function = function
	s.pins[pin].value = value
	return nil
}

// Function implements webiopi.Endpoint.
func (s *Sim) Function(ctx context.Context, pin int) (webiopi.Function, error) {
	var f webiopi.Function
	err := s.withPin(ctx, pin, func(p *simPin) error {
		f = webiopi.ParseFunction(p.function)
		return nil
	})
	return f, err
}

// SetFunction implements webiopi.Endpoint.
func (s *Sim) SetFunction(ctx context.Context, pin int, f webiopi.Function) (webiopi.Function, error) {
	token, err := f.Token()
	if err != nil {
		return webiopi.Unknown, err
	}
	var got webiopi.Function
	err = s.withPin(ctx, pin, func(p *simPin) error {
		p.function = strings.ToUpper(token)
		got = webiopi.ParseFunction(p.function)
		return nil
	})
	return got, err
}

// Value implements webiopi.Endpoint.
func (s *Sim) Value(ctx context.Context, pin int) (int, error) {
	var v int
	err := s.withPin(ctx, pin, func(p *simPin) error {
		v = p.value
		return nil
	})
	return v, err
}

// SetValue implements webiopi.Endpoint.
func (s *Sim) SetValue(ctx context.Context, pin, value int) (int, error) {
	var v int
	err := s.withPin(ctx, pin, func(p *simPin) error {
		p.value = value
		v = p.value
		return nil
	})
	return v, err
}

// Pulse implements webiopi.Endpoint.
//
// Nothing is pulsed; the current value is returned.
func (s *Sim) Pulse(ctx context.Context, pin int) (int, error) {
	return s.Value(ctx, pin)
}

// PulseRatio implements webiopi.Endpoint.
func (s *Sim) PulseRatio(ctx context.Context, pin int, ratio float64) (string, error) {
	if err := webiopi.ValidateRatio(ratio); err != nil {
		return "", err
	}
	err := s.withPin(ctx, pin, func(p *simPin) error {
		p.function = "PWM"
		return nil
	})
	if err != nil {
		return "", err
	}
	return webiopi.FormatRatio(ratio), nil
}

// PulseAngle implements webiopi.Endpoint.
func (s *Sim) PulseAngle(ctx context.Context, pin, angle int) (string, error) {
	if err := webiopi.ValidateAngle(angle); err != nil {
		return "", err
	}
	err := s.withPin(ctx, pin, func(p *simPin) error {
		p.function = "PWM"
		return nil
	})
	if err != nil {
		return "", err
	}
	return strconv.Itoa(angle), nil
}

// Sequence implements webiopi.Endpoint.
//
// The pin is left at the last bit, which is returned.
func (s *Sim) Sequence(ctx context.Context, pin, period int, bits string) (int, error) {
	if err := webiopi.ValidateSequence(period, bits); err != nil {
		return 0, err
	}
	var v int
	err := s.withPin(ctx, pin, func(p *simPin) error {
		p.function = "OUT"
		p.value = int(bits[len(bits)-1] - '0')
		v = p.value
		return nil
	})
	return v, err
}

// RunMacro implements webiopi.Endpoint.
func (s *Sim) RunMacro(ctx context.Context, name string, args ...string) (string, error) {
	if err := webiopi.ValidateMacro(name, args...); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.pins == nil {
		s.mu.Unlock()
		return "", webiopi.ErrClosed
	}
	m := s.macros[name]
	s.mu.Unlock()
	if m == nil {
		return "macro run", nil
	}
	// Called unlocked so a macro can drive the simulated pins.
	return m(args...)
}

// RawState implements webiopi.Endpoint.
func (s *Sim) RawState(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pins == nil {
		return nil, webiopi.ErrClosed
	}
	pins := make([]webiopi.PinDetails, len(s.pins))
	for i, p := range s.pins {
		pins[i] = webiopi.PinDetails{Number: i, Function: p.function, Value: p.value}
	}
	return webiopi.Encode(s.flags, pins)
}

// Close implements webiopi.Endpoint.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = nil
	return nil
}

// withPin calls fn with pin locked.
func (s *Sim) withPin(ctx context.Context, pin int, fn func(p *simPin) error) error {
	if err := webiopi.ValidatePin(pin); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pins == nil {
		return webiopi.ErrClosed
	}
	if pin >= len(s.pins) || !s.pins[pin].open {
		return &webiopi.PinNotFoundError{Number: pin}
	}
	return fn(&s.pins[pin])
}

var _ webiopi.Endpoint = &Sim{}
var _ fmt.Stringer = &Sim{}
