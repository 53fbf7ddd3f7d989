// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package remotegpio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"

	"github.com/GermanBionicSystems/webiopi"
)

var (
	ErrUnsupportedPull = errors.New("remotegpio: only Float and PullNoChange are supported")
	ErrUnsupportedEdge = errors.New("remotegpio: edge detection is not supported")
)

// DefaultPrefix is prepended to the pin number to build the pin name.
const DefaultPrefix = "WEBIOPI_GPIO"

// DefaultTimeout bounds each call to the device.
const DefaultTimeout = 5 * time.Second

// Opts configures the pins returned by New and Register.
type Opts struct {
	// Prefix of the pin name. Defaults to DefaultPrefix.
	Prefix string
	// Timeout of each call to the device. Defaults to DefaultTimeout.
	Timeout time.Duration

	_ struct{}
}

// Pin is a pin of a remote WebIOPi device.
type Pin struct {
	e       webiopi.Endpoint
	number  int
	name    string
	timeout time.Duration
}

// New returns the pin number of the device e. opts may be nil.
func New(e webiopi.Endpoint, number int, opts *Opts) *Pin {
	p := &Pin{e: e, number: number, name: DefaultPrefix + strconv.Itoa(number), timeout: DefaultTimeout}
	if opts != nil {
		if opts.Prefix != "" {
			p.name = opts.Prefix + strconv.Itoa(number)
		}
		if opts.Timeout > 0 {
			p.timeout = opts.Timeout
		}
	}
	return p
}

// Register creates the pins numbers of e and registers them in gpioreg.
//
// On failure, the pins already registered are unregistered.
func Register(e webiopi.Endpoint, numbers []int, opts *Opts) ([]*Pin, error) {
	pins := make([]*Pin, 0, len(numbers))
	for _, n := range numbers {
		if err := webiopi.ValidatePin(n); err != nil {
			_ = Unregister(pins)
			return nil, err
		}
		p := New(e, n, opts)
		if err := gpioreg.Register(p); err != nil {
			_ = Unregister(pins)
			return nil, fmt.Errorf("remotegpio: %w", err)
		}
		pins = append(pins, p)
	}
	return pins, nil
}

// Unregister removes pins from gpioreg.
func Unregister(pins []*Pin) error {
	var errs []error
	for _, p := range pins {
		if err := gpioreg.Unregister(p.name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pin) String() string {
	return p.name
}

// Halt implements conn.Resource.
//
// It sets the pin as input, which stops any drive.
func (p *Pin) Halt() error {
	return p.In(gpio.Float, gpio.NoEdge)
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return p.name
}

// Number implements pin.Pin.
//
// It is the BCM number on the remote device.
func (p *Pin) Number() int {
	return p.number
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return string(p.Func())
}

// Func implements pin.PinFunc.
//
// ALT functions and errors return pin.FuncNone.
func (p *Pin) Func() pin.Func {
	ctx, cancel := p.ctx()
	defer cancel()
	f, err := p.e.Function(ctx, p.number)
	if err != nil {
		return pin.FuncNone
	}
	switch f {
	case webiopi.In:
		return gpio.IN
	case webiopi.Out:
		return gpio.OUT
	case webiopi.PWM:
		return gpio.PWM
	default:
		return pin.FuncNone
	}
}

// SupportedFuncs implements pin.PinFunc.
func (p *Pin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

// SetFunc implements pin.PinFunc.
func (p *Pin) SetFunc(f pin.Func) error {
	var w webiopi.Function
	switch f {
	case gpio.IN:
		w = webiopi.In
	case gpio.OUT:
		w = webiopi.Out
	case gpio.PWM:
		w = webiopi.PWM
	default:
		return errors.New("remotegpio: function not supported: " + string(f))
	}
	return p.setFunction(w)
}

// In implements gpio.PinIn.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	if pull != gpio.Float && pull != gpio.PullNoChange {
		return ErrUnsupportedPull
	}
	if edge != gpio.NoEdge {
		return ErrUnsupportedEdge
	}
	return p.setFunction(webiopi.In)
}

// Read implements gpio.PinIn.
//
// It returns gpio.Low when the device can't be reached.
func (p *Pin) Read() gpio.Level {
	ctx, cancel := p.ctx()
	defer cancel()
	v, err := p.e.Value(ctx, p.number)
	if err != nil || v == 0 {
		return gpio.Low
	}
	return gpio.High
}

// WaitForEdge implements gpio.PinIn. It always returns false.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull implements gpio.PinIn.
func (p *Pin) Pull() gpio.Pull {
	return gpio.PullNoChange
}

// DefaultPull implements gpio.PinIn.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	if err := p.setFunction(webiopi.Out); err != nil {
		return err
	}
	v := 0
	if l {
		v = 1
	}
	ctx, cancel := p.ctx()
	defer cancel()
	if _, err := p.e.SetValue(ctx, p.number, v); err != nil {
		return fmt.Errorf("remotegpio: %s: %w", p.name, err)
	}
	return nil
}

// PWM implements gpio.PinOut.
//
// The frequency is ignored, WebIOPi only accepts a duty ratio.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	if duty < 0 || duty > gpio.DutyMax {
		return fmt.Errorf("remotegpio: %s: invalid duty %s", p.name, duty)
	}
	ctx, cancel := p.ctx()
	defer cancel()
	if _, err := p.e.PulseRatio(ctx, p.number, float64(duty)/float64(gpio.DutyMax)); err != nil {
		return fmt.Errorf("remotegpio: %s: %w", p.name, err)
	}
	return nil
}

//

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT, gpio.PWM}

func (p *Pin) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), p.timeout)
}

func (p *Pin) setFunction(f webiopi.Function) error {
	ctx, cancel := p.ctx()
	defer cancel()
	if _, err := p.e.SetFunction(ctx, p.number, f); err != nil {
		return fmt.Errorf("remotegpio: %s: %w", p.name, err)
	}
	return nil
}

var _ gpio.PinIO = &Pin{}
var _ pin.PinFunc = &Pin{}
