// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package remotegpio

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"

	"github.com/GermanBionicSystems/webiopi"
	"github.com/GermanBionicSystems/webiopi/webiopitest"
)

func TestPin_out(t *testing.T) {
	ctx := context.Background()
	sim := webiopitest.New(nil)
	defer sim.Close()
	p := New(sim, 17, nil)

	if got := p.Name(); got != "WEBIOPI_GPIO17" {
		t.Errorf("Name() = %q", got)
	}
	if p.Number() != 17 || p.String() != p.Name() {
		t.Errorf("Number() = %d, String() = %q", p.Number(), p.String())
	}
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if f, _ := sim.Function(ctx, 17); f != webiopi.Out {
		t.Errorf("remote function = %s, want Out", f)
	}
	if p.Read() != gpio.High {
		t.Error("Read() = Low after Out(High)")
	}
	if err := p.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if v, _ := sim.Value(ctx, 17); v != 0 {
		t.Errorf("remote value = %d, want 0", v)
	}
	if p.Func() != gpio.OUT || p.Function() != string(gpio.OUT) {
		t.Errorf("Func() = %s", p.Func())
	}
}

func TestPin_in(t *testing.T) {
	ctx := context.Background()
	sim := webiopitest.New(nil)
	defer sim.Close()
	p := New(sim, 4, &Opts{Prefix: "GARAGE_"})

	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := p.In(gpio.Float, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if f, _ := sim.Function(ctx, 4); f != webiopi.In {
		t.Errorf("remote function = %s, want In", f)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); !errors.Is(err, ErrUnsupportedPull) {
		t.Errorf("In(PullUp) = %v", err)
	}
	if err := p.In(gpio.PullNoChange, gpio.RisingEdge); !errors.Is(err, ErrUnsupportedEdge) {
		t.Errorf("In(RisingEdge) = %v", err)
	}
	if p.WaitForEdge(0) {
		t.Error("WaitForEdge() = true")
	}
	if p.Pull() != gpio.PullNoChange || p.DefaultPull() != gpio.PullNoChange {
		t.Error("unexpected pull")
	}
	if p.Name() != "GARAGE_4" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestPin_pwm(t *testing.T) {
	ctx := context.Background()
	sim := webiopitest.New(nil)
	defer sim.Close()
	p := New(sim, 18, nil)

	if err := p.PWM(gpio.DutyHalf, physic.KiloHertz); err != nil {
		t.Fatal(err)
	}
	if f, _ := sim.Function(ctx, 18); f != webiopi.PWM {
		t.Errorf("remote function = %s, want PWM", f)
	}
	if p.Func() != gpio.PWM {
		t.Errorf("Func() = %s", p.Func())
	}
	if err := p.PWM(gpio.DutyMax+1, 0); err == nil {
		t.Error("PWM() accepted a duty above DutyMax")
	}
}

func TestPin_funcs(t *testing.T) {
	sim := webiopitest.New(nil)
	defer sim.Close()
	p := New(sim, 22, nil)

	if diff := cmp.Diff(p.SupportedFuncs(), []pin.Func{gpio.IN, gpio.OUT, gpio.PWM}); diff != "" {
		t.Errorf("SupportedFuncs() difference (-got +want):\n%s", diff)
	}
	for _, f := range p.SupportedFuncs() {
		if err := p.SetFunc(f); err != nil {
			t.Fatal(err)
		}
		if got := p.Func(); got != f {
			t.Errorf("Func() = %s, want %s", got, f)
		}
	}
	if err := p.SetFunc("I2C1_SDA"); err == nil {
		t.Error("SetFunc(I2C1_SDA) succeeded")
	}
	if err := sim.Set(22, "ALT0", 0); err != nil {
		t.Fatal(err)
	}
	if got := p.Func(); got != pin.FuncNone {
		t.Errorf("Func() = %s, want FuncNone", got)
	}
	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := p.Func(); got != gpio.IN {
		t.Errorf("Func() after Halt = %s", got)
	}
}

func TestPin_unreachable(t *testing.T) {
	sim := webiopitest.New(nil)
	p := New(sim, 5, nil)
	sim.Close()

	if p.Read() != gpio.Low {
		t.Error("Read() = High on a closed device")
	}
	if p.Func() != pin.FuncNone {
		t.Errorf("Func() = %s", p.Func())
	}
	if err := p.Out(gpio.High); !errors.Is(err, webiopi.ErrClosed) {
		t.Errorf("Out() = %v, want ErrClosed", err)
	}
}

func TestRegister(t *testing.T) {
	sim := webiopitest.New(nil)
	defer sim.Close()

	pins, err := Register(sim, []int{23, 24}, &Opts{Prefix: "REGTEST_"})
	if err != nil {
		t.Fatal(err)
	}
	defer Unregister(pins)
	if len(pins) != 2 {
		t.Fatalf("got %d pins", len(pins))
	}
	p := gpioreg.ByName("REGTEST_24")
	if p == nil {
		t.Fatal("REGTEST_24 is not registered")
	}
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if v, _ := sim.Value(context.Background(), 24); v != 1 {
		t.Errorf("remote value = %d", v)
	}

	// A duplicate name rolls back the whole call.
	if _, err := Register(sim, []int{25, 23}, &Opts{Prefix: "REGTEST_"}); err == nil {
		t.Fatal("Register() accepted a duplicate name")
	}
	if gpioreg.ByName("REGTEST_25") != nil {
		t.Error("REGTEST_25 left registered after a failed Register()")
	}
	if _, err := Register(sim, []int{-1}, nil); !errors.Is(err, webiopi.ErrInvalidArgument) {
		t.Errorf("Register(-1) = %v", err)
	}
}
