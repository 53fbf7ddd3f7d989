// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/webiopi"
	"github.com/GermanBionicSystems/webiopi/pinview"
	"github.com/GermanBionicSystems/webiopi/remotegpio"
	"github.com/GermanBionicSystems/webiopi/webiopireg"
	"github.com/GermanBionicSystems/webiopi/webiopitest"
)

const commandsHelp = `commands:
  status [device...]              flags and pin summary of each device
  function <pin> [in|out|pwm]     read or set a pin function
  value <pin> [0|1]               read or set a pin value
  pulse <pin>                     pulse a pin
  ratio <pin> <0..1>              set a PWM duty ratio
  angle <pin> <-45..45>           set a servo angle
  sequence <pin> <period> <bits>  output a bit sequence
  macro <name> [arg...]           run a server side macro
  raw                             print the status document
  watch                           draw the pins until interrupted
  render <file.png>               save a diagram of the pins
  mirror <remote-pin> <local-pin> copy a remote input to a local pin
  serve                           serve the WebIOPi API, /metrics and /pins.png
`

var errUsage = errors.New("usage")

// runner executes one command.
type runner struct {
	log      zerolog.Logger
	out      io.Writer
	device   string
	interval time.Duration
	addr     string
	user     string
	password string
	allPins  bool
}

func (r *runner) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "status":
		return r.status(ctx, args)
	case "function":
		return r.function(ctx, args)
	case "value":
		return r.value(ctx, args)
	case "pulse":
		return r.pulse(ctx, args)
	case "ratio":
		return r.ratio(ctx, args)
	case "angle":
		return r.angle(ctx, args)
	case "sequence":
		return r.sequence(ctx, args)
	case "macro":
		return r.macro(ctx, args)
	case "raw":
		return r.raw(ctx, args)
	case "watch":
		return r.watch(ctx, args)
	case "render":
		return r.render(ctx, args)
	case "mirror":
		return r.mirror(ctx, args)
	case "serve":
		return r.serve(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (r *runner) status(ctx context.Context, args []string) error {
	names := args
	if len(names) == 0 {
		for _, ref := range webiopireg.All() {
			names = append(names, ref.Name)
		}
	}
	if len(names) == 0 {
		return errors.New("no device configured; use --url or --config")
	}
	states := make([]*webiopi.DeviceState, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			e, err := webiopireg.Open(name)
			if err != nil {
				return err
			}
			defer e.Close()
			st, err := webiopi.ReadState(ctx, e)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			states[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, st := range states {
		fmt.Fprintf(r.out, "%-12s %s\n", names[i], pinview.Summary(st))
		if r.allPins {
			for _, p := range st.Pins() {
				fmt.Fprintf(r.out, "  %s\n", p)
			}
		}
	}
	return nil
}

func (r *runner) function(ctx context.Context, args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return errUsage
	}
	pin, err := parseInt("pin", args[0])
	if err != nil {
		return err
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		var f webiopi.Function
		if len(args) == 1 {
			f, err = e.Function(ctx, pin)
		} else {
			f = webiopi.ParseFunction(args[1])
			if f == webiopi.Unknown {
				return fmt.Errorf("invalid function %q, want in, out or pwm", args[1])
			}
			f, err = e.SetFunction(ctx, pin, f)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, f)
		return nil
	})
}

func (r *runner) value(ctx context.Context, args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return errUsage
	}
	pin, err := parseInt("pin", args[0])
	if err != nil {
		return err
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		var v int
		if len(args) == 1 {
			v, err = e.Value(ctx, pin)
		} else {
			var want int
			if want, err = parseInt("value", args[1]); err != nil {
				return err
			}
			v, err = e.SetValue(ctx, pin, want)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, v)
		return nil
	})
}

func (r *runner) pulse(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	pin, err := parseInt("pin", args[0])
	if err != nil {
		return err
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		v, err := e.Pulse(ctx, pin)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, v)
		return nil
	})
}

func (r *runner) ratio(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	pin, err := parseInt("pin", args[0])
	if err != nil {
		return err
	}
	ratio, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid ratio %q", args[1])
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		out, err := e.PulseRatio(ctx, pin, ratio)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, out)
		return nil
	})
}

func (r *runner) angle(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	pin, err := parseInt("pin", args[0])
	if err != nil {
		return err
	}
	angle, err := parseInt("angle", args[1])
	if err != nil {
		return err
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		out, err := e.PulseAngle(ctx, pin, angle)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, out)
		return nil
	})
}

func (r *runner) sequence(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	pin, err := parseInt("pin", args[0])
	if err != nil {
		return err
	}
	period, err := parseInt("period", args[1])
	if err != nil {
		return err
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		v, err := e.Sequence(ctx, pin, period, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, v)
		return nil
	})
}

func (r *runner) macro(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		out, err := e.RunMacro(ctx, args[0], args[1:]...)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, out)
		return nil
	})
}

func (r *runner) raw(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		b, err := e.RawState(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.out, "%s\n", b)
		return err
	})
}

func (r *runner) watch(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	opts := &pinview.Opts{}
	if r.out != os.Stdout {
		opts.W = r.out
	}
	term := pinview.NewTerminal(opts)
	return r.withDevice(func(e webiopi.Endpoint) error {
		defer term.Halt()
		return r.poll(ctx, func() error {
			st, err := webiopi.ReadState(ctx, e)
			if err != nil {
				return err
			}
			return term.Draw(st)
		})
	})
}

func (r *runner) render(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		st, err := webiopi.ReadState(ctx, e)
		if err != nil {
			return err
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := pinview.WritePNG(f, st); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	})
}

func (r *runner) mirror(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	remote, err := parseInt("remote pin", args[0])
	if err != nil {
		return err
	}
	if _, err := host.Init(); err != nil {
		return err
	}
	dst := gpioreg.ByName(args[1])
	if dst == nil {
		return fmt.Errorf("unknown local pin %q", args[1])
	}
	return r.withDevice(func(e webiopi.Endpoint) error {
		pins, err := remotegpio.Register(e, []int{remote}, nil)
		if err != nil {
			return err
		}
		defer remotegpio.Unregister(pins)
		return mirrorPin(ctx, r, gpioreg.ByName(pins[0].Name()), dst)
	})
}

func (r *runner) serve(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	var e webiopi.Endpoint
	if r.device == "" && len(webiopireg.All()) == 0 {
		r.log.Info().Msg("No device configured, serving a simulated one")
		e = webiopitest.New(nil)
	} else {
		var err error
		if e, err = webiopireg.Open(r.device); err != nil {
			return err
		}
	}
	defer e.Close()

	srv := &http.Server{Addr: r.addr, Handler: r.handler(e)}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.log.Info().Str("address", r.addr).Str("device", fmt.Sprint(e)).Msg("Serving HTTP")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		r.log.Info().Msg("Closing server")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

//

// handler serves the WebIOPi API of e along with /metrics and a diagram of
// the pins at /pins.png.
func (r *runner) handler(e webiopi.Endpoint) http.Handler {
	srv := webiopitest.NewServer(e, &webiopitest.ServerOpts{Username: r.user, Password: r.password})
	srv.Echo().GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	srv.Echo().GET("/pins.png", func(c echo.Context) error {
		st, err := webiopi.ReadState(c.Request().Context(), e)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		var buf bytes.Buffer
		if err := pinview.WritePNG(&buf, st); err != nil {
			return err
		}
		c.Response().Header().Set("Cache-Control", "no-cache, no-store")
		return c.Blob(http.StatusOK, "image/png", buf.Bytes())
	})
	return srv
}

// withDevice opens the selected device, runs fn and closes the device.
func (r *runner) withDevice(fn func(e webiopi.Endpoint) error) error {
	e, err := webiopireg.Open(r.device)
	if err != nil {
		return err
	}
	defer e.Close()
	r.log.Debug().Str("device", fmt.Sprint(e)).Msg("Opened device")
	return fn(e)
}

// poll calls fn immediately and then every interval until ctx is done.
func (r *runner) poll(ctx context.Context, fn func() error) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		if err := fn(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// mirrorPin copies the level of src to dst whenever it changes.
func mirrorPin(ctx context.Context, r *runner, src, dst gpio.PinIO) error {
	if err := src.In(gpio.Float, gpio.NoEdge); err != nil {
		return err
	}
	first := true
	var last gpio.Level
	return r.poll(ctx, func() error {
		l := src.Read()
		if !first && l == last {
			return nil
		}
		first = false
		last = l
		r.log.Info().Str("from", src.Name()).Str("to", dst.Name()).Str("level", l.String()).Msg("Mirroring")
		return dst.Out(l)
	})
}

func parseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}
