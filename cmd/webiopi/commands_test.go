// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/GermanBionicSystems/webiopi"
	"github.com/GermanBionicSystems/webiopi/remotegpio"
	"github.com/GermanBionicSystems/webiopi/webiopireg"
	"github.com/GermanBionicSystems/webiopi/webiopitest"
)

// shared keeps one simulated device alive across commands.
type shared struct {
	webiopi.Endpoint
}

func (shared) Close() error { return nil }

func newRunner(t *testing.T, name string, opts *webiopitest.Opts) (*runner, *webiopitest.Sim, *bytes.Buffer) {
	t.Helper()
	sim := webiopitest.New(opts)
	t.Cleanup(func() { sim.Close() })
	if err := webiopireg.Register(name, nil, func() (webiopi.Endpoint, error) { return shared{sim}, nil }); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = webiopireg.Unregister(name) })
	var buf bytes.Buffer
	r := &runner{
		log:      zerolog.Nop(),
		out:      &buf,
		device:   name,
		interval: 10 * time.Millisecond,
		user:     "webiopi",
		password: "raspberry",
	}
	return r, sim, &buf
}

func TestRunner_commands(t *testing.T) {
	ctx := context.Background()
	r, _, buf := newRunner(t, "cmdtest", nil)

	// Order matters, later commands observe earlier ones.
	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"function", "17"}, "In\n"},
		{[]string{"function", "17", "out"}, "Out\n"},
		{[]string{"function", "17"}, "Out\n"},
		{[]string{"value", "17", "1"}, "1\n"},
		{[]string{"value", "17"}, "1\n"},
		{[]string{"pulse", "17"}, "1\n"},
		{[]string{"ratio", "18", "0.5"}, "0.5\n"},
		{[]string{"angle", "23", "-10"}, "-10\n"},
		{[]string{"sequence", "24", "10", "0110"}, "0\n"},
		{[]string{"macro", "toggle", "1", "2"}, "macro run\n"},
	} {
		buf.Reset()
		if err := r.run(ctx, tc.args); err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if got := buf.String(); got != tc.want {
			t.Errorf("%v = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestRunner_errors(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newRunner(t, "cmdtest-errors", nil)
	for _, args := range [][]string{
		nil,
		{"value"},
		{"value", "1", "2", "3"},
		{"ratio", "18"},
		{"sequence", "1", "2"},
		{"macro"},
		{"raw", "extra"},
	} {
		if err := r.run(ctx, args); err != errUsage {
			t.Errorf("%v = %v, want errUsage", args, err)
		}
	}
	for _, args := range [][]string{
		{"frobnicate"},
		{"value", "x"},
		{"function", "17", "alt0"},
		{"ratio", "18", "half"},
	} {
		if err := r.run(ctx, args); err == nil || err == errUsage {
			t.Errorf("%v = %v, want a descriptive error", args, err)
		}
	}
	if err := r.run(ctx, []string{"value", "1"}); !errors.Is(err, webiopi.ErrPinNotFound) {
		t.Errorf("value 1 = %v, want ErrPinNotFound", err)
	}
	if err := r.run(ctx, []string{"ratio", "18", "3"}); !errors.Is(err, webiopi.ErrInvalidArgument) {
		t.Errorf("ratio 18 3 = %v, want ErrInvalidArgument", err)
	}
	r.device = "cmdtest-missing"
	if err := r.run(ctx, []string{"value", "4"}); err == nil {
		t.Error("unknown device accepted")
	}
}

func TestRunner_raw(t *testing.T) {
	r, sim, buf := newRunner(t, "cmdtest-raw", &webiopitest.Opts{I2C0: true})
	if err := sim.Set(40, "ALT0", 1); err != nil {
		t.Fatal(err)
	}
	if err := r.run(context.Background(), []string{"raw"}); err != nil {
		t.Fatal(err)
	}
	st, err := webiopi.Decode(bytes.TrimSpace(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !st.I2C0Enabled() {
		t.Error("I2C0 not reported")
	}
	if p, _ := st.Pin(40); p.Function != "ALT0" || p.Value != 1 {
		t.Errorf("Pin(40) = %v", p)
	}
}

func TestRunner_status(t *testing.T) {
	r, _, buf := newRunner(t, "cmdtest-a", &webiopitest.Opts{UART0: true})
	newRunner(t, "cmdtest-b", &webiopitest.Opts{SPI0: true})
	r.allPins = true
	if err := r.run(context.Background(), []string{"status", "cmdtest-a", "cmdtest-b"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2*(1+webiopi.PinCount) {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "cmdtest-a") || !strings.Contains(lines[0], "uart0=on") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if l := lines[1+webiopi.PinCount]; !strings.HasPrefix(l, "cmdtest-b") || !strings.Contains(l, "spi0=on") {
		t.Errorf("line %d = %q", 1+webiopi.PinCount, l)
	}
	if lines[1] != "  pin(0) function(IN) value(0)" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if err := r.run(context.Background(), []string{"status", "cmdtest-a", "cmdtest-nope"}); err == nil {
		t.Error("status of an unknown device succeeded")
	}
}

func TestRunner_watch(t *testing.T) {
	r, _, buf := newRunner(t, "cmdtest-watch", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.run(ctx, []string{"watch"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "uart0=off") || !strings.HasSuffix(out, "\n\033[0m") {
		t.Errorf("watch output = %q", out)
	}
}

func TestRunner_render(t *testing.T) {
	r, _, _ := newRunner(t, "cmdtest-render", nil)
	p := filepath.Join(t.TempDir(), "pins.png")
	if err := r.run(context.Background(), []string{"render", p}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Errorf("%s is not a PNG", p)
	}
}

func TestRunner_handler(t *testing.T) {
	r, sim, _ := newRunner(t, "cmdtest-handler", nil)
	srv := httptest.NewServer(r.handler(sim))
	defer srv.Close()

	get := func(path string) (int, string) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.SetBasicAuth("webiopi", "raspberry")
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}
	if code, body := get("/GPIO/4/function"); code != 200 || body != "IN" {
		t.Errorf("GET /GPIO/4/function = %d %q", code, body)
	}
	if code, body := get("/metrics"); code != 200 || !strings.Contains(body, "go_goroutines") {
		t.Errorf("GET /metrics = %d", code)
	}
	if code, body := get("/pins.png"); code != 200 || !strings.HasPrefix(body, "\x89PNG") {
		t.Errorf("GET /pins.png = %d", code)
	}
}

func TestMirrorPin(t *testing.T) {
	// Mirror between two simulated devices seen through gpio.PinIO.
	r, src, _ := newRunner(t, "cmdtest-mirror", nil)
	dst := webiopitest.New(nil)
	defer dst.Close()
	if err := src.Set(5, "IN", 1); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := mirrorPin(ctx, r, remotegpio.New(src, 5, nil), remotegpio.New(dst, 6, nil)); err != nil {
		t.Fatal(err)
	}
	if v, _ := dst.Value(context.Background(), 6); v != 1 {
		t.Errorf("mirrored value = %d, want 1", v)
	}
	if f, _ := dst.Function(context.Background(), 6); f != webiopi.Out {
		t.Errorf("mirrored function = %s, want Out", f)
	}
}
