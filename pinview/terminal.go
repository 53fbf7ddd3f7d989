// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pinview

import (
	"bytes"
	"io"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"

	"github.com/GermanBionicSystems/webiopi"
)

// Opts configures a Terminal.
type Opts struct {
	// W receives the output. Defaults to a colour capable stdout.
	W io.Writer
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette

	_ struct{}
}

// Terminal draws device states on a terminal, overwriting the current line.
type Terminal struct {
	w       io.Writer
	palette ansi256.Palette

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewTerminal returns a Terminal. opts may be nil.
func NewTerminal(opts *Opts) *Terminal {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	t := &Terminal{w: opts.W, palette: *p}
	if t.w == nil {
		t.w = colorable.NewColorableStdout()
	}
	return t
}

func (t *Terminal) String() string {
	return "pinview.Terminal"
}

// Draw writes one block per pin followed by Summary(st).
func (t *Terminal) Draw(st *webiopi.DeviceState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Reset()
	_, _ = t.buf.WriteString("\r\033[0m")
	for _, p := range st.Pins() {
		_, _ = io.WriteString(&t.buf, t.palette.Block(Color(p)))
	}
	_, _ = t.buf.WriteString("\033[0m ")
	_, _ = t.buf.WriteString(Summary(st))
	_, err := t.buf.WriteTo(t.w)
	return err
}

// Halt implements conn.Resource.
//
// It ends the current line and resets the colours.
func (t *Terminal) Halt() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.w.Write([]byte("\n\033[0m"))
	return err
}

var _ conn.Resource = &Terminal{}
