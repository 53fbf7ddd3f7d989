// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pinview

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/webiopi"
)

// ImageOpts configures Image.
type ImageOpts struct {
	// FontSize in points. Defaults to 12.
	FontSize float64

	_ struct{}
}

// Layout of the diagram: a header line followed by two columns of pins.
const (
	columnWidth = 240
	rowHeight   = 22
	headerH     = 40
	margin      = 10
	radius      = 7
	rows        = (webiopi.PinCount + 1) / 2
)

// Image draws st as a diagram with one labelled dot per pin. opts may be nil.
func Image(st *webiopi.DeviceState, opts *ImageOpts) (image.Image, error) {
	dc, err := render(st, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG draws st with default options and encodes it as PNG into w.
func WritePNG(w io.Writer, st *webiopi.DeviceState) error {
	dc, err := render(st, nil)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("pinview: %w", err)
	}
	return nil
}

//

var parseFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

func face(size float64) (font.Face, error) {
	f, err := parseFont()
	if err != nil {
		return nil, fmt.Errorf("pinview: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// pinCenter returns the centre of the dot drawn for pin i.
func pinCenter(i int) (float64, float64) {
	col, row := i/rows, i%rows
	return float64(col*columnWidth + margin + radius), float64(headerH + row*rowHeight + rowHeight/2)
}

func render(st *webiopi.DeviceState, opts *ImageOpts) (*gg.Context, error) {
	size := 12.0
	if opts != nil && opts.FontSize > 0 {
		size = opts.FontSize
	}
	ff, err := face(size)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(2*columnWidth, headerH+rows*rowHeight+margin)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(ff)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(Summary(st), margin, headerH/2, 0, 0.5)
	dc.DrawLine(margin, headerH-4, 2*columnWidth-margin, headerH-4)
	dc.SetLineWidth(1)
	dc.Stroke()
	for _, p := range st.Pins() {
		x, y := pinCenter(p.Number)
		dc.SetColor(Color(p))
		dc.DrawCircle(x, y, radius)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(fmt.Sprintf("GPIO%d %s %d", p.Number, p.Function, p.Value), x+2*radius, y, 0, 0.5)
	}
	return dc, nil
}
