// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pinview

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/GermanBionicSystems/webiopi"
)

var (
	outHigh = color.NRGBA{0x00, 0xE0, 0x00, 0xFF}
	outLow  = color.NRGBA{0x00, 0x50, 0x00, 0xFF}
	inHigh  = color.NRGBA{0x30, 0x80, 0xFF, 0xFF}
	inLow   = color.NRGBA{0x10, 0x20, 0x60, 0xFF}
	pwm     = color.NRGBA{0xFF, 0xD0, 0x00, 0xFF}
	other   = color.NRGBA{0x80, 0x80, 0x80, 0xFF}
)

// Color returns the colour used to draw p.
func Color(p webiopi.PinDetails) color.NRGBA {
	switch webiopi.ParseFunction(p.Function) {
	case webiopi.Out:
		if p.Value != 0 {
			return outHigh
		}
		return outLow
	case webiopi.In:
		if p.Value != 0 {
			return inHigh
		}
		return inLow
	case webiopi.PWM:
		return pwm
	default:
		return other
	}
}

// Summary returns a one line description of st, e.g.
// "uart0=on i2c0=off i2c1=on spi0=off in=50 out=2 pwm=1 other=1".
func Summary(st *webiopi.DeviceState) string {
	var nIn, nOut, nPWM, nOther int
	for _, p := range st.Pins() {
		switch webiopi.ParseFunction(p.Function) {
		case webiopi.In:
			nIn++
		case webiopi.Out:
			nOut++
		case webiopi.PWM:
			nPWM++
		default:
			nOther++
		}
	}
	f := st.Flags()
	var b strings.Builder
	b.WriteString("uart0=" + onOff(f.UART0))
	b.WriteString(" i2c0=" + onOff(f.I2C0))
	b.WriteString(" i2c1=" + onOff(f.I2C1))
	b.WriteString(" spi0=" + onOff(f.SPI0))
	b.WriteString(" in=" + strconv.Itoa(nIn))
	b.WriteString(" out=" + strconv.Itoa(nOut))
	b.WriteString(" pwm=" + strconv.Itoa(nPWM))
	b.WriteString(" other=" + strconv.Itoa(nOther))
	return b.String()
}

//

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
