// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// PinCount is the number of entries in the GPIO table of a status document.
//
// It matches the widest known BCM GPIO table.
const PinCount = 54

// PinDetails is the status of one pin as reported by the device.
type PinDetails struct {
	// Number is the BCM pin index.
	Number int
	// Function is the device token, e.g. "IN", "OUT", "PWM" or "ALT0".
	Function string
	// Value is the reported level.
	Value int
}

func (p PinDetails) String() string {
	return fmt.Sprintf("pin(%d) function(%s) value(%d)", p.Number, p.Function, p.Value)
}

// Flags are the interface enable flags of a status document.
type Flags struct {
	UART0 bool
	I2C0  bool
	I2C1  bool
	SPI0  bool
}

// DeviceState is a decoded status document.
//
// It is immutable and safe for concurrent use.
type DeviceState struct {
	flags Flags
	pins  [PinCount]PinDetails
}

// Decode parses a status document as returned by "GET /*".
//
// Every pin index in [0, PinCount) must be present. The function token and
// value of each pin are accepted as is. Keys outside that range are ignored.
//
// The returned error is one of *MalformedDocumentError, *MissingFieldError or
// *MissingPinError.
func Decode(raw []byte) (*DeviceState, error) {
	doc, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	s := &DeviceState{}
	if s.flags.UART0, err = flag(doc, "UART0"); err != nil {
		return nil, err
	}
	if s.flags.I2C0, err = flag(doc, "I2C0"); err != nil {
		return nil, err
	}
	if s.flags.I2C1, err = flag(doc, "I2C1"); err != nil {
		return nil, err
	}
	if s.flags.SPI0, err = flag(doc, "SPI0"); err != nil {
		return nil, err
	}

	// The pins are an object keyed by index, not an array:
	//   "GPIO": {"0": {"function": "IN", "value": 1}, "1": {...}, ...}
	gpio, ok := doc["GPIO"].(map[string]interface{})
	if !ok {
		return nil, &MissingFieldError{Path: "GPIO"}
	}
	for i := range s.pins {
		key := strconv.Itoa(i)
		v, ok := gpio[key]
		if !ok {
			return nil, &MissingPinError{Index: i}
		}
		entry, ok := v.(map[string]interface{})
		if !ok {
			return nil, &MissingFieldError{Path: "GPIO." + key}
		}
		f, ok := entry["function"].(string)
		if !ok {
			return nil, &MissingFieldError{Path: "GPIO." + key + ".function"}
		}
		value, ok := integer(entry["value"])
		if !ok {
			return nil, &MissingFieldError{Path: "GPIO." + key + ".value"}
		}
		s.pins[i] = PinDetails{Number: i, Function: f, Value: value}
	}
	return s, nil
}

// Pin returns the details of the pin number.
//
// It returns a *PinNotFoundError when number is outside [0, PinCount).
func (s *DeviceState) Pin(number int) (PinDetails, error) {
	if number < 0 || number >= len(s.pins) || s.pins[number].Number != number {
		return PinDetails{}, &PinNotFoundError{Number: number}
	}
	return s.pins[number], nil
}

// Pins returns a copy of all pins ordered by number.
func (s *DeviceState) Pins() []PinDetails {
	out := make([]PinDetails, len(s.pins))
	copy(out, s.pins[:])
	return out
}

// Len returns the number of pins, always PinCount.
func (s *DeviceState) Len() int {
	return len(s.pins)
}

// Flags returns the interface enable flags.
func (s *DeviceState) Flags() Flags {
	return s.flags
}

// UART0Enabled reports whether UART0 is enabled on the device.
func (s *DeviceState) UART0Enabled() bool {
	return s.flags.UART0
}

// I2C0Enabled reports whether I2C0 is enabled on the device.
func (s *DeviceState) I2C0Enabled() bool {
	return s.flags.I2C0
}

// I2C1Enabled reports whether I2C1 is enabled on the device.
func (s *DeviceState) I2C1Enabled() bool {
	return s.flags.I2C1
}

// SPI0Enabled reports whether SPI0 is enabled on the device.
func (s *DeviceState) SPI0Enabled() bool {
	return s.flags.SPI0
}

// MarshalJSON encodes the state back into the status document format.
func (s *DeviceState) MarshalJSON() ([]byte, error) {
	return Encode(s.flags, s.pins[:])
}

// Encode builds a status document from flags and pins.
//
// Pins are keyed by their Number. It is the inverse of Decode when pins holds
// one entry for each index in [0, PinCount).
func Encode(f Flags, pins []PinDetails) ([]byte, error) {
	type entry struct {
		Function string `json:"function"`
		Value    int    `json:"value"`
	}
	doc := struct {
		UART0 int              `json:"UART0"`
		I2C0  int              `json:"I2C0"`
		I2C1  int              `json:"I2C1"`
		SPI0  int              `json:"SPI0"`
		GPIO  map[string]entry `json:"GPIO"`
	}{
		UART0: b2i(f.UART0),
		I2C0:  b2i(f.I2C0),
		I2C1:  b2i(f.I2C1),
		SPI0:  b2i(f.SPI0),
		GPIO:  make(map[string]entry, len(pins)),
	}
	for _, p := range pins {
		doc.GPIO[strconv.Itoa(p.Number)] = entry{Function: p.Function, Value: p.Value}
	}
	return json.Marshal(&doc)
}

//

var errNotObject = errors.New("document is not a JSON object")

// parseObject decodes raw into a generic object, keeping numbers as
// json.Number so integers can be told apart from floats.
func parseObject(raw []byte) (map[string]interface{}, error) {
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	var v interface{}
	if err := d.Decode(&v); err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	if _, err := d.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after document")
		}
		return nil, &MalformedDocumentError{Err: err}
	}
	doc, ok := v.(map[string]interface{})
	if !ok {
		return nil, &MalformedDocumentError{Err: errNotObject}
	}
	return doc, nil
}

func flag(doc map[string]interface{}, name string) (bool, error) {
	v, ok := integer(doc[name])
	if !ok {
		return false, &MissingFieldError{Path: name}
	}
	return v == 1, nil
}

// integer returns v as an int if it is a JSON integer.
func integer(v interface{}) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := strconv.ParseInt(string(n), 10, 0)
	if err != nil {
		return 0, false
	}
	return int(i), true
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
