// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopi

import (
	"errors"
	"strconv"
)

var (
	ErrMalformedDocument = errors.New("webiopi: malformed status document")
	ErrMissingField      = errors.New("webiopi: missing field")
	ErrMissingPin        = errors.New("webiopi: missing pin")
	ErrPinNotFound       = errors.New("webiopi: pin not found")
	ErrInvalidArgument   = errors.New("webiopi: invalid argument")
	ErrClosed            = errors.New("webiopi: endpoint closed")
)

// MalformedDocumentError is returned by Decode when the input is not a JSON
// object.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return ErrMalformedDocument.Error() + ": " + e.Err.Error()
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// MissingFieldError is returned by Decode when a required field is absent or
// holds a value of the wrong type.
//
// Path is dot separated, e.g. "GPIO.6.function".
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return ErrMissingField.Error() + " " + strconv.Quote(e.Path)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// MissingPinError is returned by Decode when the GPIO object has no entry for
// a pin index in [0, PinCount).
type MissingPinError struct {
	Index int
}

func (e *MissingPinError) Error() string {
	return ErrMissingPin.Error() + " " + strconv.Itoa(e.Index)
}

func (e *MissingPinError) Is(target error) bool {
	return target == ErrMissingPin
}

// PinNotFoundError is returned when a pin number is not known.
type PinNotFoundError struct {
	Number int
}

func (e *PinNotFoundError) Error() string {
	return ErrPinNotFound.Error() + ": " + strconv.Itoa(e.Number)
}

func (e *PinNotFoundError) Is(target error) bool {
	return target == ErrPinNotFound
}
