// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webiopi is a client for the WebIOPi GPIO control service that runs
// on Raspberry Pi boards.
//
// The package defines the Endpoint capability implemented by the live HTTP
// client in package live and by the in-memory simulation in package
// webiopitest, and the decoder for the aggregate status document returned by
// "GET /*".
//
// # Status document
//
// The device reports its interface flags and every pin in a single JSON
// object. Pins are not a JSON array but an object keyed by the decimal pin
// index:
//
//	{
//	  "UART0": 1, "I2C0": 0, "I2C1": 1, "SPI0": 0,
//	  "GPIO": {
//	    "0": {"function": "IN", "value": 1},
//	    "1": {"function": "ALT0", "value": 1},
//	    ...
//	    "53": {"function": "ALT3", "value": 1}
//	  }
//	}
//
// Decode requires all PinCount entries to be present. Boards known to report
// fewer pins fail with a MissingPinError.
//
// # Functions
//
// The function reported in the status document is a free form token such as
// "IN", "OUT" or "ALT0" and is kept verbatim in PinDetails. The Function type
// is the closed set of modes a client can request; ParseFunction maps device
// tokens onto it and returns Unknown for anything else.
//
// # Reference
//
// http://webiopi.trouch.com/RESTAPI.html
package webiopi
