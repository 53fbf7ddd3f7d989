// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webiopireg defines a registry of WebIOPi devices known to the
// program.
//
// A device is registered once with a name, optional aliases and an Opener
// that returns a fresh webiopi.Endpoint. Applications then open devices by
// name without knowing whether they are live or simulated.
package webiopireg
