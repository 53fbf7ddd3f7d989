// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webiopitest is meant to be used to test code using a WebIOPi device
// without the hardware.
//
// Sim keeps the device state in memory and implements webiopi.Endpoint.
// Server exposes any webiopi.Endpoint over the WebIOPi REST API so the live
// HTTP client can be exercised against a Sim with net/http/httptest.
package webiopitest
