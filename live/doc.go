// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package live implements webiopi.Endpoint over the WebIOPi REST API.
//
// Every call is a single HTTP request authenticated with HTTP Basic
// authentication. Nothing is retried.
//
// Requests are counted in the Prometheus default registry as
// webiopi_client_requests_total and webiopi_client_request_duration_seconds.
//
// # Reference
//
// http://webiopi.trouch.com/RESTAPI.html
package live
