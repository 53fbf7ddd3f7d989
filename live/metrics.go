// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package live

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "webiopi"
	subSystem = "client"
)

var (
	// Total number of requests sent per operation and status code.
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subSystem,
		Name:      "requests_total",
		Help:      "Total number of requests sent to WebIOPi devices",
	}, []string{"op", "code"})
	// Request latency per operation.
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subSystem,
		Name:      "request_duration_seconds",
		Help:      "Duration of requests sent to WebIOPi devices",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

// observe records one request. code is the HTTP status or "error".
func observe(op, code string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(op, code).Inc()
	requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
