// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics defines the Prometheus collectors of the API server and of
// the election engine.
//
// NewServer builds the counters of accepted vote and candidate mutations that
// the router exposes on /metrics. NewEngine builds the counters of how each
// ballot reconciliation and nomination lifecycle ended (committed, rolled
// back, no-op, dropped while busy); the bonk CLI registers them and pushes
// them to a Pushgateway. A nil *Metrics is valid and records nothing.
package metrics
