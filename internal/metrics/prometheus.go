// SPDX-License-Identifier: AGPL-3.0-or-later
// nxdnhost - Run an NXDN Type-C trunked repeater host in a single binary
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/dvm-nxdn/nxdnhost>

// Package metrics defines Prometheus gauges and counters for the
// core's runtime state: active grants and calls, CC superframe
// cadence, frame-ring depth/overflow, and decode errors by the §7
// error taxonomy code. Nothing in the core updates them; they are
// registered and served with their initial values.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector this host registers.
type Metrics struct {
	ActiveGrants  prometheus.Gauge
	ActiveRFCalls prometheus.Gauge
	ActiveNetCalls prometheus.Gauge

	CCSuperframesTotal prometheus.Counter
	GrantsTotal        prometheus.Counter
	GrantDenialsTotal  *prometheus.CounterVec

	FrameRingDepth    *prometheus.GaugeVec
	FrameRingOverflow *prometheus.CounterVec

	DecodeErrorsTotal *prometheus.CounterVec
}

// NewMetrics builds and registers the collector set.
func NewMetrics() *Metrics {
	m := &Metrics{
		ActiveGrants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nxdn_active_grants",
			Help: "Number of channel grants currently outstanding",
		}),
		ActiveRFCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nxdn_active_rf_calls",
			Help: "1 if an RF-origin voice call is in progress, else 0",
		}),
		ActiveNetCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nxdn_active_net_calls",
			Help: "1 if a network-origin voice call is in progress, else 0",
		}),
		CCSuperframesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nxdn_cc_superframes_total",
			Help: "Control-channel superframes emitted",
		}),
		GrantsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nxdn_grants_total",
			Help: "Channel grants issued",
		}),
		GrantDenialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nxdn_grant_denials_total",
			Help: "Channel grant requests denied, by cause response",
		}, []string{"cause"}),
		FrameRingDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nxdn_frame_ring_depth_bytes",
			Help: "Bytes currently buffered in a frame ring",
		}, []string{"ring"}),
		FrameRingOverflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nxdn_frame_ring_overflow_total",
			Help: "Frames dropped or rejected due to a full frame ring",
		}, []string{"ring"}),
		DecodeErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nxdn_decode_errors_total",
			Help: "Decode/protocol errors, by taxonomy code",
		}, []string{"code"}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.ActiveGrants)
	prometheus.MustRegister(m.ActiveRFCalls)
	prometheus.MustRegister(m.ActiveNetCalls)
	prometheus.MustRegister(m.CCSuperframesTotal)
	prometheus.MustRegister(m.GrantsTotal)
	prometheus.MustRegister(m.GrantDenialsTotal)
	prometheus.MustRegister(m.FrameRingDepth)
	prometheus.MustRegister(m.FrameRingOverflow)
	prometheus.MustRegister(m.DecodeErrorsTotal)
}

// RecordDecodeError increments the decode-error counter for a §7
// taxonomy code (e.g. "INVALID_PARITY", "RAN_MISMATCH").
func (m *Metrics) RecordDecodeError(code string) {
	m.DecodeErrorsTotal.WithLabelValues(code).Inc()
}

// RecordGrantDenial increments the grant-denial counter for a cause
// response name (e.g. "QUE_GRP_BUSY").
func (m *Metrics) RecordGrantDenial(cause string) {
	m.GrantDenialsTotal.WithLabelValues(cause).Inc()
}

// SetFrameRingDepth reports a ring's current buffered byte count.
func (m *Metrics) SetFrameRingDepth(ring string, bytes float64) {
	m.FrameRingDepth.WithLabelValues(ring).Set(bytes)
}

// RecordFrameRingOverflow increments the overflow counter for a ring.
func (m *Metrics) RecordFrameRingOverflow(ring string) {
	m.FrameRingOverflow.WithLabelValues(ring).Inc()
}
