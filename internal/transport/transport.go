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

// Package transport defines the Modem and NetIO boundaries the core
// talks to. No concrete implementation lives here: a real modem is a
// serial/USB device and a real network peer is a UDP socket, both out
// of scope for this host's core. The cmd wiring does not supply either
// one.
package transport

import (
	"context"

	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
	"github.com/dvm-nxdn/nxdnhost/internal/rtchlc"
)

// FrameTag classifies one inbound modem burst.
type FrameTag = nxdnconst.FrameTag

// InboundFrame is one [tag][reserved][payload][rssi?] burst read from
// the modem.
type InboundFrame struct {
	Tag     FrameTag
	Payload [nxdnconst.FrameLengthBytes]byte
	RSSI    *uint16 // nil when the modem did not attach RSSI
}

// Modem is the binary, bidirectional, frame-oriented air interface.
type Modem interface {
	// ReadFrame blocks until the next inbound burst or ctx is done.
	ReadFrame(ctx context.Context) (InboundFrame, error)
	// WriteFrame transmits one 48-byte air frame.
	WriteFrame(ctx context.Context, frame [nxdnconst.FrameLengthBytes]byte) error
	// ClearFrame discards any buffered partial transmission.
	ClearFrame()
	// WriteStart asserts or deasserts the transmit-start line.
	WriteStart(key bool) error
	// WriteShortLC writes a short link-control burst ahead of a transmission.
	WriteShortLC(data []byte) error
	// HasTX reports whether the modem is currently keyed.
	HasTX() bool
}

// NetStatus is the network peer's coarse connection state.
type NetStatus int

const (
	NetStatusDown NetStatus = iota
	NetStatusRunning
)

// NetIO is the network-side peer the core exchanges RTCH-LC traffic
// with; it is opaque to the core beyond this interface.
type NetIO interface {
	// ReadNXDN returns the next inbound RTCH-LC message and its raw
	// frame, or ok=false when nothing is pending.
	ReadNXDN(ctx context.Context) (msg rtchlc.Message, frame []byte, ok bool, err error)
	// WriteNXDN sends an RTCH-LC message with its raw frame bytes.
	WriteNXDN(ctx context.Context, msg rtchlc.Message, frame []byte) error
	// Status reports the peer's current connection state.
	Status() NetStatus
	// Reset tears down and re-establishes the network link.
	Reset() error
	// WriteGrantReq forwards a non-authoritative grant request upstream.
	WriteGrantReq(mode string, src, dst uint32, slot int, unitToUnit bool) error
}
