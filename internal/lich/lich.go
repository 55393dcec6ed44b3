// SPDX-License-Identifier: AGPL-3.0-or-later
// nxdnhost - Run an NXDN Type-C trunked repeater host in a single binary
// Copyright (C) 2023-2024 Jacob McSwain
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

// Package lich decodes and encodes the one-byte Link Information Channel
// that classifies every NXDN air frame.
package lich

import (
	"github.com/dvm-nxdn/nxdnhost/internal/bitcodec"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
)

// LICH is the decoded Link Information Channel info byte.
type LICH struct {
	RFCT      nxdnconst.RFChannelType
	FCT       nxdnconst.FunctionalChannelType
	Option    nxdnconst.StealOption
	Outbound  bool
	raw       uint8 // the packed 8-bit info byte, including parity
}

// parity reports whether the NXDN parity rule holds for the packed byte:
// true iff the upper nibble is 0x8_ or 0xB_.
func parity(b uint8) bool {
	switch b & 0xF0 {
	case 0x80, 0xB0:
		return true
	default:
		return false
	}
}

// Decode reads 16 air bits starting at the FSW-length bit offset, keeping
// every other bit (the companion bits are fixed to 1 on encode and
// ignored here on decode), and unpacks the LICH fields. It returns
// ErrInvalidParity if the recomputed parity does not match the wire bit.
func Decode(frame []byte) (LICH, error) {
	var raw uint8
	offset := uint(nxdnconst.FSWLengthBits)
	for i := uint(0); i < 8; i++ {
		b := bitcodec.ReadBit(frame, offset)
		if b {
			raw |= 1 << (7 - i)
		}
		offset += 2
	}

	l := LICH{
		RFCT:     nxdnconst.RFChannelType((raw >> 6) & 0x03),
		FCT:      nxdnconst.FunctionalChannelType((raw >> 4) & 0x03),
		Option:   nxdnconst.StealOption((raw >> 2) & 0x03),
		Outbound: (raw>>1)&0x01 == 1,
		raw:      raw,
	}

	wireParity := raw&0x01 == 1
	if parity(raw) != wireParity {
		return LICH{}, nxdnconst.ErrInvalidParity
	}
	return l, nil
}

// Encode packs l's fields into the info byte, recomputes parity, and
// writes the 16 interleaved air bits (each info bit followed by a
// mandatory 1 companion bit) starting at the FSW-length bit offset.
func Encode(frame []byte, l LICH) {
	raw := uint8(l.RFCT&0x03)<<6 | uint8(l.FCT&0x03)<<4 | uint8(l.Option&0x03)<<2
	if l.Outbound {
		raw |= 0x02
	}
	if parity(raw) {
		raw |= 0x01
	}

	offset := uint(nxdnconst.FSWLengthBits)
	for i := uint(0); i < 8; i++ {
		bit := raw&(1<<(7-i)) != 0
		bitcodec.WriteBit(frame, offset, bit)
		offset++
		bitcodec.WriteBit(frame, offset, true)
		offset++
	}
}
