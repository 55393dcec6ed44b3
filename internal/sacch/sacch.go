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

// Package sacch decodes and encodes the Slow and Fast Associated Control
// Channels (SACCH/FACCH1) that carry in-band layer-3 signalling
// interleaved with voice and data traffic. FEC correction itself is
// treated as an opaque step performed before Decode and after Encode;
// this package only lays out the logical subfields.
package sacch

import "github.com/dvm-nxdn/nxdnhost/internal/bitcodec"

const (
	// sacchBitOffset is FSW(20)+LICH(16), the start of the fixed SACCH
	// field; the traffic payload starts SACCH(60) bits after it.
	sacchBitOffset = 20 + 16
	ranBits        = 5
	structureBits  = 2
	payloadBytes   = 3

	facch1SlotBits  = 144
	facch1FirstBit  = 20 + 16 + 60
	facch1SecondBit = facch1FirstBit + facch1SlotBits
	facch1PayloadBytes = 10
)

// Structure is the 2-bit SACCH reassembly structure code, numbered per
// NXDN_SR_* (original_source/nxdn/NXDNDefines.h): SINGLE and the
// terminal 4/4 quarter share wire code 0, and the quarters count DOWN
// from 1/4=3 to 4/4=0 rather than up.
type Structure uint8

const (
	StructureSingle Structure = 0
	Structure4of4   Structure = 0
	Structure3of4   Structure = 1
	Structure2of4   Structure = 2
	Structure1of4   Structure = 3
)

// SACCH is one decoded slow-associated-control-channel field.
type SACCH struct {
	RAN       uint8
	Structure Structure
	Payload   [payloadBytes]byte
}

// Decode extracts RAN, structure, and the 3-byte payload from the fixed
// SACCH field of frame.
func Decode(frame []byte) SACCH {
	offset := uint(sacchBitOffset)
	s := SACCH{
		RAN:       uint8(bitcodec.ReadUint(frame, offset, ranBits)),
		Structure: Structure(bitcodec.ReadUint(frame, offset+ranBits, structureBits)),
	}
	payloadOffset := offset + ranBits + structureBits
	for i := 0; i < payloadBytes; i++ {
		s.Payload[i] = byte(bitcodec.ReadUint(frame, payloadOffset+uint(i)*8, 8))
	}
	return s
}

// Encode packs s into the fixed SACCH field of frame.
func Encode(frame []byte, s SACCH) {
	offset := uint(sacchBitOffset)
	bitcodec.WriteUint(frame, offset, ranBits, uint32(s.RAN))
	bitcodec.WriteUint(frame, offset+ranBits, structureBits, uint32(s.Structure))
	payloadOffset := offset + ranBits + structureBits
	for i := 0; i < payloadBytes; i++ {
		bitcodec.WriteUint(frame, payloadOffset+uint(i)*8, 8, uint32(s.Payload[i]))
	}
}

// Reassembler accumulates the 1/4, 2/4, 3/4, and 4/4 quarters of a
// SACCH-carried layer-3 record into a 12-byte buffer; the quarter
// completing on 4/4 yields the reassembled record, mirroring the
// source's m_rfMask accumulation (0x01 -> 0x03 -> 0x07 -> 0x0F across
// 1/4, 2/4, 3/4, 4/4). Quarters must arrive strictly in order — 1/4,
// then 2/4, then 3/4, then 4/4 — an out-of-order quarter resets the
// mask to zero, mirroring the source's late-entry handling.
type Reassembler struct {
	buf  [12]byte
	mask uint8
}

// Add folds in one SACCH payload at the given structure position. It
// returns the completed 12-byte record and true once 1/4, 2/4, 3/4, and
// 4/4 have all been seen in order.
func (r *Reassembler) Add(structure Structure, payload [payloadBytes]byte) ([12]byte, bool) {
	var quarterIdx int
	var wantMask uint8
	switch structure {
	case Structure1of4:
		quarterIdx, wantMask = 0, 0x0
	case Structure2of4:
		quarterIdx, wantMask = 1, 0x1
	case Structure3of4:
		quarterIdx, wantMask = 2, 0x3
	case Structure4of4:
		quarterIdx, wantMask = 3, 0x7
	default:
		r.mask = 0
		return [12]byte{}, false
	}

	if r.mask != wantMask {
		r.mask = 0
		if quarterIdx != 0 {
			return [12]byte{}, false
		}
	}

	copy(r.buf[quarterIdx*3:quarterIdx*3+3], payload[:])
	r.mask |= 1 << uint(quarterIdx)

	if structure == Structure4of4 {
		record := r.buf
		r.mask = 0
		return record, true
	}
	return [12]byte{}, false
}

// Reset clears any in-progress reassembly.
func (r *Reassembler) Reset() {
	r.mask = 0
	r.buf = [12]byte{}
}

// FACCH1 is one decoded Fast Associated Control Channel slot payload.
type FACCH1 [facch1PayloadBytes]byte

// DecodeSlot extracts the 10-byte FACCH1 payload from the requested slot
// (0 = first, 1 = second) of frame.
func DecodeSlot(frame []byte, slot int) FACCH1 {
	var f FACCH1
	offset := uint(facch1FirstBit)
	if slot == 1 {
		offset = uint(facch1SecondBit)
	}
	for i := 0; i < facch1PayloadBytes; i++ {
		f[i] = byte(bitcodec.ReadUint(frame, offset+uint(i)*8, 8))
	}
	return f
}

// EncodeSlot packs f into the requested FACCH1 slot of frame.
func EncodeSlot(frame []byte, slot int, f FACCH1) {
	offset := uint(facch1FirstBit)
	if slot == 1 {
		offset = uint(facch1SecondBit)
	}
	for i := 0; i < facch1PayloadBytes; i++ {
		bitcodec.WriteUint(frame, offset+uint(i)*8, 8, uint32(f[i]))
	}
}
