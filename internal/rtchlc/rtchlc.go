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

// Package rtchlc decodes and encodes Radio Traffic Channel link-control
// messages. Decode/encode is table-driven on the Message Type opcode;
// each opcode defines a fixed byte layout.
package rtchlc

import "github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"

// PacketInformation is the 3-byte data-call packet descriptor carried by
// DCALL_HDR/SDCALL_REQ_HDR, and the narrower 2-byte form carried as the
// DCALL_ACK response. Its internal subfields are not exercised by the
// core and are kept as an opaque byte payload.
type PacketInformation []byte

// Message is a decoded RTCH-LC link-control message.
type Message struct {
	MessageType      nxdnconst.MessageType
	CallType         nxdnconst.CallType
	Emergency        bool
	Priority         bool
	Duplex           bool
	TransmissionMode nxdnconst.TransmissionMode
	SrcID            uint16
	DstID            uint16
	AlgID            nxdnconst.CipherAlgID
	KeyID            uint8
	Group            bool // derived: CallType == INDIVIDUAL -> false, else true
	Encrypted        bool // derived: AlgID != NONE && KeyID != 0

	MI         [nxdnconst.MILengthBytes]byte
	PacketInfo PacketInformation
	Response   PacketInformation

	DataFrameNumber uint8
	DataBlockNumber uint8
	DelayCount      uint16
	CauseRsp        nxdnconst.CauseResponse
}

func be16(hi, lo byte) uint16 { return uint16(hi)<<8 | uint16(lo) }

func put16(buf []byte, off int, v uint16) {
	buf[off] = byte(v >> 8)
	buf[off+1] = byte(v)
}

func commonHeader(data []byte, m *Message) {
	m.Emergency = data[1]&0x80 == 0x80
	m.Priority = data[1]&0x20 == 0x20
	m.CallType = nxdnconst.CallType((data[2] >> 5) & 0x07)
	m.Duplex = data[2]&0x10 == 0x10
	m.TransmissionMode = nxdnconst.TransmissionMode(data[2] & 0x07)
	m.SrcID = be16(data[3], data[4])
	m.DstID = be16(data[5], data[6])
}

func encodeCommonHeader(data []byte, m Message) {
	if m.Emergency {
		data[1] |= 0x80
	}
	if m.Priority {
		data[1] |= 0x20
	}
	data[2] = uint8(m.CallType&0x07) << 5
	if m.Duplex {
		data[2] |= 0x10
	}
	data[2] |= uint8(m.TransmissionMode & 0x07)
	put16(data, 3, m.SrcID)
	put16(data, 5, m.DstID)
}

// encodedLength returns the total byte length for each Message Type, the
// fixed layouts enumerated in spec §3.
func encodedLength(t nxdnconst.MessageType) int {
	switch t {
	case nxdnconst.RTCHVCall:
		return 8 // VCALL: 0-7
	case nxdnconst.RTCHDCallAck:
		return 9 // DCALL_ACK: 0-6 header + 2-byte response at 7-8
	case nxdnconst.RTCHVCallIV, nxdnconst.RTCHSDCallIV:
		return 9 // opcode byte + 8-byte MI at offset 1
	case nxdnconst.RTCHTXRelEx, nxdnconst.RTCHTXRel:
		return 7
	case nxdnconst.RTCHDCallHdr:
		return 19 // header to 7, PacketInfo 8-10, MI 11-18
	case nxdnconst.RTCHDCallData, nxdnconst.RTCHSDCallReqData:
		return 2
	case nxdnconst.RTCHHeadDly:
		return 9
	case nxdnconst.RTCHSDCallReqHdr:
		return 11
	case nxdnconst.RTCHSDCallResp:
		return 8
	case nxdnconst.MessageTypeIdle:
		return 1
	default:
		return nxdnconst.RTCHLCLengthBytes
	}
}

// Decode parses an RTCH-LC message from a raw buffer already stripped of
// FEC. It returns ErrUnknownMessageType for unrecognised opcodes, leaving
// the frame to be dropped by the caller without altering any state.
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return Message{}, nxdnconst.ErrMalformedFrame
	}
	m := Message{MessageType: nxdnconst.MessageType(data[0] & 0x3F)}

	need := func(n int) bool { return len(data) >= n }

	switch m.MessageType {
	case nxdnconst.RTCHVCall:
		if !need(8) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		commonHeader(data, &m)
		m.AlgID = nxdnconst.CipherAlgID((data[7] >> 6) & 0x03)
		m.KeyID = data[7] & 0x3F

	case nxdnconst.RTCHVCallIV, nxdnconst.RTCHSDCallIV:
		// The legacy decoder only copies MI here when the call's AlgId/KeyId
		// (established on the preceding VCALL) indicate encryption; that
		// state lives above this package, in the call's VoicePacketHandler.
		// An IV message exists only to carry MI, so this decoder copies it
		// unconditionally and leaves the AlgId/KeyId gate to the caller.
		if need(9) {
			copy(m.MI[:], data[1:1+nxdnconst.MILengthBytes])
		}

	case nxdnconst.RTCHTXRel, nxdnconst.RTCHTXRelEx:
		if !need(7) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		commonHeader(data, &m)

	case nxdnconst.RTCHDCallHdr:
		if !need(11) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		commonHeader(data, &m)
		m.AlgID = nxdnconst.CipherAlgID((data[7] >> 6) & 0x03)
		m.KeyID = data[7] & 0x3F
		m.PacketInfo = append(PacketInformation{}, data[8:11]...)
		if m.AlgID != nxdnconst.CipherAlgNone && m.KeyID > 0 && need(19) {
			copy(m.MI[:], data[11:11+nxdnconst.MILengthBytes])
		}

	case nxdnconst.RTCHDCallData, nxdnconst.RTCHSDCallReqData:
		if !need(2) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		// NOTE: preserved verbatim from the legacy encoder's precedence
		// defect (see DESIGN.md); decode here mirrors the bits the
		// encoder actually wrote, not the presumably-intended layout.
		m.DataFrameNumber = (data[1] >> 4) & 0x0F
		m.DataBlockNumber = data[1] & 0x0F

	case nxdnconst.RTCHDCallAck:
		if !need(9) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		commonHeader(data, &m)
		m.Response = append(PacketInformation{}, data[7:9]...)

	case nxdnconst.RTCHHeadDly:
		if !need(9) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		commonHeader(data, &m)
		m.DelayCount = be16(data[7], data[8])

	case nxdnconst.MessageTypeIdle:
		// no fields

	case nxdnconst.RTCHSDCallReqHdr:
		if !need(11) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		commonHeader(data, &m)
		m.AlgID = nxdnconst.CipherAlgID((data[7] >> 6) & 0x03)
		m.KeyID = data[7] & 0x3F
		m.PacketInfo = append(PacketInformation{}, data[8:11]...)

	case nxdnconst.RTCHSDCallResp:
		if !need(8) {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		commonHeader(data, &m)
		m.CauseRsp = nxdnconst.CauseResponse(data[7])

	default:
		return Message{}, nxdnconst.ErrUnknownMessageType
	}

	// Group flag is derived from Call Type (§4.4).
	m.Group = m.CallType != nxdnconst.CallTypeIndividual
	// Encryption flag is derived, not read off the wire (§4.4): the
	// original decoder never actually sets this, but the port implements
	// the rule the specification states explicitly.
	m.Encrypted = m.AlgID != nxdnconst.CipherAlgNone && m.KeyID != 0

	return m, nil
}

// Encode serialises m into its fixed-layout byte form. Unknown opcodes
// return ErrUnknownMessageType and an empty buffer.
func Encode(m Message) ([]byte, error) {
	n := encodedLength(m.MessageType)
	data := make([]byte, n)
	data[0] = uint8(m.MessageType) & 0x3F

	switch m.MessageType {
	case nxdnconst.RTCHVCall:
		encodeCommonHeader(data, m)
		data[7] = uint8(m.AlgID&0x03)<<6 | (m.KeyID & 0x3F)

	case nxdnconst.RTCHVCallIV, nxdnconst.RTCHSDCallIV:
		if m.AlgID != nxdnconst.CipherAlgNone && m.KeyID > 0 {
			copy(data[1:], m.MI[:])
		}

	case nxdnconst.RTCHTXRel, nxdnconst.RTCHTXRelEx:
		if m.Emergency {
			data[1] |= 0x80
		}
		if m.Priority {
			data[1] |= 0x20
		}
		data[2] = uint8(m.CallType&0x07) << 5
		put16(data, 3, m.SrcID)
		put16(data, 5, m.DstID)

	case nxdnconst.RTCHDCallHdr:
		encodeCommonHeader(data, m)
		data[7] = uint8(m.AlgID&0x03)<<6 | (m.KeyID & 0x3F)
		copy(data[8:11], pad3(m.PacketInfo))
		if m.AlgID != nxdnconst.CipherAlgNone && m.KeyID > 0 {
			copy(data[11:], m.MI[:])
		}

	case nxdnconst.RTCHDCallData, nxdnconst.RTCHSDCallReqData:
		// Preserved verbatim: the legacy source evaluates this as
		// `(dataFrameNumber & (0x0F << 4)) + (dataBlockNumber & 0x0F)`
		// due to operator precedence, not the intended
		// `((dataFrameNumber & 0x0F) << 4) + ...`. See DESIGN.md.
		data[1] = (m.DataFrameNumber & (0x0F << 4)) + (m.DataBlockNumber & 0x0F)

	case nxdnconst.RTCHDCallAck:
		if m.Emergency {
			data[1] |= 0x80
		}
		if m.Priority {
			data[1] |= 0x20
		}
		data[2] = uint8(m.CallType&0x07)<<5 | boolBit(m.Duplex, 0x10) | uint8(m.TransmissionMode&0x07)
		put16(data, 3, m.SrcID)
		put16(data, 5, m.DstID)
		copy(data[7:9], pad2(m.Response))

	case nxdnconst.RTCHHeadDly:
		if m.Emergency {
			data[1] |= 0x80
		}
		if m.Priority {
			data[1] |= 0x20
		}
		data[2] = uint8(m.CallType&0x07) << 5
		put16(data, 3, m.SrcID)
		put16(data, 5, m.DstID)
		put16(data, 7, m.DelayCount)

	case nxdnconst.MessageTypeIdle:
		// no fields

	case nxdnconst.RTCHSDCallReqHdr:
		encodeCommonHeader(data, m)
		data[7] = uint8(m.AlgID&0x03)<<6 | (m.KeyID & 0x3F)
		copy(data[8:11], pad3(m.PacketInfo))

	case nxdnconst.RTCHSDCallResp:
		encodeCommonHeader(data, m)
		data[7] = uint8(m.CauseRsp)

	default:
		return nil, nxdnconst.ErrUnknownMessageType
	}

	return data, nil
}

func boolBit(b bool, mask uint8) uint8 {
	if b {
		return mask
	}
	return 0
}

func pad3(p PacketInformation) []byte {
	out := make([]byte, 3)
	copy(out, p)
	return out
}

func pad2(p PacketInformation) []byte {
	out := make([]byte, 2)
	copy(out, p)
	return out
}
