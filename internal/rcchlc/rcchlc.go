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

// Package rcchlc decodes and encodes Radio Control Channel link-control
// messages. Only the base Message Type byte and a handful of SITE_INFO
// subfields are grounded directly in the reference decoder; the rest of
// the per-opcode layouts are this host's own dense packing of the field
// set the specification enumerates (srcId, dstId, locId, regOption,
// version, causeRsp, grpVchNo, callType, emergency, encrypted, priority,
// group, duplex, transmissionMode), since no further per-opcode C++
// subclasses were available to port from. See DESIGN.md.
package rcchlc

import "github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"

// LocationID is the 24-bit (2-bit category, 17-bit system, 5-bit site)
// identifier carried by SITE_INFO and several registration opcodes.
type LocationID struct {
	Category uint8
	System   uint32
	Site     uint8
}

func decodeLocID(b []byte) LocationID {
	v := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return LocationID{
		Category: uint8((v >> 22) & 0x03),
		System:   (v >> 5) & 0x1FFFF,
		Site:     uint8(v & 0x1F),
	}
}

func encodeLocID(b []byte, l LocationID) {
	v := uint32(l.Category&0x03)<<22 | (l.System&0x1FFFF)<<5 | uint32(l.Site&0x1F)
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// SiteInfo is the SITE_INFO payload: the broadcast site's identity,
// service offering, and CAC superframe sequence counts (grounded in
// MESSAGE_TYPE_SITE_INFO.h's property list).
type SiteInfo struct {
	LocID            LocationID
	ChannelID        uint8 // <= 15
	ChannelNo        uint16
	ServiceClass     uint8 // VOICE_CALL_SVC | DATA_CALL_SVC | GRP_REG_SVC | COMPOSITE_CONTROL
	Callsign         [8]byte
	RequireReg       bool
	NetActive        bool
	BcchCnt          uint8
	RCCHGroupingCnt  uint8
	CCCHPagingCnt    uint8
	CCCHMultiCnt     uint8
	RCCHIterateCnt   uint8
}

// MaxSeq is the CAC superframe sequence length this site advertises:
// bcchCnt + (ccchPagingCnt+ccchMultiCnt)*rcchGroupingCnt*rcchIterateCnt.
func (s SiteInfo) MaxSeq() int {
	return int(s.BcchCnt) + (int(s.CCCHPagingCnt)+int(s.CCCHMultiCnt))*int(s.RCCHGroupingCnt)*int(s.RCCHIterateCnt)
}

// ServiceClass bitmap values (§3 SiteData).
const (
	SvcVoiceCall        uint8 = 1 << 0
	SvcDataCall         uint8 = 1 << 1
	SvcGroupReg         uint8 = 1 << 2
	SvcCompositeControl uint8 = 1 << 3
)

// Message is a decoded RCCH-LC control-channel message.
type Message struct {
	MessageType nxdnconst.MessageType

	SrcID            uint32 // 24-bit radio unit IDs per original_source; truncated to 16 bits on the wire here
	DstID            uint32
	LocID            LocationID
	RegOption        uint8
	Version          uint8
	CauseRsp         nxdnconst.CauseResponse
	GrpVchNo         uint16
	CallType         nxdnconst.CallType
	Emergency        bool
	Encrypted        bool
	Priority         bool
	Group            bool
	Duplex           bool
	TransmissionMode nxdnconst.TransmissionMode

	Site SiteInfo
	Adj  SiteInfo // ADJ_SITE_INFO reuses LocID/ChannelNo/ServiceClass only
}

func be16(hi, lo byte) uint16  { return uint16(hi)<<8 | uint16(lo) }
func put16(b []byte, o int, v uint16) {
	b[o] = byte(v >> 8)
	b[o+1] = byte(v)
}

func encodeCommon(data []byte, m Message) {
	if m.Emergency {
		data[1] |= 0x80
	}
	if m.Priority {
		data[1] |= 0x20
	}
	if m.Duplex {
		data[1] |= 0x10
	}
	data[2] = uint8(m.CallType&0x07)<<5 | uint8(m.TransmissionMode&0x07)
	put16(data, 3, uint16(m.SrcID))
	put16(data, 5, uint16(m.DstID))
}

func decodeCommon(data []byte, m *Message) {
	m.Emergency = data[1]&0x80 != 0
	m.Priority = data[1]&0x20 != 0
	m.Duplex = data[1]&0x10 != 0
	m.CallType = nxdnconst.CallType((data[2] >> 5) & 0x07)
	m.TransmissionMode = nxdnconst.TransmissionMode(data[2] & 0x07)
	m.SrcID = uint32(be16(data[3], data[4]))
	m.DstID = uint32(be16(data[5], data[6]))
	m.Group = m.CallType != nxdnconst.CallTypeIndividual
}

// Decode parses an RCCH-LC message from a raw buffer (max
// nxdnconst.RCCHLCLengthBytes). Unrecognised opcodes return
// ErrUnknownMessageType.
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return Message{}, nxdnconst.ErrMalformedFrame
	}
	m := Message{MessageType: nxdnconst.MessageType(data[0] & 0x3F)}

	switch m.MessageType {
	case nxdnconst.RCCHSiteInfo:
		if len(data) < 22 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		m.Site.LocID = decodeLocID(data[1:4])
		m.Site.ChannelID = data[4] & 0x0F
		m.Site.ChannelNo = be16(data[5], data[6])
		m.Site.ServiceClass = data[7]
		copy(m.Site.Callsign[:], data[8:16])
		m.Site.RequireReg = data[16]&0x80 != 0
		m.Site.NetActive = data[16]&0x40 != 0
		m.Site.BcchCnt = data[17]
		m.Site.RCCHGroupingCnt = data[18]
		m.Site.CCCHPagingCnt = data[19]
		m.Site.CCCHMultiCnt = data[20]
		m.Site.RCCHIterateCnt = data[21]

	case nxdnconst.RCCHSrvInfo:
		if len(data) < 2 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		m.Site.ServiceClass = data[1]

	case nxdnconst.RCCHCchInfo:
		if len(data) < 4 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		m.Site.ChannelNo = be16(data[1], data[2])
		m.RegOption = data[3]

	case nxdnconst.RCCHAdjSiteInfo:
		if len(data) < 7 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		m.Adj.LocID = decodeLocID(data[1:4])
		m.Adj.ChannelNo = be16(data[4], data[5])
		m.Adj.ServiceClass = data[6]

	case nxdnconst.RCCHRegReq, nxdnconst.RCCHRegCReq, nxdnconst.RCCHGrpRegReq:
		if len(data) < 12 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		decodeCommon(data, &m)
		m.LocID = decodeLocID(data[7:10])
		m.RegOption = data[10]
		m.Version = data[11]

	case nxdnconst.RCCHRegRsp, nxdnconst.RCCHRegCRsp, nxdnconst.RCCHGrpRegRsp:
		if len(data) < 8 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		decodeCommon(data, &m)
		m.CauseRsp = nxdnconst.CauseResponse(data[7])

	case nxdnconst.RCCHVCallConnReq:
		if len(data) < 7 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		decodeCommon(data, &m)

	case nxdnconst.RCCHVCallConnRsp:
		if len(data) < 10 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		decodeCommon(data, &m)
		m.CauseRsp = nxdnconst.CauseResponse(data[7])
		m.GrpVchNo = be16(data[8], data[9])

	case nxdnconst.RCCHDCallAssgn:
		if len(data) < 9 {
			return Message{}, nxdnconst.ErrMalformedFrame
		}
		decodeCommon(data, &m)
		m.GrpVchNo = be16(data[7], data[8])

	default:
		return Message{}, nxdnconst.ErrUnknownMessageType
	}

	m.Encrypted = false // RCCH-LC never carries an AlgId/KeyId field (§3)
	return m, nil
}

// Encode serialises m into its opcode's fixed layout.
func Encode(m Message) ([]byte, error) {
	switch m.MessageType {
	case nxdnconst.RCCHSiteInfo:
		data := make([]byte, 22)
		data[0] = uint8(m.MessageType) & 0x3F
		encodeLocID(data[1:4], m.Site.LocID)
		data[4] = m.Site.ChannelID & 0x0F
		put16(data, 5, m.Site.ChannelNo)
		data[7] = m.Site.ServiceClass
		copy(data[8:16], m.Site.Callsign[:])
		if m.Site.RequireReg {
			data[16] |= 0x80
		}
		if m.Site.NetActive {
			data[16] |= 0x40
		}
		data[17] = m.Site.BcchCnt
		data[18] = m.Site.RCCHGroupingCnt
		data[19] = m.Site.CCCHPagingCnt
		data[20] = m.Site.CCCHMultiCnt
		data[21] = m.Site.RCCHIterateCnt
		return data, nil

	case nxdnconst.RCCHSrvInfo:
		data := make([]byte, 2)
		data[0] = uint8(m.MessageType) & 0x3F
		data[1] = m.Site.ServiceClass
		return data, nil

	case nxdnconst.RCCHCchInfo:
		data := make([]byte, 4)
		data[0] = uint8(m.MessageType) & 0x3F
		put16(data, 1, m.Site.ChannelNo)
		data[3] = m.RegOption
		return data, nil

	case nxdnconst.RCCHAdjSiteInfo:
		data := make([]byte, 7)
		data[0] = uint8(m.MessageType) & 0x3F
		encodeLocID(data[1:4], m.Adj.LocID)
		put16(data, 4, m.Adj.ChannelNo)
		data[6] = m.Adj.ServiceClass
		return data, nil

	case nxdnconst.RCCHRegReq, nxdnconst.RCCHRegCReq, nxdnconst.RCCHGrpRegReq:
		data := make([]byte, 12)
		data[0] = uint8(m.MessageType) & 0x3F
		encodeCommon(data, m)
		encodeLocID(data[7:10], m.LocID)
		data[10] = m.RegOption
		data[11] = m.Version
		return data, nil

	case nxdnconst.RCCHRegRsp, nxdnconst.RCCHRegCRsp, nxdnconst.RCCHGrpRegRsp:
		data := make([]byte, 8)
		data[0] = uint8(m.MessageType) & 0x3F
		encodeCommon(data, m)
		data[7] = uint8(m.CauseRsp)
		return data, nil

	case nxdnconst.RCCHVCallConnReq:
		data := make([]byte, 7)
		data[0] = uint8(m.MessageType) & 0x3F
		encodeCommon(data, m)
		return data, nil

	case nxdnconst.RCCHVCallConnRsp:
		data := make([]byte, 10)
		data[0] = uint8(m.MessageType) & 0x3F
		encodeCommon(data, m)
		data[7] = uint8(m.CauseRsp)
		put16(data, 8, m.GrpVchNo)
		return data, nil

	case nxdnconst.RCCHDCallAssgn:
		data := make([]byte, 9)
		data[0] = uint8(m.MessageType) & 0x3F
		encodeCommon(data, m)
		put16(data, 7, m.GrpVchNo)
		return data, nil

	default:
		return nil, nxdnconst.ErrUnknownMessageType
	}
}
