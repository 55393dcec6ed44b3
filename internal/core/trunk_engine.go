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

package core

import (
	"time"

	"github.com/dvm-nxdn/nxdnhost/internal/activitylog"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
	"github.com/dvm-nxdn/nxdnhost/internal/rcchlc"
	"github.com/dvm-nxdn/nxdnhost/internal/sacch"
)

// TrunkEngine processes inbound RCCH traffic and drives the outbound
// control-channel broadcast cadence (§4.7).
type TrunkEngine struct {
	c *Core

	ccTickRemain time.Duration
}

func newTrunkEngine(c *Core) *TrunkEngine {
	return &TrunkEngine{c: c}
}

// OnRF handles one decoded RCCH burst.
func (t *TrunkEngine) OnRF(fct nxdnconst.FunctionalChannelType, option nxdnconst.StealOption, frame []byte) error {
	rcchBytes := frame[nxdnconst.FSWLICHSACCHLengthBytes:]
	if len(rcchBytes) > nxdnconst.RCCHLCLengthBytes {
		rcchBytes = rcchBytes[:nxdnconst.RCCHLCLengthBytes]
	}

	msg, err := rcchlc.Decode(rcchBytes)
	if err != nil {
		return err
	}

	if s := sacch.Decode(frame); s.RAN != t.c.cfg.RAN && s.RAN != 0 {
		return nxdnconst.ErrRANMismatch
	}

	if t.c.RF != RFData {
		t.c.RF = RFData
	}

	switch msg.MessageType {
	case nxdnconst.RCCHVCallConnReq:
		return t.handleVCallReq(msg)
	case nxdnconst.RCCHRegReq:
		return t.handleRegReq(msg)
	case nxdnconst.RCCHGrpRegReq:
		return t.handleGrpRegReq(msg)
	default:
		return nxdnconst.ErrUnknownMessageType
	}
}

func (t *TrunkEngine) deny(cause nxdnconst.CauseResponse) error {
	t.c.RF = RFRejected
	resp := rcchlc.Message{MessageType: nxdnconst.RCCHVCallConnRsp, CauseRsp: cause}
	data, _ := rcchlc.Encode(resp)
	_ = t.c.enqueueFrame(data)
	activitylog.Denial(t.c.log, "RCCH", "VCALL_CONN_REQ", cause.String())
	return nxdnconst.ErrNotPermitted
}

func (t *TrunkEngine) handleVCallReq(msg rcchlc.Message) error {
	if !t.c.acl.AllowSrc(msg.SrcID) {
		return t.deny(nxdnconst.VDReqUnitNotPerm)
	}
	if !t.c.acl.AllowTG(msg.DstID) {
		return t.deny(nxdnconst.VDTgtUnitNotPerm)
	}
	if t.c.cfg.VerifyAff && !t.c.aff.IsGroupAff(msg.SrcID, msg.DstID) {
		return t.deny(nxdnconst.VDReqUnitNotReg)
	}

	if t.c.cfg.Authoritative {
		return t.grant(msg.SrcID, msg.DstID, true)
	}
	// Non-authoritative: forward the request upstream; the caller's
	// NetIO.WriteGrantReq implements the actual RPC (§6).
	return nil
}

// grant implements the grant procedure (§4.7).
func (t *TrunkEngine) grant(srcID, dstID uint32, group bool) error {
	if ch, ok := t.c.aff.GrantedChannel(dstID); ok {
		return t.respondGrant(ch, srcID, dstID, group)
	}

	if t.c.rfLastDstID == dstID || t.c.netLastDstID == dstID {
		return t.deny(nxdnconst.QueGrpBusy)
	}
	if t.c.tgHangRemain > 0 && t.c.rfLastDstID != 0 && t.c.rfLastDstID != dstID {
		return t.deny(nxdnconst.QueGrpBusy)
	}

	nowMS := time.Now().UnixMilli()
	ch, err := t.c.aff.GrantCh(nowMS, dstID, srcID, t.c.cfg.GrantTTL.Milliseconds(), group, true)
	if err != nil {
		return t.deny(nxdnconst.QueChnResourceNotAvail)
	}
	return t.respondGrant(ch, srcID, dstID, group)
}

func (t *TrunkEngine) respondGrant(ch int, srcID, dstID uint32, group bool) error {
	resp := rcchlc.Message{
		MessageType: nxdnconst.RCCHVCallConnRsp,
		SrcID:       srcID,
		DstID:       dstID,
		GrpVchNo:    uint16(ch),
		Group:       group,
		CauseRsp:    nxdnconst.VDAccepted,
	}
	data, err := rcchlc.Encode(resp)
	if err != nil {
		return err
	}
	return t.c.enqueueFrame(data)
}

func (t *TrunkEngine) handleRegReq(msg rcchlc.Message) error {
	if !t.c.acl.AllowSrc(msg.SrcID) {
		return t.respondReg(msg.SrcID, nxdnconst.MMRegRefused)
	}
	if msg.LocID != LocationIDFromSite(t.c.site) {
		return t.respondReg(msg.SrcID, nxdnconst.MMRegFailed)
	}
	t.c.aff.UnitReg(msg.SrcID)
	return t.respondReg(msg.SrcID, nxdnconst.MMRegAccepted)
}

func (t *TrunkEngine) respondReg(srcID uint32, cause nxdnconst.CauseResponse) error {
	resp := rcchlc.Message{MessageType: nxdnconst.RCCHRegRsp, SrcID: srcID, CauseRsp: cause}
	data, err := rcchlc.Encode(resp)
	if err != nil {
		return err
	}
	return t.c.enqueueFrame(data)
}

func (t *TrunkEngine) handleGrpRegReq(msg rcchlc.Message) error {
	if msg.LocID != LocationIDFromSite(t.c.site) {
		return t.respondGrpReg(msg.SrcID, nxdnconst.MMLocAcptGrpRefuse)
	}
	if !t.c.acl.AllowSrc(msg.SrcID) {
		return t.respondGrpReg(msg.SrcID, nxdnconst.MMLocAcptGrpRefuse)
	}
	if t.c.cfg.VerifyReg && !t.c.aff.IsUnitReg(msg.SrcID) {
		return t.respondGrpReg(msg.SrcID, nxdnconst.MMLocAcptGrpRefuse)
	}
	if !t.c.acl.AllowTG(msg.DstID) {
		return t.respondGrpReg(msg.SrcID, nxdnconst.MMLocAcptGrpRefuse)
	}
	t.c.aff.GroupAff(msg.SrcID, msg.DstID)
	return t.respondGrpReg(msg.SrcID, nxdnconst.MMRegAccepted)
}

func (t *TrunkEngine) respondGrpReg(srcID uint32, cause nxdnconst.CauseResponse) error {
	resp := rcchlc.Message{MessageType: nxdnconst.RCCHGrpRegRsp, SrcID: srcID, CauseRsp: cause}
	data, err := rcchlc.Encode(resp)
	if err != nil {
		return err
	}
	return t.c.enqueueFrame(data)
}

// LocationIDFromSite extracts the comparable LocationID from a site's
// broadcast SiteInfo.
func LocationIDFromSite(s rcchlc.SiteInfo) rcchlc.LocationID { return s.LocID }

// maxSeq is the configured CAC superframe length (§4.7).
func (t *TrunkEngine) maxSeq() int { return t.c.site.MaxSeq() }

// clockTick advances the CC broadcast cadence (80 ms) and, once due,
// emits the next frame of the current superframe sequence.
func (t *TrunkEngine) clockTick(dt time.Duration) {
	t.ccTickRemain -= dt
	if t.ccTickRemain > 0 {
		return
	}
	t.ccTickRemain = nxdnconst.CCPacketIntervalMS * time.Millisecond

	if t.c.ccHalted || t.c.RF != RFListening || t.c.NT != NetIdle {
		return
	}

	t.writeControlData()
}

// writeControlData emits one CC frame for the current sequence position
// and advances seq/frameCnt per the superframe schedule (§4.7 testable
// property 14).
func (t *TrunkEngine) writeControlData() {
	max := t.maxSeq()
	if max <= 0 {
		max = 9
	}

	// Only the first frame of the superframe is SITE_INFO; every other
	// sequence position carries SRV_INFO (original_source/src/nxdn/
	// packet/Trunk.cpp: only n==0 is special-cased, default emits
	// SRV_INFO), matching "one SITE_INFO followed by successive
	// SRV_INFO frames until seq wraps."
	var msg rcchlc.Message
	if t.c.ccSeq == 0 {
		msg = rcchlc.Message{MessageType: nxdnconst.RCCHSiteInfo, Site: t.c.site}
	} else {
		msg = rcchlc.Message{MessageType: nxdnconst.RCCHSrvInfo, Site: rcchlc.SiteInfo{ServiceClass: t.c.site.ServiceClass}}
	}

	data, err := rcchlc.Encode(msg)
	if err == nil {
		_ = t.c.enqueueFrame(data)
	}

	t.c.ccSeq++
	if t.c.ccSeq >= max {
		t.c.ccSeq = 0
		t.c.ccFrameCnt = (t.c.ccFrameCnt + 1) % nxdnconst.CCFrameCntModulo
	}
}
