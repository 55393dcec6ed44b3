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
	"fmt"
	"time"

	"github.com/dvm-nxdn/nxdnhost/internal/activitylog"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
	"github.com/dvm-nxdn/nxdnhost/internal/rtchlc"
	"github.com/dvm-nxdn/nxdnhost/internal/sacch"
)

// CallStats accumulates per-call counters used for the activity log
// line (§4.8).
type CallStats struct {
	Frames           int
	UndecodableLC    int
	AMBEErrors       int
	Bits             int
	StartedAt        time.Time
	SrcID, DstID     uint32
	Group, Encrypted bool
	AlgID            nxdnconst.CipherAlgID
	KeyID            uint8

	minRSSI, maxRSSI, sumRSSI, rssiCount int
}

// VoicePacketHandler carries RF/Net voice and data traffic (§4.8).
type VoicePacketHandler struct {
	c     *Core
	stats CallStats
	reasm sacch.Reassembler
}

func newVoicePacketHandler(c *Core) *VoicePacketHandler {
	return &VoicePacketHandler{c: c}
}

func (v *VoicePacketHandler) OnRF(fct nxdnconst.FunctionalChannelType, option nxdnconst.StealOption, frame []byte) error {
	switch fct {
	case nxdnconst.FunctionalChannelSACCHNS:
		return v.onSACCHNS(frame)
	case nxdnconst.FunctionalChannelSACCHSS, nxdnconst.FunctionalChannelSACCHSSIdle:
		return v.onSACCHSS(frame, option)
	default:
		return nil
	}
}

// OnNet mirrors OnRF's dispatch but drives the Net-side state machine
// (c.NT) instead of the RF one — a network-originated call must never
// be mistaken for an RF call by reusing OnRF and its c.RF mutations.
func (v *VoicePacketHandler) OnNet(fct nxdnconst.FunctionalChannelType, option nxdnconst.StealOption, frame []byte, srcID, dstID uint32, group bool) error {
	switch fct {
	case nxdnconst.FunctionalChannelSACCHNS:
		return v.onNetSACCHNS(frame, srcID, dstID, group)
	case nxdnconst.FunctionalChannelSACCHSS, nxdnconst.FunctionalChannelSACCHSSIdle:
		return v.onNetSACCHSS(frame)
	default:
		return nil
	}
}

// onSACCHNS decodes the FACCH1 payload carried alongside SACCH-NS as an
// RTCH-LC message — ordinarily TX_REL or a late-entry VCALL.
func (v *VoicePacketHandler) onSACCHNS(frame []byte) error {
	f := sacch.DecodeSlot(frame, 0)
	msg, err := rtchlc.Decode(f[:])
	if err != nil {
		v.stats.UndecodableLC++
		return err
	}

	switch msg.MessageType {
	case nxdnconst.RTCHVCall:
		return v.startOrContinueCall(msg)
	case nxdnconst.RTCHTXRel, nxdnconst.RTCHTXRelEx:
		if v.c.RF == RFAudio {
			v.endCall()
		}
		return nil
	default:
		return nil
	}
}

func (v *VoicePacketHandler) startOrContinueCall(msg rtchlc.Message) error {
	if v.c.RF == RFAudio {
		// Mid-call duplicate VCALL: ignored. There is no late-entry
		// path: onSACCHSS does not reassemble SACCH quarters into an LC.
		return nil
	}

	if v.c.NT != NetIdle && v.c.netLastDstID != uint32(msg.DstID) {
		// RF preempts an active Net call bound for a different
		// destination (§4.6 collision/preemption policy).
		v.c.log.Info("RF call preempting active net call",
			"dstId", msg.DstID, "netDstId", v.c.netLastDstID)
		v.c.endNet()
	}

	v.stats = CallStats{
		StartedAt: time.Now(),
		SrcID:     uint32(msg.SrcID),
		DstID:     uint32(msg.DstID),
		Group:     msg.Group,
		Encrypted: msg.Encrypted,
		AlgID:     msg.AlgID,
		KeyID:     msg.KeyID,
	}
	v.c.RF = RFAudio
	v.c.rfLastSrcID, v.c.rfLastDstID = uint32(msg.SrcID), uint32(msg.DstID)
	v.c.rfTimeoutRemain = v.c.cfg.RFTimeout
	v.c.tgHangRemain = v.c.cfg.TGHangTime

	v.c.log.Info("audio call start",
		"proto", "RTCH", "direction", "RF", "src", msg.SrcID, "dst", msg.DstID,
		"group", msg.Group, "encrypted", msg.Encrypted)

	// Build a SACCH-NS/FACCH1 burst mirroring the LC for late-entry
	// receivers, per §4.8.
	out := make([]byte, nxdnconst.FrameLengthBytes)
	data, err := rtchlc.Encode(msg)
	if err == nil {
		var f sacch.FACCH1
		copy(f[:], data)
		sacch.EncodeSlot(out, 0, f)
		_ = v.c.enqueueFrame(out)
	}
	return nil
}

// onNetSACCHNS decodes the FACCH1 payload of a network-originated
// SACCH-NS burst as an RTCH-LC message, starting or ending the Net-side
// call (NET_IDLE/NET_AUDIO, §4.6) — the network-side analogue of
// onSACCHNS.
func (v *VoicePacketHandler) onNetSACCHNS(frame []byte, srcID, dstID uint32, group bool) error {
	f := sacch.DecodeSlot(frame, 0)
	msg, err := rtchlc.Decode(f[:])
	if err != nil {
		return err
	}

	switch msg.MessageType {
	case nxdnconst.RTCHVCall:
		return v.startNetCall(srcID, dstID, group)
	case nxdnconst.RTCHTXRel, nxdnconst.RTCHTXRelEx:
		if v.c.NT == NetAudio {
			v.endNetCall()
		}
		return nil
	default:
		return nil
	}
}

func (v *VoicePacketHandler) startNetCall(srcID, dstID uint32, group bool) error {
	if v.c.NT == NetAudio {
		// Mid-call duplicate VCALL.
		return nil
	}
	v.c.NT = NetAudio
	v.c.netTimeoutRemain = v.c.cfg.NetTimeout

	v.c.log.Info("audio call start",
		"proto", "RTCH", "direction", "Net", "src", srcID, "dst", dstID, "group", group)
	return nil
}

func (v *VoicePacketHandler) endNetCall() {
	summary := fmt.Sprintf("%d->%d", v.c.netLastSrcID, v.c.netLastDstID)
	activitylog.Call(v.c.log, "RTCH", "Net", summary, 0, 0)
	v.c.endNet()
}

// onNetSACCHSS regenerates the 4 AMBE subframes of a network-originated
// superblock while NET_AUDIO is active — the network-side analogue of
// onSACCHSS, with no RF steal/silence-substitution state to track.
func (v *VoicePacketHandler) onNetSACCHSS(frame []byte) error {
	if v.c.NT != NetAudio {
		return nil
	}

	const subframeBytes = 9
	sacchEnd := nxdnconst.FSWLICHSACCHLengthBytes
	for i := 0; i < 4; i++ {
		off := sacchEnd + i*subframeBytes
		if off+subframeBytes > len(frame) {
			break
		}
		regenerateAMBE(frame[off : off+subframeBytes])
	}
	return nil
}

// onSACCHSS decodes the 4 AMBE subframes of one superblock and applies
// the silence-substitution rule when steal is in effect and the
// regeneration error rate exceeds the configured threshold.
func (v *VoicePacketHandler) onSACCHSS(frame []byte, option nxdnconst.StealOption) error {
	if v.c.RF != RFAudio {
		return nil
	}
	v.stats.Frames++

	const subframeBytes = 9
	sacchEnd := nxdnconst.FSWLICHSACCHLengthBytes
	for i := 0; i < 4; i++ {
		off := sacchEnd + i*subframeBytes
		if off+subframeBytes > len(frame) {
			break
		}
		sub := frame[off : off+subframeBytes]
		errs := regenerateAMBE(sub)
		v.stats.AMBEErrors += errs

		threshold := v.c.cfg.SilenceThreshold
		if threshold == 0 {
			threshold = nxdnconst.DefaultSilenceThreshold
		}
		if option != nxdnconst.StealOptionNone && errs > threshold {
			copy(sub, silencePattern[:])
		}
	}
	if v.stats.AMBEErrors > nxdnconst.MaxVoiceErrorsSteal {
		v.stats.AMBEErrors = nxdnconst.MaxVoiceErrorsSteal
	}
	return nil
}

// silencePattern is substituted for an AMBE subframe whose regenerated
// error rate exceeds the configured threshold.
var silencePattern = [9]byte{}

// regenerateAMBE is the AMBE FEC regenerator hook. The actual codec is
// outside this host's scope (§1 Non-goals); this returns the detected
// error count for the silence-threshold decision above.
func regenerateAMBE(subframe []byte) int {
	return 0
}

func (v *VoicePacketHandler) onEndOfTransmission() {
	v.endCall()
}

func (v *VoicePacketHandler) endCall() {
	durationS := float64(v.stats.Frames) / 12.5
	ber := 0.0
	if v.stats.Bits > 0 {
		ber = float64(v.stats.AMBEErrors) * 100 / float64(v.stats.Bits)
	}
	summary := fmt.Sprintf("%d->%d", v.stats.SrcID, v.stats.DstID)
	activitylog.Call(v.c.log, "RTCH", "RF", summary, durationS, ber)
	if v.c.cfg.Authoritative && v.c.rfLastDstID != 0 {
		v.c.aff.ReleaseGrant(v.c.rfLastDstID, false)
	}
	v.c.endRF()
}
