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

// Package core runs the NXDN Type-C protocol state machine: the
// RF/Net dispatchers of ProtocolCore, the control-channel logic of
// TrunkEngine, and the per-call bookkeeping of VoicePacketHandler.
// Every entry point is driven by exactly one of process_rf,
// process_net, or clock, and none may run concurrently against the
// same Core (§5). Core holds no lock: ProcessRF, ProcessNet and Clock
// run on one goroutine, and other goroutines reach the core only
// through PostCommand/Call, whose queued functions Clock runs.
package core

import (
	"log/slog"
	"time"

	"github.com/dvm-nxdn/nxdnhost/internal/accesscontrol"
	"github.com/dvm-nxdn/nxdnhost/internal/affiliations"
	"github.com/dvm-nxdn/nxdnhost/internal/fsw"
	"github.com/dvm-nxdn/nxdnhost/internal/lich"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
	"github.com/dvm-nxdn/nxdnhost/internal/rcchlc"
	"github.com/dvm-nxdn/nxdnhost/internal/scrambler"
)

// RFState is the RF-side protocol state (§4.6).
type RFState int

const (
	RFListening RFState = iota
	RFAudio
	RFData
	RFRejected
)

// NetState is the network-side protocol state.
type NetState int

const (
	NetIdle NetState = iota
	NetAudio
	NetData
)

// Contract is the narrow surface VoicePacketHandler and TrunkEngine are
// given instead of a mutable *Core pointer (§9): enqueue an outbound
// frame, read the read-mostly site data, and be told a grant ended.
type Contract interface {
	EnqueueFrame(frame []byte) error
	SiteData() rcchlc.SiteInfo
	NotifyRelease(dstID uint32, chNo int, forced bool)
}

// Config are the tunables loaded once at startup (§7 "Persisted state").
type Config struct {
	RAN              uint8
	Authoritative    bool
	VerifyAff        bool
	VerifyReg        bool
	RFTimeout        time.Duration
	NetTimeout       time.Duration
	TGHangTime       time.Duration
	GrantTTL         time.Duration
	SilenceThreshold int
	PermittedTG      uint32 // only used when !Authoritative
}

// Core is the top-level protocol state machine for one site.
type Core struct {
	cfg  Config
	log  *slog.Logger
	acl  *accesscontrol.List
	aff  *affiliations.Table
	site rcchlc.SiteInfo

	RF RFState
	NT NetState

	rfLastDstID  uint32
	rfLastSrcID  uint32
	netLastDstID uint32
	netLastSrcID uint32

	rfLastLICH lich.LICH
	haveLICH   bool

	rfTimeoutRemain  time.Duration
	netTimeoutRemain time.Duration
	watchdogRemain   time.Duration
	tgHangRemain     time.Duration

	ccHalted   bool
	ccFrameCnt uint8
	ccSeq      int

	Trunk *TrunkEngine
	Voice *VoicePacketHandler

	enqueue func(frame []byte) error

	// Commands is the buffered channel admin handlers post mutations
	// and queries onto. Clock drains it before advancing timers so
	// nothing outside the core's own goroutine ever touches core state
	// directly (§5, §9's Contract design note).
	Commands chan func(*Core)
}

const commandQueueDepth = 32

// New builds a Core wired to the given access-control list, affiliation
// table, site data, and an outbound-frame sink (ordinarily
// framering.Ring.Add).
func New(cfg Config, log *slog.Logger, acl *accesscontrol.List, aff *affiliations.Table, site rcchlc.SiteInfo, enqueue func([]byte) error) *Core {
	c := &Core{
		cfg:      cfg,
		log:      log,
		acl:      acl,
		aff:      aff,
		site:     site,
		enqueue:  enqueue,
		Commands: make(chan func(*Core), commandQueueDepth),
	}
	c.Trunk = newTrunkEngine(c)
	c.Voice = newVoicePacketHandler(c)
	return c
}

// PostCommand enqueues fn to run on the core's own goroutine at the
// start of the next Clock tick. It returns ErrQueueFull if the command
// queue is backed up.
func (c *Core) PostCommand(fn func(*Core)) error {
	select {
	case c.Commands <- fn:
		return nil
	default:
		return nxdnconst.ErrQueueFull
	}
}

// Call posts fn and blocks until it has run on the core's goroutine,
// returning its result. Used by read-only admin queries (status,
// active grants) that must not race the RF/Net dispatch path.
func (c *Core) Call(fn func(*Core) any) any {
	result := make(chan any, 1)
	if err := c.PostCommand(func(cc *Core) { result <- fn(cc) }); err != nil {
		return nil
	}
	return <-result
}

func (c *Core) drainCommands() {
	for {
		select {
		case cmd := <-c.Commands:
			cmd(c)
		default:
			return
		}
	}
}

func (c *Core) enqueueFrame(frame []byte) error {
	if c.enqueue == nil {
		return nil
	}
	return c.enqueue(frame)
}

// EnqueueFrame implements Contract.
func (c *Core) EnqueueFrame(frame []byte) error { return c.enqueueFrame(frame) }

// SiteData implements Contract.
func (c *Core) SiteData() rcchlc.SiteInfo { return c.site }

// NotifyRelease implements Contract.
func (c *Core) NotifyRelease(dstID uint32, chNo int, forced bool) {
	c.log.Info("grant released", "dstId", dstID, "chNo", chNo, "forced", forced)
}

func (c *Core) endRF() {
	c.RF = RFListening
	c.haveLICH = false
	c.rfTimeoutRemain = 0
	c.rfLastDstID, c.rfLastSrcID = 0, 0
}

func (c *Core) endNet() {
	c.NT = NetIdle
	c.netTimeoutRemain = 0
	c.watchdogRemain = 0
	c.netLastDstID, c.netLastSrcID = 0, 0
}

// ProcessRF dispatches one inbound RF burst (§4.6).
func (c *Core) ProcessRF(tag nxdnconst.FrameTag, payload []byte) error {
	if tag == nxdnconst.FrameTagLost {
		switch c.RF {
		case RFAudio:
			c.Voice.onEndOfTransmission()
			if c.cfg.Authoritative && c.rfLastDstID != 0 {
				c.aff.ReleaseGrant(c.rfLastDstID, false)
			}
			c.endRF()
		case RFData:
			c.endRF()
		default:
			c.RF = RFListening
		}
		return nil
	}

	frame := make([]byte, len(payload))
	copy(frame, payload)
	scrambler.Apply(frame)

	l, err := lich.Decode(frame)
	if err != nil {
		if c.RF == RFListening {
			return nxdnconst.ErrInvalidParity
		}
	} else {
		c.rfLastLICH = l
		c.haveLICH = true
	}

	if c.ccRunning() && !c.isInboundCAC(l) {
		c.ccHalted = true
	}

	if !c.haveLICH {
		return nil
	}

	switch c.rfLastLICH.RFCT {
	case nxdnconst.RFChannelTypeRCCH:
		return c.Trunk.OnRF(c.rfLastLICH.FCT, c.rfLastLICH.Option, frame)
	case nxdnconst.RFChannelTypeRTCH, nxdnconst.RFChannelTypeRDCH:
		return c.Voice.OnRF(c.rfLastLICH.FCT, c.rfLastLICH.Option, frame)
	default:
		return nil
	}
}

func (c *Core) ccRunning() bool { return c.ccSeq != 0 && !c.ccHalted }

func (c *Core) isInboundCAC(l lich.LICH) bool {
	return l.RFCT == nxdnconst.RFChannelTypeRCCH
}

// ProcessNet dispatches one inbound network frame.
func (c *Core) ProcessNet(srcID, dstID uint32, frame []byte, group bool) error {
	if c.RF == RFListening && c.NT == NetIdle {
		c.endRF()
		c.endNet()
	}

	if c.RF != RFListening {
		switch {
		case c.rfLastDstID == dstID && c.rfLastSrcID == srcID:
			c.log.Warn("voting condition", "dstId", dstID, "srcId", srcID)
			return nxdnconst.ErrTrafficCollision
		case c.rfLastDstID == dstID:
			// RF is already active on this destination from a
			// different source: the net frame is a traffic collision,
			// not a voting condition.
			c.log.Warn("traffic collision", "dstId", dstID, "srcId", srcID)
			return nxdnconst.ErrTrafficCollision
		case c.tgHangRemain > 0:
			return nxdnconst.ErrTrafficCollision
		}
	}

	if !c.cfg.Authoritative && dstID != c.cfg.PermittedTG {
		return nxdnconst.ErrNotPermitted
	}

	c.watchdogRemain = nxdnconst.NetworkWatchdogMS * time.Millisecond
	c.netLastDstID, c.netLastSrcID = dstID, srcID

	l, err := lich.Decode(frame)
	if err != nil {
		c.endNet()
		c.log.Warn("invalid net frame")
		return nxdnconst.ErrMalformedFrame
	}

	switch l.RFCT {
	case nxdnconst.RFChannelTypeRTCH, nxdnconst.RFChannelTypeRDCH:
		return c.Voice.OnNet(l.FCT, l.Option, frame, srcID, dstID, group)
	default:
		return nil
	}
}

// Clock advances all timers by dt (§4.6).
func (c *Core) Clock(dt time.Duration) {
	c.drainCommands()

	nowMS := time.Now().UnixMilli()
	c.aff.Clock(nowMS)

	if c.rfTimeoutRemain > 0 {
		c.rfTimeoutRemain -= dt
		if c.rfTimeoutRemain <= 0 {
			c.endRF()
		}
	}
	if c.netTimeoutRemain > 0 {
		c.netTimeoutRemain -= dt
		if c.netTimeoutRemain <= 0 {
			c.endNet()
		}
	}
	if c.watchdogRemain > 0 {
		c.watchdogRemain -= dt
		if c.watchdogRemain <= 0 {
			c.log.Warn("network watchdog expired")
			c.endNet()
		}
	}
	if c.tgHangRemain > 0 {
		c.tgHangRemain -= dt
		if c.tgHangRemain < 0 {
			c.tgHangRemain = 0
		}
	}

	if c.RF == RFListening && c.NT == NetIdle {
		c.ccHalted = false
	}

	c.Trunk.clockTick(dt)
}

// Fsw re-exported for callers assembling an outbound frame: insert the
// Frame Sync Word after scrambling (symmetric with descrambling on
// ingress, mirroring ProcessRF's own use of the scrambler and fsw
// packages).
func Fsw(frame []byte) { fsw.Add(frame) }
