// SPDX-License-Identifier: AGPL-3.0-or-later
package core_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dvm-nxdn/nxdnhost/internal/accesscontrol"
	"github.com/dvm-nxdn/nxdnhost/internal/affiliations"
	"github.com/dvm-nxdn/nxdnhost/internal/core"
	"github.com/dvm-nxdn/nxdnhost/internal/fsw"
	"github.com/dvm-nxdn/nxdnhost/internal/lich"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
	"github.com/dvm-nxdn/nxdnhost/internal/rcchlc"
	"github.com/dvm-nxdn/nxdnhost/internal/rtchlc"
	"github.com/dvm-nxdn/nxdnhost/internal/sacch"
	"github.com/dvm-nxdn/nxdnhost/internal/scrambler"
)

// newTestCoreWithLog is newTestCore plus a text-captured logger, for the
// one scenario (E) whose expectation is an activity-log line rather
// than an enqueued frame or exported status field.
func newTestCoreWithLog(t *testing.T) (*core.Core, *[][]byte, *bytes.Buffer) {
	t.Helper()
	var frames [][]byte
	var buf bytes.Buffer
	acl := accesscontrol.NewList(accesscontrol.Snapshot{DefaultAllow: true})
	aff := affiliations.New()
	aff.AddRFChannel(1)
	aff.AddRFChannel(2)
	aff.AddRFChannel(3)

	site := rcchlc.SiteInfo{
		LocID:           rcchlc.LocationID{Category: 0, System: 0x1234, Site: 1},
		BcchCnt:         1,
		RCCHGroupingCnt: 1,
		CCCHPagingCnt:   2,
		CCCHMultiCnt:    2,
		RCCHIterateCnt:  2,
	}
	cfg := core.Config{Authoritative: true, RFTimeout: 5 * time.Second, GrantTTL: 5 * time.Second}
	log := slog.New(slog.NewTextHandler(&buf, nil))

	c := core.New(cfg, log, acl, aff, site, func(f []byte) error {
		cp := append([]byte(nil), f...)
		frames = append(frames, cp)
		return nil
	})
	return c, &frames, &buf
}

// buildRTCHFrame assembles a complete RTCH air frame carrying msg as the
// FACCH1 payload of the requested functional channel, scrambled the way
// a real over-the-air burst would arrive.
func buildRTCHFrame(t *testing.T, fct nxdnconst.FunctionalChannelType, msg rtchlc.Message) []byte {
	t.Helper()
	data, err := rtchlc.Encode(msg)
	require.NoError(t, err)

	frame := make([]byte, nxdnconst.FrameLengthBytes)
	fsw.Add(frame)
	lich.Encode(frame, lich.LICH{RFCT: nxdnconst.RFChannelTypeRTCH, FCT: fct, Option: nxdnconst.StealOptionNone})

	var f sacch.FACCH1
	copy(f[:], data)
	sacch.EncodeSlot(frame, 0, f)

	scrambler.Apply(frame)
	return frame
}

// buildVoiceTrafficFrame builds one SACCH-SS superblock with no steal in
// effect, the shape consumed by VoicePacketHandler.onSACCHSS.
func buildVoiceTrafficFrame(t *testing.T) []byte {
	t.Helper()
	frame := make([]byte, nxdnconst.FrameLengthBytes)
	fsw.Add(frame)
	lich.Encode(frame, lich.LICH{RFCT: nxdnconst.RFChannelTypeRTCH, FCT: nxdnconst.FunctionalChannelSACCHSS, Option: nxdnconst.StealOptionNone})
	scrambler.Apply(frame)
	return frame
}

// Scenario D: traffic collision. RF_AUDIO active on dstId=7000,
// srcId=100; an incoming net VCALL_REQ for the same destination from a
// different source (srcId=200) must be dropped, not treated as a
// voting condition.
func TestScenarioDTrafficCollision(t *testing.T) {
	t.Parallel()
	c, _ := newTestCore(t)

	start := buildRTCHFrame(t, nxdnconst.FunctionalChannelSACCHNS, rtchlc.Message{
		MessageType: nxdnconst.RTCHVCall,
		SrcID:       100,
		DstID:       7000,
		CallType:    nxdnconst.CallTypeConference,
	})
	require.NoError(t, c.ProcessRF(nxdnconst.FrameTagData, start))
	require.Equal(t, core.RFAudio, c.RF)

	netFrame := make([]byte, nxdnconst.FrameLengthBytes)
	err := c.ProcessNet(200, 7000, netFrame, true)
	require.ErrorIs(t, err, nxdnconst.ErrTrafficCollision)
	require.Equal(t, core.RFAudio, c.RF, "RF call must survive the collision untouched")
	require.Equal(t, core.NetIdle, c.NT, "the colliding net frame must never be adopted")
}

// Scenario E: TX_REL end-of-call. RF_AUDIO on dstId=7000 runs for 62
// frames, then an RTCH TX_REL ends the call: the activity log records
// duration ~= 62/12.5 = 4.96s, RF returns to LISTENING, and the
// channel grant held for 7000 is released back to the pool.
func TestScenarioETXRelEndOfCall(t *testing.T) {
	t.Parallel()
	c, frames, log := newTestCoreWithLog(t)

	grant := func(dstID uint32) rcchlc.Message {
		req := rcchlc.Message{MessageType: nxdnconst.RCCHVCallConnReq, SrcID: 100, DstID: dstID}
		data, err := rcchlc.Encode(req)
		require.NoError(t, err)
		require.NoError(t, c.Trunk.OnRF(nxdnconst.FunctionalChannelType(0), nxdnconst.StealOptionNone, buildRCCHFrame(data)))
		resp, err := rcchlc.Decode((*frames)[len(*frames)-1])
		require.NoError(t, err)
		return resp
	}

	// Exhaust the 3-channel pool, including dstId=7000.
	r := grant(7000)
	require.Equal(t, nxdnconst.VDAccepted, r.CauseRsp)
	require.Equal(t, uint16(1), r.GrpVchNo)
	require.Equal(t, nxdnconst.VDAccepted, grant(7001).CauseRsp)
	require.Equal(t, nxdnconst.VDAccepted, grant(7002).CauseRsp)

	start := buildRTCHFrame(t, nxdnconst.FunctionalChannelSACCHNS, rtchlc.Message{
		MessageType: nxdnconst.RTCHVCall,
		SrcID:       100,
		DstID:       7000,
		CallType:    nxdnconst.CallTypeConference,
	})
	require.NoError(t, c.ProcessRF(nxdnconst.FrameTagData, start))
	require.Equal(t, core.RFAudio, c.RF)

	traffic := buildVoiceTrafficFrame(t)
	for i := 0; i < 62; i++ {
		require.NoError(t, c.ProcessRF(nxdnconst.FrameTagData, traffic))
	}

	txRel := buildRTCHFrame(t, nxdnconst.FunctionalChannelSACCHNS, rtchlc.Message{
		MessageType: nxdnconst.RTCHTXRel,
		SrcID:       100,
		DstID:       7000,
	})
	require.NoError(t, c.ProcessRF(nxdnconst.FrameTagData, txRel))

	require.Equal(t, core.RFListening, c.RF)
	require.Contains(t, log.String(), "RTCH, RF, 100->7000")
	require.Contains(t, log.String(), "duration=")

	// The channel held for 7000 must be back in the free pool: a fourth,
	// previously unservable request now succeeds with the lowest free
	// channel (1, the one 7000 held).
	fourth := grant(7003)
	require.Equal(t, nxdnconst.VDAccepted, fourth.CauseRsp)
	require.Equal(t, uint16(1), fourth.GrpVchNo)
}
