// SPDX-License-Identifier: AGPL-3.0-or-later
package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dvm-nxdn/nxdnhost/internal/core"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
	"github.com/dvm-nxdn/nxdnhost/internal/rcchlc"
)

// Scenario A: registration accept.
func TestScenarioARegistrationAccept(t *testing.T) {
	t.Parallel()
	c, frames := newTestCore(t)

	req := rcchlc.Message{
		MessageType: nxdnconst.RCCHRegReq,
		SrcID:       1001,
		LocID:       rcchlc.LocationID{Category: 0, System: 0x1234, Site: 1},
	}
	data, err := rcchlc.Encode(req)
	require.NoError(t, err)

	err = c.Trunk.OnRF(nxdnconst.FunctionalChannelType(0), nxdnconst.StealOptionNone, buildRCCHFrame(data))
	require.NoError(t, err)
	require.NotEmpty(t, *frames)

	resp, err := rcchlc.Decode((*frames)[len(*frames)-1])
	require.NoError(t, err)
	require.Equal(t, nxdnconst.RCCHRegRsp, resp.MessageType)
	require.Equal(t, nxdnconst.MMRegAccepted, resp.CauseRsp)
	require.Equal(t, uint32(1001), resp.SrcID)
}

// Scenario B+C: group grant, then grant deny once the channel pool is
// exhausted.
func TestScenarioCGrantDenyNoChannel(t *testing.T) {
	t.Parallel()
	c, frames := newTestCore(t)

	grantReq := func(dstID uint32) (rcchlc.Message, error) {
		req := rcchlc.Message{MessageType: nxdnconst.RCCHVCallConnReq, SrcID: 100, DstID: dstID}
		data, err := rcchlc.Encode(req)
		require.NoError(t, err)
		onRFErr := c.Trunk.OnRF(nxdnconst.FunctionalChannelType(0), nxdnconst.StealOptionNone, buildRCCHFrame(data))
		resp, err := rcchlc.Decode((*frames)[len(*frames)-1])
		require.NoError(t, err)
		return resp, onRFErr
	}

	// Three channels in the pool: the first three requests each claim
	// one, the fourth has nothing left to grant.
	for i, dstID := range []uint32{7000, 7001, 7002} {
		resp, err := grantReq(dstID)
		require.NoError(t, err)
		require.Equal(t, nxdnconst.VDAccepted, resp.CauseRsp)
		require.Equal(t, uint16(i+1), resp.GrpVchNo)
	}

	// A denial is sent on the air and also returned as an error.
	resp, err := grantReq(7003)
	require.Error(t, err)
	require.Equal(t, nxdnconst.QueChnResourceNotAvail, resp.CauseRsp)
	require.Equal(t, core.RFRejected, c.RF)
}

// Scenario F: CC superframe cadence — with (BCCH=1, grouping=1,
// paging=2, multi=2, iterate=2) the sequence is exactly one SITE_INFO
// followed by SRV_INFO until the 9-frame sequence wraps.
func TestScenarioFControlChannelSuperframeCadence(t *testing.T) {
	t.Parallel()
	c, frames := newTestCore(t)

	for i := 0; i < 10; i++ {
		c.Clock(nxdnconst.CCPacketIntervalMS * time.Millisecond)
	}

	require.Len(t, *frames, 10)
	for i, raw := range *frames {
		msg, err := rcchlc.Decode(raw)
		require.NoError(t, err)
		if i%9 == 0 {
			require.Equal(t, nxdnconst.RCCHSiteInfo, msg.MessageType, "frame %d", i)
		} else {
			require.Equal(t, nxdnconst.RCCHSrvInfo, msg.MessageType, "frame %d", i)
		}
	}
}
