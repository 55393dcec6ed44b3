// SPDX-License-Identifier: AGPL-3.0-or-later
package rtchlc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
)

func TestVCallRoundTrip(t *testing.T) {
	m := Message{
		MessageType: nxdnconst.RTCHVCall,
		Emergency:   true,
		CallType:    nxdnconst.CallTypeIndividual,
		SrcID:       1234,
		DstID:       5678,
		AlgID:       nxdnconst.CipherAlgNone,
	}
	data, err := Encode(m)
	require.NoError(t, err)
	require.Len(t, data, 8)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, m.SrcID, got.SrcID)
	require.Equal(t, m.DstID, got.DstID)
	require.True(t, got.Emergency)
	require.False(t, got.Group) // INDIVIDUAL -> group=false
}

func TestGroupFlagDerivation(t *testing.T) {
	data, err := Encode(Message{MessageType: nxdnconst.RTCHVCall, CallType: nxdnconst.CallTypeConference})
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	require.True(t, got.Group)
}

func TestDCallDataPrecedenceBugPreserved(t *testing.T) {
	// 0x0F<<4 == 0xF0; so only the high nibble of dataFrameNumber is
	// ever retained at bits 4-7 -- i.e. dataFrameNumber's own high bits,
	// not a left-shift of its low nibble. This pins that legacy quirk.
	m := Message{MessageType: nxdnconst.RTCHDCallData, DataFrameNumber: 0x0A, DataBlockNumber: 0x03}
	data, err := Encode(m)
	require.NoError(t, err)
	require.Equal(t, byte(0x0A&0xF0)+0x03, data[1])
}

func TestDCallHdrCarriesMIWhenEncrypted(t *testing.T) {
	m := Message{
		MessageType: nxdnconst.RTCHDCallHdr,
		AlgID:       nxdnconst.CipherAlgID(1),
		KeyID:       7,
	}
	copy(m.MI[:], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	data, err := Encode(m)
	require.NoError(t, err)
	require.Len(t, data, 19)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, m.MI, got.MI)
}

func TestUnknownOpcode(t *testing.T) {
	_, err := Decode([]byte{0x3D, 0, 0, 0, 0, 0, 0, 0})
	require.ErrorIs(t, err, nxdnconst.ErrUnknownMessageType)
}

func TestVCallRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := Message{
			MessageType: nxdnconst.RTCHVCall,
			Emergency:   rapid.Bool().Draw(rt, "emergency"),
			Priority:    rapid.Bool().Draw(rt, "priority"),
			CallType:    nxdnconst.CallType(rapid.IntRange(0, 7).Draw(rt, "callType")),
			SrcID:       uint16(rapid.IntRange(0, 0xFFFF).Draw(rt, "src")),
			DstID:       uint16(rapid.IntRange(0, 0xFFFF).Draw(rt, "dst")),
		}
		data, err := Encode(m)
		require.NoError(rt, err)
		got, err := Decode(data)
		require.NoError(rt, err)
		require.Equal(rt, m.SrcID, got.SrcID)
		require.Equal(rt, m.DstID, got.DstID)
		require.Equal(rt, m.Emergency, got.Emergency)
		require.Equal(rt, m.Priority, got.Priority)
	})
}
