// SPDX-License-Identifier: AGPL-3.0-or-later
package lich

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := LICH{
			RFCT:     nxdnconst.RFChannelType(rapid.IntRange(0, 3).Draw(rt, "rfct")),
			FCT:      nxdnconst.FunctionalChannelType(rapid.IntRange(0, 3).Draw(rt, "fct")),
			Option:   nxdnconst.StealOption(rapid.IntRange(0, 3).Draw(rt, "option")),
			Outbound: rapid.Bool().Draw(rt, "outbound"),
		}

		frame := make([]byte, nxdnconst.FrameLengthBytes)
		Encode(frame, l)

		got, err := Decode(frame)
		require.NoError(rt, err)
		require.Equal(rt, l.RFCT, got.RFCT)
		require.Equal(rt, l.FCT, got.FCT)
		require.Equal(rt, l.Option, got.Option)
		require.Equal(rt, l.Outbound, got.Outbound)
	})
}

func TestDecodeRejectsBadParity(t *testing.T) {
	frame := make([]byte, nxdnconst.FrameLengthBytes)
	Encode(frame, LICH{RFCT: 1, FCT: 2, Option: 0, Outbound: true})

	// Flip the parity bit without recomputing it.
	offset := uint(nxdnconst.FSWLengthBits) + 14
	byteIdx := offset / 8
	frame[byteIdx] ^= 0x80 >> (offset % 8)

	_, err := Decode(frame)
	require.ErrorIs(t, err, nxdnconst.ErrInvalidParity)
}
