// SPDX-License-Identifier: AGPL-3.0-or-later
package sacch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSACCHEncodeDecodeRoundTrip(t *testing.T) {
	s := SACCH{RAN: 7, Structure: Structure2of4, Payload: [payloadBytes]byte{0x11, 0x22, 0x33}}

	frame := make([]byte, 64)
	Encode(frame, s)

	got := Decode(frame)
	require.Equal(t, s, got)
}

func TestFACCH1SlotsAreIndependent(t *testing.T) {
	frame := make([]byte, 64)
	first := FACCH1{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	second := FACCH1{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	EncodeSlot(frame, 0, first)
	EncodeSlot(frame, 1, second)

	require.Equal(t, first, DecodeSlot(frame, 0))
	require.Equal(t, second, DecodeSlot(frame, 1))
}

func TestReassemblerCompletesInOrder(t *testing.T) {
	var r Reassembler
	q1 := [payloadBytes]byte{1, 2, 3}
	q2 := [payloadBytes]byte{4, 5, 6}
	q3 := [payloadBytes]byte{7, 8, 9}
	q4 := [payloadBytes]byte{10, 11, 12}

	_, done := r.Add(Structure1of4, q1)
	require.False(t, done)
	_, done = r.Add(Structure2of4, q2)
	require.False(t, done)
	_, done = r.Add(Structure3of4, q3)
	require.False(t, done)
	record, done := r.Add(Structure4of4, q4)
	require.True(t, done)
	require.Equal(t, [12]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, record)
}

func TestReassemblerResetsOnOutOfOrderQuarter(t *testing.T) {
	var r Reassembler
	_, done := r.Add(Structure2of4, [payloadBytes]byte{1, 2, 3})
	require.False(t, done)

	_, done = r.Add(Structure3of4, [payloadBytes]byte{4, 5, 6})
	require.False(t, done, "a 3/4 quarter arriving without a preceding 1/4+2/4 must not complete")
}

func TestStructureWireValuesMatchOriginalSource(t *testing.T) {
	// original_source/nxdn/NXDNDefines.h: NXDN_SR_SINGLE=0, NXDN_SR_4_4=0,
	// NXDN_SR_3_4=1, NXDN_SR_2_4=2, NXDN_SR_1_4=3.
	require.Equal(t, Structure(0), StructureSingle)
	require.Equal(t, Structure(0), Structure4of4)
	require.Equal(t, Structure(1), Structure3of4)
	require.Equal(t, Structure(2), Structure2of4)
	require.Equal(t, Structure(3), Structure1of4)
}
