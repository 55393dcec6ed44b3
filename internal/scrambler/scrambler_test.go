// SPDX-License-Identifier: AGPL-3.0-or-later
package scrambler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
)

func TestApplyIsInvolutive(t *testing.T) {
	frame := make([]byte, nxdnconst.FrameLengthBytes)
	for i := range frame {
		frame[i] = byte(i * 7)
	}
	want := append([]byte(nil), frame...)

	Apply(frame)
	require.NotEqual(t, want, frame)

	Apply(frame)
	require.Equal(t, want, frame)
}

func TestApplyShorterThanMaskDoesNotPanic(t *testing.T) {
	frame := []byte{0x01, 0x02, 0x03}
	require.NotPanics(t, func() { Apply(frame) })
}
