// SPDX-License-Identifier: AGPL-3.0-or-later
package fsw

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
)

func TestAddThenPresent(t *testing.T) {
	frame := make([]byte, nxdnconst.FrameLengthBytes)
	for i := range frame {
		frame[i] = 0xFF
	}

	Add(frame)
	require.True(t, Present(frame))

	// The low nibble of the third byte is outside the FSW mask and must
	// survive untouched.
	require.Equal(t, byte(0x0F), frame[2]&0x0F)
}

func TestPresentRejectsGarbage(t *testing.T) {
	frame := make([]byte, nxdnconst.FrameLengthBytes)
	require.False(t, Present(frame))
}
