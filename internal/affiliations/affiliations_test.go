// SPDX-License-Identifier: AGPL-3.0-or-later
package affiliations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvm-nxdn/nxdnhost/internal/affiliations"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
)

func TestGroupAffOverwriteReturnsPrevious(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	_, had := tbl.GroupAff(1001, 100)
	assert.False(t, had)

	prev, had := tbl.GroupAff(1001, 200)
	assert.True(t, had)
	assert.Equal(t, uint32(100), prev)
	assert.True(t, tbl.IsGroupAff(1001, 200))
	assert.False(t, tbl.IsGroupAff(1001, 100))
}

func TestUnitReg(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	assert.False(t, tbl.IsUnitReg(1001))
	tbl.UnitReg(1001)
	assert.True(t, tbl.IsUnitReg(1001))
}

func TestGrantChLowestFreeChannelTieBreak(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	tbl.AddRFChannel(3)
	tbl.AddRFChannel(1)
	tbl.AddRFChannel(2)

	ch, err := tbl.GrantCh(0, 100, 1001, 5000, true, true)
	require.NoError(t, err)
	assert.Equal(t, 1, ch)

	ch2, err := tbl.GrantCh(0, 200, 1002, 5000, true, true)
	require.NoError(t, err)
	assert.Equal(t, 2, ch2)
}

func TestGrantChNoChannelAvailable(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	tbl.AddRFChannel(1)
	_, err := tbl.GrantCh(0, 100, 1001, 5000, true, true)
	require.NoError(t, err)

	_, err = tbl.GrantCh(0, 200, 1002, 5000, true, true)
	assert.ErrorIs(t, err, nxdnconst.ErrNoChannel)
}

func TestReleaseGrantReturnsChannelAndFiresCallback(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	tbl.AddRFChannel(1)
	var released uint32
	var forced bool
	tbl.ReleaseCallback = func(dstID uint32, chNo int, f bool) {
		released = dstID
		forced = f
	}

	_, err := tbl.GrantCh(0, 100, 1001, 5000, true, true)
	require.NoError(t, err)
	assert.True(t, tbl.IsChBusy(1))

	tbl.ReleaseGrant(100, true)
	assert.Equal(t, uint32(100), released)
	assert.True(t, forced)
	assert.False(t, tbl.IsChBusy(1))
	assert.False(t, tbl.IsGranted(100))
}

func TestClockExpiresGrants(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	tbl.AddRFChannel(1)
	_, err := tbl.GrantCh(0, 100, 1001, 1000, true, true)
	require.NoError(t, err)

	tbl.Clock(500)
	assert.True(t, tbl.IsGranted(100))

	tbl.Clock(1500)
	assert.False(t, tbl.IsGranted(100))
	assert.True(t, tbl.IsRFChAvailable())
}

func TestTouchGrantExtendsDeadline(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	tbl.AddRFChannel(1)
	_, err := tbl.GrantCh(0, 100, 1001, 1000, true, true)
	require.NoError(t, err)

	tbl.TouchGrant(100, 900, 1000)
	tbl.Clock(1500)
	assert.True(t, tbl.IsGranted(100))
}

func TestGrantedChannelAndSrc(t *testing.T) {
	t.Parallel()
	tbl := affiliations.New()
	tbl.AddRFChannel(7)
	_, err := tbl.GrantCh(0, 100, 1001, 1000, true, true)
	require.NoError(t, err)

	ch, ok := tbl.GrantedChannel(100)
	assert.True(t, ok)
	assert.Equal(t, 7, ch)

	src, ok := tbl.GrantedSrc(100)
	assert.True(t, ok)
	assert.Equal(t, uint32(1001), src)
}
