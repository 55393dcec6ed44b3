// SPDX-License-Identifier: AGPL-3.0-or-later
package accesscontrol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvm-nxdn/nxdnhost/internal/accesscontrol"
)

func TestAllowSrcDefaultAllow(t *testing.T) {
	t.Parallel()
	l := accesscontrol.NewList(accesscontrol.Snapshot{DefaultAllow: true})
	assert.True(t, l.AllowSrc(1001))
}

func TestAllowSrcDefaultDeny(t *testing.T) {
	t.Parallel()
	l := accesscontrol.NewList(accesscontrol.Snapshot{DefaultAllow: false})
	assert.False(t, l.AllowSrc(1001))
}

func TestAllowSrcRangeBoundary(t *testing.T) {
	t.Parallel()
	l := accesscontrol.NewList(accesscontrol.Snapshot{
		DefaultAllow: false,
		AllowRanges:  []accesscontrol.IDRange{{Min: 100, Max: 200}},
	})
	assert.True(t, l.AllowSrc(100), "lower bound should match")
	assert.True(t, l.AllowSrc(200), "upper bound should match")
	assert.False(t, l.AllowSrc(99), "below range should not match")
	assert.False(t, l.AllowSrc(201), "above range should not match")
}

func TestBlacklistOverridesAllowRange(t *testing.T) {
	t.Parallel()
	l := accesscontrol.NewList(accesscontrol.Snapshot{
		DefaultAllow: false,
		AllowRanges:  []accesscontrol.IDRange{{Min: 100, Max: 200}},
		Blacklist:    map[uint32]bool{150: true},
	})
	assert.False(t, l.AllowSrc(150))
	assert.True(t, l.AllowSrc(160))
}

func TestWhitelistOverridesDenyRange(t *testing.T) {
	t.Parallel()
	l := accesscontrol.NewList(accesscontrol.Snapshot{
		DefaultAllow: true,
		DenyRanges:   []accesscontrol.IDRange{{Min: 100, Max: 200}},
		Whitelist:    map[uint32]bool{150: true},
	})
	assert.True(t, l.AllowSrc(150))
	assert.False(t, l.AllowSrc(160))
}

func TestAllowTGEmptyRangesPermitsAll(t *testing.T) {
	t.Parallel()
	l := accesscontrol.NewList(accesscontrol.Snapshot{})
	assert.True(t, l.AllowTG(9999))
}

func TestReloadSwapsSnapshot(t *testing.T) {
	t.Parallel()
	l := accesscontrol.NewList(accesscontrol.Snapshot{DefaultAllow: false})
	assert.False(t, l.AllowSrc(42))
	l.Reload(accesscontrol.Snapshot{DefaultAllow: true})
	assert.True(t, l.AllowSrc(42))
}
