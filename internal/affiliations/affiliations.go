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

// Package affiliations holds group affiliation, unit registration, and
// the RF-channel grant table for one site. All operations run on the
// single protocol-core goroutine; there is no internal locking.
package affiliations

import "github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"

// Grant is one active RF-channel reservation.
type Grant struct {
	ChNo       int
	SrcID      uint32
	DeadlineMS int64
	Group      bool
	Voice      bool
}

// Table is the affiliation/registration/grant store for one site.
type Table struct {
	groupAff map[uint32]uint32 // srcId -> dstId (talkgroup)
	unitReg  map[uint32]struct{}
	channels []int // configured RF-channel-number pool, in the order added
	busy     map[int]bool
	grants   map[uint32]Grant // dstId -> Grant

	// ReleaseCallback fires whenever a grant is released, whether by
	// explicit request, force, or clock expiry (§6 release-callback).
	ReleaseCallback func(dstID uint32, chNo int, forced bool)
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		groupAff: make(map[uint32]uint32),
		unitReg:  make(map[uint32]struct{}),
		busy:     make(map[int]bool),
		grants:   make(map[uint32]Grant),
	}
}

// GroupAff inserts or overwrites srcId's talkgroup affiliation, returning
// the previous value and whether one existed.
func (t *Table) GroupAff(srcID, dstID uint32) (prev uint32, had bool) {
	prev, had = t.groupAff[srcID]
	t.groupAff[srcID] = dstID
	return prev, had
}

// UnitReg registers srcId.
func (t *Table) UnitReg(srcID uint32) {
	t.unitReg[srcID] = struct{}{}
}

// DeregUnit removes srcId's registration and any group affiliation.
func (t *Table) DeregUnit(srcID uint32) {
	delete(t.unitReg, srcID)
	delete(t.groupAff, srcID)
}

// IsGroupAff reports whether srcId is currently affiliated with dstId.
func (t *Table) IsGroupAff(srcID, dstID uint32) bool {
	tg, ok := t.groupAff[srcID]
	return ok && tg == dstID
}

// IsUnitReg reports whether srcId is currently registered.
func (t *Table) IsUnitReg(srcID uint32) bool {
	_, ok := t.unitReg[srcID]
	return ok
}

// AddRFChannel adds chNo to the free-channel pool.
func (t *Table) AddRFChannel(chNo int) {
	t.channels = append(t.channels, chNo)
}

// IsRFChAvailable reports whether any configured channel is currently free.
func (t *Table) IsRFChAvailable() bool {
	for _, ch := range t.channels {
		if !t.busy[ch] {
			return true
		}
	}
	return false
}

// IsChBusy reports whether chNo is currently granted.
func (t *Table) IsChBusy(chNo int) bool {
	return t.busy[chNo]
}

// GrantCh grants the lowest free channel in the pool to dstId, recording
// srcId, group/voice flags, and a deadline of now+ttlMs. It fails with
// ErrNoChannel when the pool has no free channel.
func (t *Table) GrantCh(nowMS int64, dstID, srcID uint32, ttlMS int64, group, voice bool) (int, error) {
	chosen, found := 0, false
	for _, ch := range t.channels {
		if t.busy[ch] {
			continue
		}
		if !found || ch < chosen {
			chosen, found = ch, true
		}
	}
	if !found {
		return 0, nxdnconst.ErrNoChannel
	}
	t.busy[chosen] = true
	t.grants[dstID] = Grant{
		ChNo:       chosen,
		SrcID:      srcID,
		DeadlineMS: nowMS + ttlMS,
		Group:      group,
		Voice:      voice,
	}
	return chosen, nil
}

// TouchGrant refreshes dstId's grant deadline if it has an active grant.
func (t *Table) TouchGrant(dstID uint32, nowMS, ttlMS int64) {
	g, ok := t.grants[dstID]
	if !ok {
		return
	}
	g.DeadlineMS = nowMS + ttlMS
	t.grants[dstID] = g
}

// ReleaseGrant removes dstId's grant, returns its channel to the pool,
// and fires ReleaseCallback. force distinguishes a supervisor-forced
// release from a normal TX_REL/timeout release in the callback.
func (t *Table) ReleaseGrant(dstID uint32, force bool) {
	g, ok := t.grants[dstID]
	if !ok {
		return
	}
	delete(t.grants, dstID)
	delete(t.busy, g.ChNo)
	if t.ReleaseCallback != nil {
		t.ReleaseCallback(dstID, g.ChNo, force)
	}
}

// IsGranted reports whether dstId currently holds a grant.
func (t *Table) IsGranted(dstID uint32) bool {
	_, ok := t.grants[dstID]
	return ok
}

// GrantedChannel returns dstId's granted channel, if any.
func (t *Table) GrantedChannel(dstID uint32) (int, bool) {
	g, ok := t.grants[dstID]
	return g.ChNo, ok
}

// GrantedSrc returns the source ID holding dstId's grant, if any.
func (t *Table) GrantedSrc(dstID uint32) (uint32, bool) {
	g, ok := t.grants[dstID]
	return g.SrcID, ok
}

// ActiveGrants returns every currently outstanding grant, keyed by its
// talkgroup/unit destination ID, for the admin REST voice-channel
// endpoint.
func (t *Table) ActiveGrants() map[uint32]Grant {
	out := make(map[uint32]Grant, len(t.grants))
	for dstID, g := range t.grants {
		out[dstID] = g
	}
	return out
}

// ReleaseAllGrants releases every outstanding grant, as forced.
func (t *Table) ReleaseAllGrants() {
	for dstID := range t.grants {
		t.ReleaseGrant(dstID, true)
	}
}

// DeregAllUnits clears every unit registration and group affiliation.
func (t *Table) DeregAllUnits() {
	for srcID := range t.unitReg {
		delete(t.unitReg, srcID)
	}
	for srcID := range t.groupAff {
		delete(t.groupAff, srcID)
	}
}

// Clock releases any grant whose deadline is at or before nowMS, the
// caller's monotonic clock after this tick.
func (t *Table) Clock(nowMS int64) {
	var expired []uint32
	for dstID, g := range t.grants {
		if nowMS >= g.DeadlineMS {
			expired = append(expired, dstID)
		}
	}
	for _, dstID := range expired {
		t.ReleaseGrant(dstID, false)
	}
}
