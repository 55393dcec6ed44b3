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

// Package accesscontrol answers allow/deny lookups for source and target
// radio IDs. It holds no database handle: the rule set is loaded once
// from config as an immutable snapshot and swapped atomically on reload,
// the range-check shape of internal/dmr/rules generalised from a
// peer-scoped gorm lookup to a process-wide in-memory table.
package accesscontrol

import "sync/atomic"

// IDRange is an inclusive [Min, Max] radio-ID range, the same
// SubjectIDMin/SubjectIDMax shape used for peer egress/ingress rules.
type IDRange struct {
	Min uint32
	Max uint32
}

func (r IDRange) contains(id uint32) bool { return id >= r.Min && id <= r.Max }

// Snapshot is one immutable rule set: explicit per-ID blacklist/whitelist
// entries take precedence over the ranges, and the ranges take
// precedence over DefaultAllow.
type Snapshot struct {
	DefaultAllow bool
	AllowRanges  []IDRange
	DenyRanges   []IDRange
	Whitelist    map[uint32]bool
	Blacklist    map[uint32]bool
	TGRanges     []IDRange
}

// List holds the live Snapshot behind an atomic pointer so Reload can
// swap the whole rule set without readers ever observing a torn read.
type List struct {
	snap atomic.Pointer[Snapshot]
}

// NewList builds a List from an initial snapshot.
func NewList(s Snapshot) *List {
	l := &List{}
	l.Reload(s)
	return l
}

// Reload atomically replaces the rule set.
func (l *List) Reload(s Snapshot) {
	cp := s
	l.snap.Store(&cp)
}

// IsRIDWhitelisted reports whether id has an explicit whitelist entry.
func (l *List) IsRIDWhitelisted(id uint32) bool {
	return l.snap.Load().Whitelist[id]
}

// IsRIDBlacklisted reports whether id has an explicit blacklist entry.
func (l *List) IsRIDBlacklisted(id uint32) bool {
	return l.snap.Load().Blacklist[id]
}

// AllowSrc reports whether srcId is permitted to originate traffic.
func (l *List) AllowSrc(srcID uint32) bool {
	s := l.snap.Load()
	if s.Blacklist[srcID] {
		return false
	}
	if s.Whitelist[srcID] {
		return true
	}
	for _, r := range s.DenyRanges {
		if r.contains(srcID) {
			return false
		}
	}
	for _, r := range s.AllowRanges {
		if r.contains(srcID) {
			return true
		}
	}
	return s.DefaultAllow
}

// AllowDst reports whether dstId (a unit or talkgroup) may be called.
func (l *List) AllowDst(dstID uint32) bool {
	return l.AllowSrc(dstID)
}

// AllowTG reports whether tg falls within a configured permitted
// talkgroup range; an empty TGRanges list permits every talkgroup.
func (l *List) AllowTG(tg uint32) bool {
	s := l.snap.Load()
	if len(s.TGRanges) == 0 {
		return true
	}
	for _, r := range s.TGRanges {
		if r.contains(tg) {
			return true
		}
	}
	return false
}
