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

package core

import "github.com/dvm-nxdn/nxdnhost/internal/affiliations"

// Status is the read-only snapshot the admin REST GET /status endpoint
// serialises.
type Status struct {
	RF, NT        string
	CCHalted      bool
	CCSeq         int
	RFLastSrc     uint32
	RFLastDst     uint32
	NetLastSrc    uint32
	NetLastDst    uint32
	Authoritative bool
	PermittedTG   uint32
}

func (s RFState) String() string {
	switch s {
	case RFListening:
		return "LISTENING"
	case RFAudio:
		return "AUDIO"
	case RFData:
		return "DATA"
	case RFRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

func (s NetState) String() string {
	switch s {
	case NetIdle:
		return "IDLE"
	case NetAudio:
		return "AUDIO"
	case NetData:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// Status reports the core's current RF/Net state. Must be called via
// Call so it runs on the core's own goroutine.
func (c *Core) status() Status {
	return Status{
		RF:            c.RF.String(),
		NT:            c.NT.String(),
		CCHalted:      c.ccHalted,
		CCSeq:         c.ccSeq,
		RFLastSrc:     c.rfLastSrcID,
		RFLastDst:     c.rfLastDstID,
		NetLastSrc:    c.netLastSrcID,
		NetLastDst:    c.netLastDstID,
		Authoritative: c.cfg.Authoritative,
		PermittedTG:   c.cfg.PermittedTG,
	}
}

// Status is the Call-wrapped, goroutine-safe form of status, for the
// admin REST layer to invoke directly.
func (c *Core) Status() Status {
	return c.Call(func(cc *Core) any { return cc.status() }).(Status)
}

// ActiveGrants is the Call-wrapped accessor for GET /voice-ch.
func (c *Core) ActiveGrants() map[uint32]affiliations.Grant {
	v := c.Call(func(cc *Core) any { return cc.aff.ActiveGrants() })
	if v == nil {
		return nil
	}
	return v.(map[uint32]affiliations.Grant)
}

// ReleaseAllGrants forces every outstanding grant to release, for
// GET /release-grants.
func (c *Core) ReleaseAllGrants() {
	c.Call(func(cc *Core) any {
		cc.aff.ReleaseAllGrants()
		return nil
	})
}

// ReleaseAllAffiliations clears every unit registration and group
// affiliation, for GET /release-affs.
func (c *Core) ReleaseAllAffiliations() {
	c.Call(func(cc *Core) any {
		cc.aff.DeregAllUnits()
		return nil
	})
}

// PermitTG enables or disables relaying a single talkgroup when this
// host is not authoritative, for PUT /permit-tg.
func (c *Core) PermitTG(dstID uint32, enable bool) {
	c.Call(func(cc *Core) any {
		if enable {
			cc.cfg.PermittedTG = dstID
		} else if cc.cfg.PermittedTG == dstID {
			cc.cfg.PermittedTG = 0
		}
		return nil
	})
}

// GrantTG issues or revokes a local grant for dstId outside of a
// normal VCALL_CONN_REQ, for PUT /grant-tg.
func (c *Core) GrantTG(dstID uint32, unitToUnit, enable bool) error {
	res := c.Call(func(cc *Core) any {
		if !enable {
			cc.aff.ReleaseGrant(dstID, true)
			return nil
		}
		return cc.Trunk.grant(0, dstID, !unitToUnit)
	})
	if res == nil {
		return nil
	}
	return res.(error)
}

// IsRIDWhitelisted reports whether rid has an explicit whitelist
// entry, for GET /rid/whitelist/{rid}.
func (c *Core) IsRIDWhitelisted(rid uint32) bool { return c.acl.IsRIDWhitelisted(rid) }

// IsRIDBlacklisted reports whether rid has an explicit blacklist
// entry, for GET /rid/blacklist/{rid}.
func (c *Core) IsRIDBlacklisted(rid uint32) bool { return c.acl.IsRIDBlacklisted(rid) }
