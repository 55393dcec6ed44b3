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

// Package admin implements the administration REST surface (§6): a
// gin-gonic router exposing status, voice-channel, and RID-list
// queries plus modem/grant/affiliation mutations, all funnelled
// through a narrow Facade into the protocol core — the admin layer
// never holds a mutable core pointer, matching the Contract design
// note in spec §9. Grounded on the teacher's internal/http/server.go
// shape (Server wrapping *http.Server, errgroup-driven Start/Stop).
package admin

import (
	"github.com/dvm-nxdn/nxdnhost/internal/affiliations"
	"github.com/dvm-nxdn/nxdnhost/internal/core"
)

// Facade is the narrow surface the admin handlers call into the core
// through — never a direct mutable *core.Core pointer.
type Facade interface {
	Status() core.Status
	ActiveGrants() map[uint32]affiliations.Grant
	ReleaseAllGrants()
	ReleaseAllAffiliations()
	PermitTG(dstID uint32, enable bool)
	GrantTG(dstID uint32, unitToUnit, enable bool) error
	IsRIDWhitelisted(rid uint32) bool
	IsRIDBlacklisted(rid uint32) bool
}

// ModemControl is the narrow surface PUT /modem/mode and PUT
// /modem/kill drive. The cmd wiring passes nil, so those routes report
// 501 Not Implemented; admin has no concrete modem implementation of
// its own (§6 "Modem interface ... out of scope for this host's core").
type ModemControl interface {
	SetMode(mode string) error
	Kill(force bool) error
}

var _ Facade = (*core.Core)(nil)
