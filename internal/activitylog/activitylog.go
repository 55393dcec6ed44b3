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

// Package activitylog formats the two human-facing log grammars from
// §7 and writes them through the caller's *slog.Logger tagged with
// component=activity, the structured-log equivalent of the teacher's
// separate access/error log files (internal/logging).
package activitylog

import (
	"fmt"
	"log/slog"
)

// Call logs one completed call using the grammar:
// "{proto}, {direction}, {summary}, duration={s:.1f}, BER={p:.1f}%".
func Call(log *slog.Logger, proto, direction, summary string, durationS, berPct float64) {
	log.Info(fmt.Sprintf("%s, %s, %s, duration=%.1f, BER=%.1f%%", proto, direction, summary, durationS, berPct),
		"component", "activity",
		"proto", proto,
		"direction", direction,
		"duration", durationS,
		"ber", berPct,
	)
}

// Denial logs a rejected request using the grammar:
// "{proto}, {opcode} denial, {reason}, {k}={v}...".
func Denial(log *slog.Logger, proto, opcode, reason string, kv ...any) {
	attrs := append([]any{"component", "activity", "proto", proto, "opcode", opcode, "reason", reason}, kv...)
	log.Warn(fmt.Sprintf("%s, %s denial, %s", proto, opcode, reason), attrs...)
}
