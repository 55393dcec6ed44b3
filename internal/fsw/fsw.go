// SPDX-License-Identifier: AGPL-3.0-or-later
// nxdnhost - Run an NXDN Type-C trunked repeater host in a single binary
// Copyright (C) 2023-2024 Jacob McSwain
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

// Package fsw inserts and strips the 20-bit NXDN Frame Sync Word.
package fsw

import "github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"

// Add overlays the Frame Sync Word onto the first 3 bytes of frame,
// leaving the low nibble of the third byte untouched.
func Add(frame []byte) {
	for i := 0; i < nxdnconst.FSWBytesLength; i++ {
		frame[i] = (frame[i] &^ nxdnconst.FSWBytesMask[i]) | (nxdnconst.FSWBytes[i] & nxdnconst.FSWBytesMask[i])
	}
}

// Present reports whether frame's first 3 bytes match the Frame Sync Word
// under the FSW mask.
func Present(frame []byte) bool {
	for i := 0; i < nxdnconst.FSWBytesLength; i++ {
		if frame[i]&nxdnconst.FSWBytesMask[i] != nxdnconst.FSWBytes[i]&nxdnconst.FSWBytesMask[i] {
			return false
		}
	}
	return true
}
