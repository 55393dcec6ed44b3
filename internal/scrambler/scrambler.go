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

// Package scrambler XORs the NXDN air frame against a fixed mask. The
// operation is involutive: the same routine scrambles and descrambles.
package scrambler

import "github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"

// Mask is the fixed per-byte XOR mask applied over the 48-byte air frame.
// The leading zero entries cover the Frame Sync Word bytes, which are
// overlaid separately by the fsw package and so are left untouched here.
var Mask = [nxdnconst.FrameLengthBytes]byte{
	0x00, 0x00, 0x00, 0x82, 0xA0, 0x88, 0x8A, 0x00, 0xA2, 0xA8, 0x82, 0x8A, 0x82, 0x02,
	0x20, 0x08, 0x8A, 0x20, 0xAA, 0xA2, 0x82, 0x08, 0x22, 0x8A, 0xAA, 0x08, 0x28, 0x88,
	0x28, 0x28, 0x00, 0x0A, 0x02, 0x82, 0x20, 0x28, 0x82, 0x2A, 0xAA, 0x20, 0x22, 0x80,
	0xA8, 0x8A, 0x08, 0xA0, 0xAA, 0x02,
}

// Apply XORs frame in place with Mask. A frame shorter than
// nxdnconst.FrameLengthBytes is XORed over its own length only; bytes past
// the mask are left untouched. Calling Apply twice on the same buffer
// restores the original contents.
func Apply(frame []byte) {
	for i := range frame {
		if i >= len(Mask) {
			break
		}
		frame[i] ^= Mask[i]
	}
}
