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

package main

import (
	"fmt"
	"os"

	"github.com/USA-RedDragon/configulator"

	"github.com/dvm-nxdn/nxdnhost/internal/cmd"
	"github.com/dvm-nxdn/nxdnhost/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cmd.NewCommand(version, commit)

	c := configulator.New[config.Config]()
	if err := c.Bind(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bind configuration: %v\n", err)
		return 1
	}

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
