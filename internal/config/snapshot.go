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

package config

import (
	"fmt"
	"os"

	"github.com/dvm-nxdn/nxdnhost/internal/accesscontrol"
	"gopkg.in/yaml.v3"
)

// IDRangeRule is one inclusive subject-ID range in a rules file.
type IDRangeRule struct {
	Min uint32 `yaml:"min"`
	Max uint32 `yaml:"max"`
}

// Rules is the on-disk YAML shape of a rules file: the ID allow/deny
// lists and talkgroup ranges this host loads once at startup,
// handed to accesscontrol.NewList as a Snapshot
// (§7 "Persisted state").
type Rules struct {
	DefaultAllow bool          `yaml:"defaultAllow"`
	AllowRanges  []IDRangeRule `yaml:"allowRanges"`
	DenyRanges   []IDRangeRule `yaml:"denyRanges"`
	Whitelist    []uint32      `yaml:"whitelist"`
	Blacklist    []uint32      `yaml:"blacklist"`
	TGRanges     []IDRangeRule `yaml:"talkgroupRanges"`
}

// Snapshot converts the on-disk rule set into the accesscontrol.Snapshot
// form the protocol core actually consults.
func (r Rules) Snapshot() accesscontrol.Snapshot {
	toRanges := func(in []IDRangeRule) []accesscontrol.IDRange {
		out := make([]accesscontrol.IDRange, len(in))
		for i, rr := range in {
			out[i] = accesscontrol.IDRange{Min: rr.Min, Max: rr.Max}
		}
		return out
	}
	toSet := func(in []uint32) map[uint32]bool {
		out := make(map[uint32]bool, len(in))
		for _, id := range in {
			out[id] = true
		}
		return out
	}

	return accesscontrol.Snapshot{
		DefaultAllow: r.DefaultAllow,
		AllowRanges:  toRanges(r.AllowRanges),
		DenyRanges:   toRanges(r.DenyRanges),
		Whitelist:    toSet(r.Whitelist),
		Blacklist:    toSet(r.Blacklist),
		TGRanges:     toRanges(r.TGRanges),
	}
}

// LoadRules reads and parses a rules YAML file.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return r, nil
}
