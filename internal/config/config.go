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

// Package config describes this host's startup configuration, loaded
// by configulator from flags, environment variables, and an optional
// YAML file, and the immutable Snapshot of ID rules and talkgroup
// policy that is loaded from YAML once at startup (§7 "Persisted
// state").
package config

import "time"

// Config is the complete startup configuration for one NXDN site host.
type Config struct {
	LogLevel LogLevel `name:"log-level" description:"Logging level" default:"info"`

	Site    Site    `name:"site" description:"Site identity broadcast in SITE_INFO/SRV_INFO"`
	Core    Core    `name:"core" description:"Protocol core tunables"`
	Modem   Modem   `name:"modem" description:"Modem serial/USB connection"`
	Network Network `name:"network" description:"Upstream network peer connection"`
	HTTP    HTTP    `name:"http" description:"Admin REST API server"`
	Metrics Metrics `name:"metrics" description:"Prometheus metrics and tracing"`

	// RulesFile points at the YAML document loaded into a Snapshot at
	// startup (ID allow/deny lists, talkgroup ranges). It is not
	// reloaded: SIGHUP stops the host like SIGINT does.
	RulesFile string `name:"rules-file" description:"Path to the ID/talkgroup rules YAML file" default:"/etc/nxdnhost/rules.yaml"`
}

// Site describes this host's site identity and CAC superframe cadence,
// mirroring rcchlc.SiteInfo's fields (§4.7).
type Site struct {
	LocationCategory uint8  `name:"location-category" description:"2-bit location area category"`
	SystemCode       uint32 `name:"system-code" description:"17-bit NXDN system code"`
	SiteCode         uint8  `name:"site-code" description:"5-bit site code"`

	ChannelID byte `name:"channel-id" description:"Control channel ID"`
	ChannelNo int  `name:"channel-no" description:"Control channel number"`

	ServiceClass byte   `name:"service-class" description:"Advertised service class bitmap"`
	Callsign     string `name:"callsign" description:"Callsign broadcast in SITE_INFO"`
	RequireReg   bool   `name:"require-reg" description:"Whether units must register before affiliating"`

	BcchCnt         uint8 `name:"bcch-count" description:"BCCH slots per CAC superframe" default:"1"`
	RCCHGroupingCnt uint8 `name:"rcch-grouping-count" description:"RCCH grouping count" default:"1"`
	CCCHPagingCnt   uint8 `name:"ccch-paging-count" description:"CCCH paging count" default:"2"`
	CCCHMultiCnt    uint8 `name:"ccch-multi-count" description:"CCCH multi-purpose count" default:"2"`
	RCCHIterateCnt  uint8 `name:"rcch-iterate-count" description:"RCCH iterate count" default:"2"`

	// RFChannels lists the local RF channel numbers this site can grant
	// voice/data calls onto.
	RFChannels []int `name:"rf-channels" description:"RF channel numbers available for grants"`
}

// Core are the protocol-core tunables passed into core.Config.
type Core struct {
	RAN              uint8         `name:"ran" description:"Radio Access Number this site expects on RF" default:"1"`
	Authoritative    bool          `name:"authoritative" description:"Whether this host makes grant decisions locally"`
	VerifyAff        bool          `name:"verify-affiliation" description:"Require group affiliation before granting a group call"`
	VerifyReg        bool          `name:"verify-registration" description:"Require unit registration before accepting a group affiliation"`
	RFTimeout        time.Duration `name:"rf-timeout" description:"RF call hang timer" default:"3s"`
	NetTimeout       time.Duration `name:"net-timeout" description:"Network call hang timer" default:"3s"`
	TGHangTime       time.Duration `name:"tg-hang-time" description:"Talkgroup hang time after a call ends" default:"5s"`
	GrantTTL         time.Duration `name:"grant-ttl" description:"Channel grant lease duration" default:"5s"`
	SilenceThreshold int           `name:"silence-threshold" description:"AMBE error count above which a stolen subframe is replaced with silence" default:"14"`
	PermittedTG      uint32        `name:"permitted-tg" description:"Single talkgroup this host relays when not authoritative"`
}

// Modem configures the serial/USB connection to the air-interface modem.
type Modem struct {
	Port     string `name:"port" description:"Serial device path" default:"/dev/ttyUSB0"`
	BaudRate int    `name:"baud-rate" description:"Serial baud rate" default:"115200"`
}

// Network configures the upstream network peer this host relays
// RTCH-LC traffic to when it is not authoritative for a talkgroup.
type Network struct {
	Host        string        `name:"host" description:"Upstream peer host"`
	Port        int           `name:"port" description:"Upstream peer port" default:"62031"`
	ID          uint32        `name:"id" description:"This host's network ID"`
	Passphrase  string        `name:"passphrase" description:"Shared authentication passphrase"`
	DialTimeout time.Duration `name:"dial-timeout" description:"Connection dial timeout" default:"5s"`
}

// HTTP configures the admin REST API server (§6).
type HTTP struct {
	Bind string `name:"bind" description:"Admin API bind address" default:"[::]"`
	Port int    `name:"port" description:"Admin API port" default:"8080"`

	CORSHosts      []string `name:"cors-hosts" description:"Allowed CORS origins"`
	TrustedProxies []string `name:"trusted-proxies" description:"Trusted proxy CIDRs"`

	AuthToken string `name:"auth-token" description:"Bearer token required by PUT /auth"`
}

// Metrics configures the Prometheus exporter and optional OTLP tracing.
type Metrics struct {
	Enabled bool   `name:"enabled" description:"Serve /metrics" default:"true"`
	Bind    string `name:"bind" description:"Metrics server bind address" default:"[::]"`
	Port    int    `name:"port" description:"Metrics server port" default:"9100"`

	OTLPEndpoint string `name:"otlp-endpoint" description:"OTLP gRPC collector endpoint; tracing disabled when empty"`
}
