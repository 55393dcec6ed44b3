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

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidSystemCode indicates that the site system code does not fit in 17 bits.
	ErrInvalidSystemCode = errors.New("site system code must fit in 17 bits")
	// ErrInvalidSiteCode indicates that the site code does not fit in 5 bits.
	ErrInvalidSiteCode = errors.New("site code must fit in 5 bits")
	// ErrNoRFChannels indicates that a site advertised no RF channels to grant calls onto.
	ErrNoRFChannels = errors.New("at least one RF channel is required")
	// ErrInvalidModemPort indicates that no modem serial port was configured.
	ErrInvalidModemPort = errors.New("modem serial port is required")
	// ErrInvalidHTTPBindAddress indicates that the admin API bind address is empty.
	ErrInvalidHTTPBindAddress = errors.New("invalid admin API bind address provided")
	// ErrInvalidHTTPPort indicates that the admin API port is out of range.
	ErrInvalidHTTPPort = errors.New("invalid admin API port provided")
	// ErrInvalidMetricsBindAddress indicates that the metrics server bind address is empty.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the metrics server port is out of range.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrPermittedTGRequired indicates that a non-authoritative host did not configure a talkgroup to relay.
	ErrPermittedTGRequired = errors.New("permitted talkgroup is required when the host is not authoritative")
)

const (
	maxSystemCode = 1<<17 - 1
	maxSiteCode   = 1<<5 - 1
)

// Validate validates the site identity and CAC cadence configuration.
func (s Site) Validate() error {
	if s.SystemCode > maxSystemCode {
		return ErrInvalidSystemCode
	}
	if s.SiteCode > maxSiteCode {
		return ErrInvalidSiteCode
	}
	if len(s.RFChannels) == 0 {
		return ErrNoRFChannels
	}
	return nil
}

// Validate validates the modem connection configuration.
func (m Modem) Validate() error {
	if m.Port == "" {
		return ErrInvalidModemPort
	}
	return nil
}

// Validate validates the admin REST API configuration.
func (h HTTP) Validate() error {
	if h.Bind == "" {
		return ErrInvalidHTTPBindAddress
	}
	if h.Port <= 0 || h.Port > 65535 {
		return ErrInvalidHTTPPort
	}
	return nil
}

// Validate validates the metrics server configuration.
func (m Metrics) Validate() error {
	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}
	return nil
}

// Validate validates the protocol core tunables.
func (c Core) Validate() error {
	if !c.Authoritative && c.PermittedTG == 0 {
		return ErrPermittedTGRequired
	}
	return nil
}

// Validate validates the full startup configuration.
func (c Config) Validate() error {
	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		return ErrInvalidLogLevel
	}

	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Core.Validate(); err != nil {
		return err
	}
	if err := c.Modem.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}

	return nil
}
