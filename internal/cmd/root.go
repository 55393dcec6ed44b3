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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dvm-nxdn/nxdnhost/internal/accesscontrol"
	"github.com/dvm-nxdn/nxdnhost/internal/admin"
	"github.com/dvm-nxdn/nxdnhost/internal/affiliations"
	"github.com/dvm-nxdn/nxdnhost/internal/config"
	"github.com/dvm-nxdn/nxdnhost/internal/core"
	"github.com/dvm-nxdn/nxdnhost/internal/framering"
	"github.com/dvm-nxdn/nxdnhost/internal/metrics"
	"github.com/dvm-nxdn/nxdnhost/internal/rcchlc"
)

// clockInterval is the default real-time resolution the core's Clock is
// driven at (§4.13's "time.Ticker at a configurable resolution,
// default 10 ms").
const clockInterval = 10 * time.Millisecond

// txRingCapacity bounds the outbound frame ring core.EnqueueFrame feeds;
// a real transport.Modem implementation drains it at the air-frame
// rate. Sized generously since nothing drains it in this build.
const txRingCapacity = 64 * 1024

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nxdnhost",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	cmd.AddCommand(newStatusCommand())
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("nxdnhost - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := setupLogger(&cfg)
	slog.SetDefault(logger)

	var tracerShutdown func(context.Context) error
	if cfg.Metrics.OTLPEndpoint != "" {
		tracerShutdown = initTracer(&cfg)
		defer func() {
			const timeout = 5 * time.Second
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := tracerShutdown(shutdownCtx); err != nil {
				logger.Error("failed to shut down tracer", "error", err)
			}
		}()
	}

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("failed to load rules file: %w", err)
	}
	acl := accesscontrol.NewList(rules.Snapshot())

	aff := affiliations.New()
	for _, ch := range cfg.Site.RFChannels {
		aff.AddRFChannel(ch)
	}

	site := rcchlc.SiteInfo{
		LocID: rcchlc.LocationID{
			Category: cfg.Site.LocationCategory,
			System:   uint32(cfg.Site.SystemCode),
			Site:     cfg.Site.SiteCode,
		},
		ChannelID:       cfg.Site.ChannelID,
		ChannelNo:       uint16(cfg.Site.ChannelNo),
		ServiceClass:    cfg.Site.ServiceClass,
		RequireReg:      cfg.Site.RequireReg,
		BcchCnt:         cfg.Site.BcchCnt,
		RCCHGroupingCnt: cfg.Site.RCCHGroupingCnt,
		CCCHPagingCnt:   cfg.Site.CCCHPagingCnt,
		CCCHMultiCnt:    cfg.Site.CCCHMultiCnt,
		RCCHIterateCnt:  cfg.Site.RCCHIterateCnt,
	}
	copy(site.Callsign[:], cfg.Site.Callsign)

	txRing := framering.New(txRingCapacity)

	coreCfg := core.Config{
		RAN:              cfg.Core.RAN,
		Authoritative:    cfg.Core.Authoritative,
		VerifyAff:        cfg.Core.VerifyAff,
		VerifyReg:        cfg.Core.VerifyReg,
		RFTimeout:        cfg.Core.RFTimeout,
		NetTimeout:       cfg.Core.NetTimeout,
		TGHangTime:       cfg.Core.TGHangTime,
		GrantTTL:         cfg.Core.GrantTTL,
		SilenceThreshold: cfg.Core.SilenceThreshold,
		PermittedTG:      cfg.Core.PermittedTG,
	}
	nxCore := core.New(coreCfg, logger, acl, aff, site, txRing.Add)

	if cfg.Metrics.Enabled {
		metrics.NewMetrics()
	}
	go func() {
		if err := metrics.CreateMetricsServer(&cfg); err != nil {
			logger.Error("metrics server exited", "error", err)
		}
	}()

	adminServer := admin.MakeServer(&cfg, logger, nxCore, nil, cmd.Annotations["version"], cmd.Annotations["commit"])
	go func() {
		if err := adminServer.Start(); err != nil {
			logger.Error("admin server exited", "error", err)
		}
	}()
	defer adminServer.Stop()

	// A real transport.Modem/transport.NetIO pair would be dialed here
	// and their read loops would feed nxCore.ProcessRF/ProcessNet; wiring
	// a concrete modem is out of this host's scope (§6).
	ticker := time.NewTicker(clockInterval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	defer stop()

	logger.Info("nxdnhost running", "site-channel", cfg.Site.ChannelNo, "authoritative", cfg.Core.Authoritative)

	for {
		select {
		case <-sigCtx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			nxCore.Clock(clockInterval)
		}
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelWarn:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
}

func initTracer(cfg *config.Config) func(context.Context) error {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		slog.Error("failed tracing app", "error", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "nxdnhost"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		slog.Error("could not set resources", "error", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown
}
