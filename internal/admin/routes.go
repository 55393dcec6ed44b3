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

package admin

import (
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dvm-nxdn/nxdnhost/internal/config"
)

func (s *Server) createRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	if err := r.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		s.log.Error("failed setting trusted proxies", "error", err)
	}

	if cfg.Metrics.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("nxdnhost-admin"))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = cfg.HTTP.CORSHosts
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	sessionStore := cookie.NewStore([]byte(cfg.HTTP.AuthToken))
	r.Use(sessions.Sessions("admin_sessions", sessionStore))

	pprof.Register(r)

	rlStore := newMemoryStore(rateLimitRate, rateLimitLimit)
	rlMiddleware := ratelimit.RateLimiter(rlStore, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			c.String(http.StatusTooManyRequests, "too many requests, retry in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	r.PUT("/auth", rlMiddleware, s.authHandler)
	r.GET("/version", s.versionHandler)
	r.GET("/ws/events", s.hub.handle)

	authed := r.Group("/")
	authed.Use(s.requireAuth)
	{
		authed.GET("/status", s.statusHandler)
		authed.GET("/voice-ch", s.voiceChannelsHandler)
		authed.PUT("/modem/mode", s.modemModeHandler)
		authed.PUT("/modem/kill", s.modemKillHandler)
		authed.PUT("/set-supervisor", s.setSupervisorHandler)
		authed.PUT("/permit-tg", s.permitTGHandler)
		authed.PUT("/grant-tg", s.grantTGHandler)
		authed.GET("/release-grants", s.releaseGrantsHandler)
		authed.GET("/release-affs", s.releaseAffsHandler)
		authed.GET("/rid/whitelist/:rid", s.ridWhitelistHandler)
		authed.GET("/rid/blacklist/:rid", s.ridBlacklistHandler)
	}

	return r
}

func (s *Server) versionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.version, "commit": s.commit})
}

func (s *Server) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.facade.Status())
}

func (s *Server) voiceChannelsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.facade.ActiveGrants())
}

func (s *Server) modemModeHandler(c *gin.Context) {
	if s.modem == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "modem control not available"})
		return
	}
	var body struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.modem.SetMode(body.Mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) modemKillHandler(c *gin.Context) {
	if s.modem == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "modem control not available"})
		return
	}
	var body struct {
		Force bool `json:"force"`
	}
	_ = c.ShouldBindJSON(&body)
	if err := s.modem.Kill(body.Force); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setSupervisorHandler(c *gin.Context) {
	var body struct {
		Authoritative bool `json:"authoritative"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.Status(http.StatusNotImplemented)
}

func (s *Server) permitTGHandler(c *gin.Context) {
	var body struct {
		DstID  uint32 `json:"dstId" binding:"required"`
		Enable bool   `json:"enable"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.facade.PermitTG(body.DstID, body.Enable)
	s.Broadcast(Event{Type: "permit-tg", DstID: body.DstID})
	c.Status(http.StatusNoContent)
}

func (s *Server) grantTGHandler(c *gin.Context) {
	var body struct {
		DstID      uint32 `json:"dstId" binding:"required"`
		UnitToUnit bool   `json:"unitToUnit"`
		Enable     bool   `json:"enable"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.facade.GrantTG(body.DstID, body.UnitToUnit, body.Enable); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	evType := "granted"
	if !body.Enable {
		evType = "released"
	}
	s.Broadcast(Event{Type: evType, DstID: body.DstID})
	c.Status(http.StatusNoContent)
}

func (s *Server) releaseGrantsHandler(c *gin.Context) {
	s.facade.ReleaseAllGrants()
	s.Broadcast(Event{Type: "released"})
	c.Status(http.StatusNoContent)
}

func (s *Server) releaseAffsHandler(c *gin.Context) {
	s.facade.ReleaseAllAffiliations()
	c.Status(http.StatusNoContent)
}

func (s *Server) ridWhitelistHandler(c *gin.Context) {
	rid, err := strconv.ParseUint(c.Param("rid"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"whitelisted": s.facade.IsRIDWhitelisted(uint32(rid))})
}

func (s *Server) ridBlacklistHandler(c *gin.Context) {
	rid, err := strconv.ParseUint(c.Param("rid"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blacklisted": s.facade.IsRIDBlacklisted(uint32(rid))})
}
