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
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

const sessionTokenKey = "token"

// authHandler implements PUT /auth: exchanges the configured admin
// token, presented as passwordHash, for a session token kept in the
// cookie-backed gin session.
func (s *Server) authHandler(c *gin.Context) {
	var body struct {
		PasswordHash string `json:"passwordHash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	want := sha256.Sum256([]byte(s.authToken))
	got := sha256.Sum256([]byte(body.PasswordHash))
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := xid.New().String()
	sess := sessions.Default(c)
	sess.Set(sessionTokenKey, token)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// requireAuth rejects any request without a session established by
// PUT /auth.
func (s *Server) requireAuth(c *gin.Context) {
	sess := sessions.Default(c)
	if sess.Get(sessionTokenKey) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.Next()
}
