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
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const wsBufferSize = 1024

// Event is one trunking lifecycle notification pushed to connected
// admin UIs over /ws/events — the live-status channel the teacher
// builds for call notifications (internal/http/websocket), repurposed
// here for granted/released/call-start/call-end.
type Event struct {
	Type  string `json:"type"`
	DstID uint32 `json:"dstId,omitempty"`
	SrcID uint32 `json:"srcId,omitempty"`
	ChNo  int    `json:"chNo,omitempty"`
}

// eventHub fans Event values out to every connected websocket client.
type eventHub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	upgrader  websocket.Upgrader
	corsHosts []string
}

func newEventHub(corsHosts []string) *eventHub {
	h := &eventHub{
		clients:   make(map[*websocket.Conn]struct{}),
		corsHosts: corsHosts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:    wsBufferSize,
		WriteBufferSize:   wsBufferSize,
		EnableCompression: true,
		CheckOrigin:       h.checkOrigin,
	}
	return h
}

func (h *eventHub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return len(h.corsHosts) == 0
	}
	for _, host := range h.corsHosts {
		if strings.Contains(origin, host) {
			return true
		}
	}
	return false
}

func (h *eventHub) handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", "error", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcast sends ev to every connected client, dropping any client
// whose write fails.
func (h *eventHub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(ev); err != nil {
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
}
