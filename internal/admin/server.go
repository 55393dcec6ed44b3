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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dvm-nxdn/nxdnhost/internal/config"
)

const defTimeout = 10 * time.Second
const stopTimeout = 5 * time.Second
const rateLimitRate = time.Second
const rateLimitLimit = 10

var ErrClosed = errors.New("server closed")
var ErrFailed = errors.New("failed to start server")

// Server is the admin REST+websocket listener, wrapping *http.Server the
// same way the teacher's internal/http.Server does: Start blocks until
// ListenAndServe returns, Stop drives a bounded graceful shutdown.
type Server struct {
	*http.Server
	shutdownChannel chan bool

	log       *slog.Logger
	facade    Facade
	modem     ModemControl
	authToken string
	hub       *eventHub
	version   string
	commit    string
}

// MakeServer builds the admin Server. modem may be nil, in which case
// PUT /modem/mode and PUT /modem/kill report 501 Not Implemented.
func MakeServer(cfg *config.Config, log *slog.Logger, facade Facade, modem ModemControl, version, commit string) *Server {
	s := &Server{
		shutdownChannel: make(chan bool),
		log:             log,
		facade:          facade,
		modem:           modem,
		authToken:       cfg.HTTP.AuthToken,
		hub:             newEventHub(cfg.HTTP.CORSHosts),
		version:         version,
		commit:          commit,
	}

	r := s.createRouter(cfg)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Bind, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  defTimeout,
		WriteTimeout: defTimeout,
	}
	s.SetKeepAlivesEnabled(false)

	return s
}

// Broadcast pushes a lifecycle event to every connected /ws/events client.
func (s *Server) Broadcast(ev Event) {
	s.hub.broadcast(ev)
}

func (s *Server) Start() error {
	g := new(errgroup.Group)
	g.Go(func() error {
		err := s.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				s.shutdownChannel <- true
				return ErrClosed
			default:
				s.log.Error("admin server failed to start", "error", err)
				return ErrFailed
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() {
	s.log.Info("stopping admin server")
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		s.log.Error("failed to shut down admin server", "error", err)
		return
	}
	<-s.shutdownChannel
}
