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
	"sync"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// memoryStore implements ratelimit.Store the same shape as the
// teacher's GORMStore (internal/http/ratelimit), but keyed in an
// in-process map instead of a database table: this host has no
// database layer to persist rate-limit hits across restarts, and a
// fixed-window counter reset on process restart is an acceptable
// trade for an admin API meant to run as a single local process.
type memoryStore struct {
	mu    sync.Mutex
	rate  time.Duration
	limit uint
	hits  map[string]hitRecord
}

type hitRecord struct {
	count     int64
	timestamp time.Time
}

// newMemoryStore builds a fixed-window rate limiter store.
func newMemoryStore(rate time.Duration, limit uint) *memoryStore {
	return &memoryStore{
		rate:  rate,
		limit: limit,
		hits:  make(map[string]hitRecord),
	}
}

func (s *memoryStore) Limit(key string, _ *gin.Context) (ret ratelimit.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret.Limit = s.limit
	now := time.Now()

	rec, ok := s.hits[key]
	if !ok || rec.timestamp.Add(s.rate).Before(now) {
		rec = hitRecord{count: 0, timestamp: now}
	}

	ret.ResetTime = rec.timestamp.Add(s.rate)

	if rec.count >= int64(s.limit) {
		ret.RateLimited = true
		ret.RemainingHits = 0
	} else {
		rec.count++
		ret.RemainingHits = s.limit - uint(rec.count)
	}

	s.hits[key] = rec
	return
}
