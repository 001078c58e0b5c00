// federails
// Copyright (C) federails authors
// SPDX-License-Identifier: AGPL-3.0-or-later
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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package ratelimit implements the per-client-IP limiter §5 calls for:
// "counted in a process-local sharded map; exceeding a limit fails the
// request without touching the database."
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	shardCount = 32
	// sweepAfter bounds how long an idle IP's bucket is kept around.
	sweepAfter = 10 * time.Minute
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Limiter is a sharded per-IP token bucket. r and b set the refill rate
// and burst size shared by every IP.
type Limiter struct {
	shards [shardCount]*shard
	r      rate.Limit
	b      int
}

// New builds a Limiter allowing r requests/sec per IP with burst b.
func New(r float64, b int) *Limiter {
	l := &Limiter{r: rate.Limit(r), b: b}
	for i := range l.shards {
		l.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return l
}

func (l *Limiter) shardFor(ip string) *shard {
	var h uint32
	for i := 0; i < len(ip); i++ {
		h = h*31 + uint32(ip[i])
	}
	return l.shards[h%shardCount]
}

// Allow reports whether a request from ip may proceed, consuming one
// token if so.
func (l *Limiter) Allow(ip string) bool {
	s := l.shardFor(ip)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[ip]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.r, l.b)}
		s.entries[ip] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// Sweep evicts buckets idle longer than sweepAfter, bounding the sharded
// map's memory under sustained churn of distinct client IPs. It runs
// only when called; no scheduler job calls it.
func (l *Limiter) Sweep() {
	cutoff := time.Now().Add(-sweepAfter)
	for _, s := range l.shards {
		s.mu.Lock()
		for ip, e := range s.entries {
			if e.lastSeen.Before(cutoff) {
				delete(s.entries, ip)
			}
		}
		s.mu.Unlock()
	}
}
