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

// Package cache provides the in-process, process-lifetime caches sat
// in front of the object store (C2): one per domain type, each
// wrapping a generic keyed Cache with secondary lookup indices (by
// ActivityPub ID, etc).
package cache

import "sync"

// Cache is a generic, mutex-guarded, unbounded in-memory map keyed by
// K, holding values of V. It supports eviction and update hooks so
// that wrapping per-type caches (ActorCache, PostCache, ...) can keep
// secondary lookup indices (by ap_id, by actor_id, ...) in sync.
type Cache[K comparable, V any] struct {
	mutex  sync.Mutex
	data   map[K]V
	evict  func(K, V)
	update func(K, V, V)
}

// Init prepares c for use. Must be called before any other method.
func (c *Cache[K, V]) Init() {
	c.data = make(map[K]V)
	c.evict = func(K, V) {}
	c.update = func(K, V, V) {}
}

// SetEvictHook installs fn to run, under lock, whenever an entry is
// removed from the cache (explicit Delete only — this cache has no
// TTL or size-based eviction).
func (c *Cache[K, V]) SetEvictHook(fn func(K, V)) {
	if fn == nil {
		fn = func(K, V) {}
	}
	c.mutex.Lock()
	c.evict = fn
	c.mutex.Unlock()
}

// SetUpdateHook installs fn to run, under lock, whenever Set()
// overwrites an existing entry.
func (c *Cache[K, V]) SetUpdateHook(fn func(K, V, V)) {
	if fn == nil {
		fn = func(K, V, V) {}
	}
	c.mutex.Lock()
	c.update = fn
	c.mutex.Unlock()
}

// Get returns a copy of the value stored under key, if any.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.Lock()
	v, ok := c.data[key]
	c.mutex.Unlock()
	return v, ok
}

// Set stores value under key, invoking the update hook if an entry
// already existed for key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	if old, ok := c.data[key]; ok {
		c.data[key] = value
		c.update(key, old, value)
	} else {
		c.data[key] = value
	}
	c.mutex.Unlock()
}

// Delete removes key from the cache, invoking the evict hook if an
// entry existed.
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	if old, ok := c.data[key]; ok {
		delete(c.data, key)
		c.evict(key, old)
	}
	c.mutex.Unlock()
}

// Len returns the current number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mutex.Lock()
	n := len(c.data)
	c.mutex.Unlock()
	return n
}

// WithLock runs fn while holding the cache's mutex, for callers (the
// per-type wrapper caches) that need to read-then-write atomically,
// e.g. maintaining a secondary index alongside the primary map.
func (c *Cache[K, V]) WithLock(fn func(get func(K) (V, bool), set func(K, V), del func(K)) ) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	fn(
		func(k K) (V, bool) { v, ok := c.data[k]; return v, ok },
		func(k K, v V) {
			if old, ok := c.data[k]; ok {
				c.data[k] = v
				c.update(k, old, v)
			} else {
				c.data[k] = v
			}
		},
		func(k K) {
			if old, ok := c.data[k]; ok {
				delete(c.data, k)
				c.evict(k, old)
			}
		},
	)
}
