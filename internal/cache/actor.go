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

package cache

import "github.com/klppl/federails/internal/fedmodel"

// ActorCache wraps Cache to provide ap_id lookups for fedmodel.Actor,
// keyed by the AP id per §3's "actors are addressed and deduplicated
// by ap_id" invariant.
type ActorCache struct {
	cache Cache[int64, *fedmodel.Actor]
	apIDs map[string]int64 // ap_id -> ID
}

// NewActor returns a new instantiated ActorCache.
func NewActor() *ActorCache {
	c := &ActorCache{apIDs: make(map[string]int64)}
	c.cache.Init()
	c.cache.SetEvictHook(func(_ int64, old *fedmodel.Actor) {
		delete(c.apIDs, old.APID)
	})
	c.cache.SetUpdateHook(func(_ int64, old, new *fedmodel.Actor) {
		if old.APID != new.APID {
			delete(c.apIDs, old.APID)
			c.apIDs[new.APID] = new.ID
		}
	})
	return c
}

// GetByID returns a copy of the cached actor with the given ID.
func (c *ActorCache) GetByID(id int64) (*fedmodel.Actor, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	return copyActor(v), true
}

// GetByAPID returns a copy of the cached actor with the given AP id.
func (c *ActorCache) GetByAPID(apID string) (*fedmodel.Actor, bool) {
	var (
		actor *fedmodel.Actor
		found bool
	)
	c.cache.WithLock(func(get func(int64) (*fedmodel.Actor, bool), _ func(int64, *fedmodel.Actor), _ func(int64)) {
		id, ok := c.apIDs[apID]
		if !ok {
			return
		}
		v, ok := get(id)
		if !ok {
			return
		}
		actor, found = copyActor(v), true
	})
	return actor, found
}

// Set stores a copy of actor in the cache.
func (c *ActorCache) Set(actor *fedmodel.Actor) {
	if actor == nil || actor.ID == 0 || actor.APID == "" {
		panic("invalid actor")
	}
	cp := copyActor(actor)
	c.cache.WithLock(func(_ func(int64) (*fedmodel.Actor, bool), set func(int64, *fedmodel.Actor), _ func(int64)) {
		set(actor.ID, cp)
		c.apIDs[actor.APID] = actor.ID
	})
}

// Invalidate drops the cache entry for id, if any.
func (c *ActorCache) Invalidate(id int64) {
	c.cache.Delete(id)
}

// copyActor returns a surface-level copy, detaching the Instance
// relation so cached entries never alias another cache's copy.
func copyActor(a *fedmodel.Actor) *fedmodel.Actor {
	cp := *a
	cp.Instance = nil
	return &cp
}
