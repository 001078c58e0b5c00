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

// CommunityCache wraps Cache to provide actor_id lookups for
// fedmodel.Community, since a community is always addressed via its
// underlying actor's ap_id and resolved to a community ID from there.
type CommunityCache struct {
	cache     Cache[int64, *fedmodel.Community]
	byActorID map[int64]int64 // actor_id -> community ID
}

// NewCommunity returns a new instantiated CommunityCache.
func NewCommunity() *CommunityCache {
	c := &CommunityCache{byActorID: make(map[int64]int64)}
	c.cache.Init()
	c.cache.SetEvictHook(func(_ int64, old *fedmodel.Community) {
		delete(c.byActorID, old.ActorID)
	})
	c.cache.SetUpdateHook(func(_ int64, old, new *fedmodel.Community) {
		if old.ActorID != new.ActorID {
			delete(c.byActorID, old.ActorID)
			c.byActorID[new.ActorID] = new.ID
		}
	})
	return c
}

// GetByID returns a copy of the cached community with the given ID.
func (c *CommunityCache) GetByID(id int64) (*fedmodel.Community, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	return copyCommunity(v), true
}

// GetByActorID returns a copy of the cached community for actorID.
func (c *CommunityCache) GetByActorID(actorID int64) (*fedmodel.Community, bool) {
	var (
		community *fedmodel.Community
		found     bool
	)
	c.cache.WithLock(func(get func(int64) (*fedmodel.Community, bool), _ func(int64, *fedmodel.Community), _ func(int64)) {
		id, ok := c.byActorID[actorID]
		if !ok {
			return
		}
		v, ok := get(id)
		if !ok {
			return
		}
		community, found = copyCommunity(v), true
	})
	return community, found
}

// Set stores a copy of community in the cache.
func (c *CommunityCache) Set(community *fedmodel.Community) {
	if community == nil || community.ID == 0 || community.ActorID == 0 {
		panic("invalid community")
	}
	cp := copyCommunity(community)
	c.cache.WithLock(func(_ func(int64) (*fedmodel.Community, bool), set func(int64, *fedmodel.Community), _ func(int64)) {
		set(community.ID, cp)
		c.byActorID[community.ActorID] = community.ID
	})
}

// Invalidate drops the cache entry for id, if any.
func (c *CommunityCache) Invalidate(id int64) {
	c.cache.Delete(id)
}

func copyCommunity(cm *fedmodel.Community) *fedmodel.Community {
	cp := *cm
	cp.Actor = nil
	return &cp
}
