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

// followKey is the composite lookup used by the relation caches:
// a (person, community) pair for Follow, or (mod, target) for Ban
// doesn't apply here, so Follow gets its own pair type.
type followKey struct {
	personID    int64
	communityID int64
}

// FollowCache wraps Cache (keyed by follow ID) to provide (person,
// community) pair lookups for fedmodel.Follow, through a secondary
// index keyed by the pair as a plain comparable struct rather than a
// composite string.
type FollowCache struct {
	cache   Cache[int64, *fedmodel.Follow]
	byPair  map[followKey]int64
}

// NewFollow returns a new instantiated FollowCache.
func NewFollow() *FollowCache {
	c := &FollowCache{byPair: make(map[followKey]int64)}
	c.cache.Init()
	c.cache.SetEvictHook(func(_ int64, old *fedmodel.Follow) {
		delete(c.byPair, followKey{old.PersonID, old.CommunityID})
	})
	return c
}

// GetByID returns a copy of the cached follow with the given ID.
func (c *FollowCache) GetByID(id int64) (*fedmodel.Follow, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	cp := *v
	return &cp, true
}

// GetByPair returns a copy of the cached follow between personID and
// communityID, if any.
func (c *FollowCache) GetByPair(personID, communityID int64) (*fedmodel.Follow, bool) {
	var (
		follow *fedmodel.Follow
		found  bool
	)
	c.cache.WithLock(func(get func(int64) (*fedmodel.Follow, bool), _ func(int64, *fedmodel.Follow), _ func(int64)) {
		id, ok := c.byPair[followKey{personID, communityID}]
		if !ok {
			return
		}
		v, ok := get(id)
		if !ok {
			return
		}
		cp := *v
		follow, found = &cp, true
	})
	return follow, found
}

// Set stores a copy of follow in the cache.
func (c *FollowCache) Set(follow *fedmodel.Follow) {
	if follow == nil || follow.ID == 0 {
		panic("invalid follow")
	}
	cp := *follow
	key := followKey{follow.PersonID, follow.CommunityID}
	c.cache.WithLock(func(_ func(int64) (*fedmodel.Follow, bool), set func(int64, *fedmodel.Follow), _ func(int64)) {
		set(follow.ID, &cp)
		c.byPair[key] = follow.ID
	})
}

// Invalidate drops the cache entry for id, if any.
func (c *FollowCache) Invalidate(id int64) {
	c.cache.Delete(id)
}
