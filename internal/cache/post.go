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

// PostCache wraps Cache to provide ap_id lookups for fedmodel.Post,
// kept separate from CommentCache since posts and comments are
// distinct tables.
type PostCache struct {
	cache Cache[int64, *fedmodel.Post]
	apIDs map[string]int64
}

// NewPost returns a new instantiated PostCache.
func NewPost() *PostCache {
	c := &PostCache{apIDs: make(map[string]int64)}
	c.cache.Init()
	c.cache.SetEvictHook(func(_ int64, old *fedmodel.Post) {
		delete(c.apIDs, old.APID)
	})
	c.cache.SetUpdateHook(func(_ int64, old, new *fedmodel.Post) {
		if old.APID != new.APID {
			delete(c.apIDs, old.APID)
			c.apIDs[new.APID] = new.ID
		}
	})
	return c
}

// GetByID returns a copy of the cached post with the given ID.
func (c *PostCache) GetByID(id int64) (*fedmodel.Post, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	return copyPost(v), true
}

// GetByAPID returns a copy of the cached post with the given AP id.
func (c *PostCache) GetByAPID(apID string) (*fedmodel.Post, bool) {
	var (
		post  *fedmodel.Post
		found bool
	)
	c.cache.WithLock(func(get func(int64) (*fedmodel.Post, bool), _ func(int64, *fedmodel.Post), _ func(int64)) {
		id, ok := c.apIDs[apID]
		if !ok {
			return
		}
		v, ok := get(id)
		if !ok {
			return
		}
		post, found = copyPost(v), true
	})
	return post, found
}

// Set stores a copy of post in the cache.
func (c *PostCache) Set(post *fedmodel.Post) {
	if post == nil || post.ID == 0 || post.APID == "" {
		panic("invalid post")
	}
	cp := copyPost(post)
	c.cache.WithLock(func(_ func(int64) (*fedmodel.Post, bool), set func(int64, *fedmodel.Post), _ func(int64)) {
		set(post.ID, cp)
		c.apIDs[post.APID] = post.ID
	})
}

// Invalidate drops the cache entry for id, if any.
func (c *PostCache) Invalidate(id int64) {
	c.cache.Delete(id)
}

func copyPost(p *fedmodel.Post) *fedmodel.Post {
	cp := *p
	cp.Community = nil
	cp.Creator = nil
	return &cp
}
