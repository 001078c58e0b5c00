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

// CommentCache wraps Cache to provide ap_id lookups for
// fedmodel.Comment, PostCache's counterpart for the comments table.
type CommentCache struct {
	cache Cache[int64, *fedmodel.Comment]
	apIDs map[string]int64
}

// NewComment returns a new instantiated CommentCache.
func NewComment() *CommentCache {
	c := &CommentCache{apIDs: make(map[string]int64)}
	c.cache.Init()
	c.cache.SetEvictHook(func(_ int64, old *fedmodel.Comment) {
		delete(c.apIDs, old.APID)
	})
	c.cache.SetUpdateHook(func(_ int64, old, new *fedmodel.Comment) {
		if old.APID != new.APID {
			delete(c.apIDs, old.APID)
			c.apIDs[new.APID] = new.ID
		}
	})
	return c
}

// GetByID returns a copy of the cached comment with the given ID.
func (c *CommentCache) GetByID(id int64) (*fedmodel.Comment, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	return copyComment(v), true
}

// GetByAPID returns a copy of the cached comment with the given AP id.
func (c *CommentCache) GetByAPID(apID string) (*fedmodel.Comment, bool) {
	var (
		comment *fedmodel.Comment
		found   bool
	)
	c.cache.WithLock(func(get func(int64) (*fedmodel.Comment, bool), _ func(int64, *fedmodel.Comment), _ func(int64)) {
		id, ok := c.apIDs[apID]
		if !ok {
			return
		}
		v, ok := get(id)
		if !ok {
			return
		}
		comment, found = copyComment(v), true
	})
	return comment, found
}

// Set stores a copy of comment in the cache.
func (c *CommentCache) Set(comment *fedmodel.Comment) {
	if comment == nil || comment.ID == 0 || comment.APID == "" {
		panic("invalid comment")
	}
	cp := copyComment(comment)
	c.cache.WithLock(func(_ func(int64) (*fedmodel.Comment, bool), set func(int64, *fedmodel.Comment), _ func(int64)) {
		set(comment.ID, cp)
		c.apIDs[comment.APID] = comment.ID
	})
}

// Invalidate drops the cache entry for id, if any.
func (c *CommentCache) Invalidate(id int64) {
	c.cache.Delete(id)
}

func copyComment(cm *fedmodel.Comment) *fedmodel.Comment {
	cp := *cm
	cp.Post = nil
	cp.Creator = nil
	return &cp
}
