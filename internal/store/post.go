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

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/klppl/federails/internal/db"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedctx"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// GetPostByID fetches a post by its local numeric ID.
func (s *Store) GetPostByID(ctx context.Context, id int64) (*fedmodel.Post, error) {
	post, ok := s.Caches.Post.GetByID(id)
	if !ok {
		var err error
		post, err = s.queryPost(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("id"), id)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Post.Set(post)
	}
	return s.populatePost(ctx, post)
}

// GetPostByAPID fetches a post by its canonical ActivityPub id.
func (s *Store) GetPostByAPID(ctx context.Context, apID string) (*fedmodel.Post, error) {
	post, ok := s.Caches.Post.GetByAPID(apID)
	if !ok {
		var err error
		post, err = s.queryPost(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("ap_id"), apID)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Post.Set(post)
	}
	return s.populatePost(ctx, post)
}

func (s *Store) queryPost(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) (*fedmodel.Post, error) {
	var post fedmodel.Post
	q := where(s.DB.NewSelect().Model(&post))
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &post, nil
}

func (s *Store) populatePost(ctx context.Context, post *fedmodel.Post) (*fedmodel.Post, error) {
	if fedctx.Barebones(ctx) {
		return post, nil
	}
	community, err := s.GetCommunityByID(fedctx.SetBarebones(ctx), post.CommunityID)
	if err != nil {
		return nil, err
	}
	post.Community = community
	creator, err := s.GetActorByID(fedctx.SetBarebones(ctx), post.CreatorID)
	if err != nil {
		return nil, err
	}
	post.Creator = creator
	return post, nil
}

// PutPost inserts a new post row.
func (s *Store) PutPost(ctx context.Context, post *fedmodel.Post) error {
	if _, err := s.DB.NewInsert().Model(post).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Post.Set(post)
	return nil
}

// UpdatePost persists changes (edits, removal, lock/feature flags,
// recomputed rank columns) and refreshes the cache.
func (s *Store) UpdatePost(ctx context.Context, post *fedmodel.Post) error {
	if _, err := s.DB.NewUpdate().Model(post).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Post.Set(post)
	return nil
}
