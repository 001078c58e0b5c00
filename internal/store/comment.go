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

// GetCommentByID fetches a comment by its local numeric ID.
func (s *Store) GetCommentByID(ctx context.Context, id int64) (*fedmodel.Comment, error) {
	comment, ok := s.Caches.Comment.GetByID(id)
	if !ok {
		var err error
		comment, err = s.queryComment(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("id"), id)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Comment.Set(comment)
	}
	return s.populateComment(ctx, comment)
}

// GetCommentByAPID fetches a comment by its canonical ActivityPub id.
func (s *Store) GetCommentByAPID(ctx context.Context, apID string) (*fedmodel.Comment, error) {
	comment, ok := s.Caches.Comment.GetByAPID(apID)
	if !ok {
		var err error
		comment, err = s.queryComment(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("ap_id"), apID)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Comment.Set(comment)
	}
	return s.populateComment(ctx, comment)
}

// GetCommentChildren returns the direct and indirect replies to
// parentPath, ordered oldest-first, by matching the materialized path
// prefix (§3's "Path string: materialized ancestor chain").
func (s *Store) GetCommentChildren(ctx context.Context, parentPath string, limit int) ([]*fedmodel.Comment, error) {
	var comments []*fedmodel.Comment
	q := s.DB.NewSelect().
		Model(&comments).
		Where("? LIKE ?", bun.Ident("path"), parentPath+".%").
		OrderExpr("? ASC", bun.Ident("path"))
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, bundb.ProcessError(err)
	}
	return comments, nil
}

func (s *Store) queryComment(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) (*fedmodel.Comment, error) {
	var comment fedmodel.Comment
	q := where(s.DB.NewSelect().Model(&comment))
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &comment, nil
}

func (s *Store) populateComment(ctx context.Context, comment *fedmodel.Comment) (*fedmodel.Comment, error) {
	if fedctx.Barebones(ctx) {
		return comment, nil
	}
	post, err := s.GetPostByID(fedctx.SetBarebones(ctx), comment.PostID)
	if err != nil {
		return nil, err
	}
	comment.Post = post
	creator, err := s.GetActorByID(fedctx.SetBarebones(ctx), comment.CreatorID)
	if err != nil {
		return nil, err
	}
	comment.Creator = creator
	return comment, nil
}

// PutComment inserts a new comment row.
func (s *Store) PutComment(ctx context.Context, comment *fedmodel.Comment) error {
	if _, err := s.DB.NewInsert().Model(comment).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Comment.Set(comment)
	return nil
}

// UpdateComment persists changes and refreshes the cache.
func (s *Store) UpdateComment(ctx context.Context, comment *fedmodel.Comment) error {
	if _, err := s.DB.NewUpdate().Model(comment).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Comment.Set(comment)
	return nil
}
