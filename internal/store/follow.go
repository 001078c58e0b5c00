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

// GetFollowByID fetches a follow relation by its local numeric ID.
func (s *Store) GetFollowByID(ctx context.Context, id int64) (*fedmodel.Follow, error) {
	follow, ok := s.Caches.Follow.GetByID(id)
	if ok {
		return follow, nil
	}
	return s.queryFollow(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident("id"), id)
	})
}

// GetFollow fetches the follow relation between personID and
// communityID, if one exists.
func (s *Store) GetFollow(ctx context.Context, personID, communityID int64) (*fedmodel.Follow, error) {
	follow, ok := s.Caches.Follow.GetByPair(personID, communityID)
	if ok {
		return follow, nil
	}
	return s.queryFollow(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("? = ?", bun.Ident("person_id"), personID).
			Where("? = ?", bun.Ident("community_id"), communityID)
	})
}

// IsFollowing reports whether an accepted follow exists from person
// to community, used by the authorization rules (C5) and the
// subscriber-count recompute job (C9).
func (s *Store) IsFollowing(ctx context.Context, personID, communityID int64) (bool, error) {
	follow, err := s.GetFollow(fedctx.SetBarebones(ctx), personID, communityID)
	if err != nil {
		if errors.Is(err, db.ErrNoEntries) {
			return false, nil
		}
		return false, err
	}
	return follow.State == fedmodel.FollowAccepted, nil
}

func (s *Store) queryFollow(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) (*fedmodel.Follow, error) {
	var follow fedmodel.Follow
	q := where(s.DB.NewSelect().Model(&follow))
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	s.Caches.Follow.Set(&follow)
	return &follow, nil
}

// PutFollow inserts a new follow request, initially pending unless the
// community auto-accepts (§4.2's unlocked-community Accept path).
func (s *Store) PutFollow(ctx context.Context, follow *fedmodel.Follow) error {
	if _, err := s.DB.NewInsert().Model(follow).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Follow.Set(follow)
	return nil
}

// UpdateFollow persists a state transition (pending -> accepted).
func (s *Store) UpdateFollow(ctx context.Context, follow *fedmodel.Follow) error {
	if _, err := s.DB.NewUpdate().Model(follow).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Follow.Set(follow)
	return nil
}

// DeleteFollow removes a follow relation (Undo(Follow) or Reject).
func (s *Store) DeleteFollow(ctx context.Context, id int64) error {
	if _, err := s.DB.NewDelete().
		Model((*fedmodel.Follow)(nil)).
		Where("? = ?", bun.Ident("id"), id).
		Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Follow.Invalidate(id)
	return nil
}

// ListAcceptedFollowerActors pages through a community's accepted
// followers' actor rows, ordered by id, for the Inbox Resolver (C8) to
// fan out a batch at a time rather than loading the whole follower
// list per post.
func (s *Store) ListAcceptedFollowerActors(ctx context.Context, communityID, afterID int64, limit int) ([]*fedmodel.Actor, error) {
	var actors []*fedmodel.Actor
	err := s.DB.NewSelect().
		Model(&actors).
		Relation("Instance").
		Join("JOIN follows ON follows.person_id = actor.id").
		Where("follows.community_id = ?", communityID).
		Where("follows.state = ?", fedmodel.FollowAccepted).
		Where("actor.id > ?", afterID).
		OrderExpr("actor.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, bundb.ProcessError(err)
	}
	return actors, nil
}
