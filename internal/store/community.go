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

// GetCommunityByID fetches a community by its local numeric ID.
func (s *Store) GetCommunityByID(ctx context.Context, id int64) (*fedmodel.Community, error) {
	community, ok := s.Caches.Community.GetByID(id)
	if !ok {
		var err error
		community, err = s.queryCommunity(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("id"), id)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Community.Set(community)
	}
	return s.populateCommunity(ctx, community)
}

// GetCommunityByActorID fetches a community via its underlying
// actor's local ID, the join point used when resolving an inbound
// activity's addressee.
func (s *Store) GetCommunityByActorID(ctx context.Context, actorID int64) (*fedmodel.Community, error) {
	community, ok := s.Caches.Community.GetByActorID(actorID)
	if !ok {
		var err error
		community, err = s.queryCommunity(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("actor_id"), actorID)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Community.Set(community)
	}
	return s.populateCommunity(ctx, community)
}

func (s *Store) queryCommunity(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) (*fedmodel.Community, error) {
	var community fedmodel.Community
	q := where(s.DB.NewSelect().Model(&community))
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &community, nil
}

func (s *Store) populateCommunity(ctx context.Context, community *fedmodel.Community) (*fedmodel.Community, error) {
	if fedctx.Barebones(ctx) {
		return community, nil
	}
	actor, err := s.GetActorByID(fedctx.SetBarebones(ctx), community.ActorID)
	if err != nil {
		return nil, err
	}
	community.Actor = actor
	return community, nil
}

// PutCommunity inserts a new community row.
func (s *Store) PutCommunity(ctx context.Context, community *fedmodel.Community) error {
	if _, err := s.DB.NewInsert().Model(community).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Community.Set(community)
	return nil
}

// UpdateCommunity persists changes (removed/hidden/restricted flags,
// subscriber count) and refreshes the cache.
func (s *Store) UpdateCommunity(ctx context.Context, community *fedmodel.Community) error {
	if _, err := s.DB.NewUpdate().Model(community).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Community.Set(community)
	return nil
}
