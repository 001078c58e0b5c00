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

// GetActorByID fetches an actor by its local numeric ID, cache-aside.
func (s *Store) GetActorByID(ctx context.Context, id int64) (*fedmodel.Actor, error) {
	actor, ok := s.Caches.Actor.GetByID(id)
	if !ok {
		var err error
		actor, err = s.queryActor(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("id"), id)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Actor.Set(actor)
	}
	return s.populateActor(ctx, actor)
}

// GetActorByAPID fetches an actor by its canonical ActivityPub id,
// cache-aside. This is the lookup path the Fetcher (C3) uses before
// deciding whether a remote dereference is needed.
func (s *Store) GetActorByAPID(ctx context.Context, apID string) (*fedmodel.Actor, error) {
	actor, ok := s.Caches.Actor.GetByAPID(apID)
	if !ok {
		var err error
		actor, err = s.queryActor(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident("ap_id"), apID)
		})
		if err != nil {
			return nil, err
		}
		s.Caches.Actor.Set(actor)
	}
	return s.populateActor(ctx, actor)
}

func (s *Store) queryActor(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) (*fedmodel.Actor, error) {
	var actor fedmodel.Actor
	q := s.DB.NewSelect().Model(&actor)
	q = where(q)
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &actor, nil
}

// populateActor fills relations unless the context requested a
// barebones read.
func (s *Store) populateActor(ctx context.Context, actor *fedmodel.Actor) (*fedmodel.Actor, error) {
	if fedctx.Barebones(ctx) || actor.InstanceID == 0 {
		return actor, nil
	}
	instance, err := s.GetInstanceByID(ctx, actor.InstanceID)
	if err != nil {
		return nil, err
	}
	actor.Instance = instance
	return actor, nil
}

// PutActor inserts a brand new actor (local creation, or first sight
// of a remote actor during dereference) and warms the cache.
func (s *Store) PutActor(ctx context.Context, actor *fedmodel.Actor) error {
	if _, err := s.DB.NewInsert().Model(actor).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Actor.Set(actor)
	return nil
}

// UpdateActor persists changes to an existing actor (profile edits,
// key rotation, tombstoning) and refreshes the cache entry.
func (s *Store) UpdateActor(ctx context.Context, actor *fedmodel.Actor) error {
	if _, err := s.DB.NewUpdate().Model(actor).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	s.Caches.Actor.Set(actor)
	return nil
}
