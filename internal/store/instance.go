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
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// Instances are few (one row per peer domain) and read constantly
// from the Outbound Queue (C7) and Resolver (C8); no dedicated cache
// struct is worth it, a direct indexed lookup suffices.

// GetInstanceByID fetches an instance row by its local numeric ID.
func (s *Store) GetInstanceByID(ctx context.Context, id int64) (*fedmodel.Instance, error) {
	return s.queryInstance(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident("id"), id)
	})
}

// GetInstanceByDomain fetches an instance row by domain, the lookup
// used before dereferencing any actor at that domain for the first
// time.
func (s *Store) GetInstanceByDomain(ctx context.Context, domain string) (*fedmodel.Instance, error) {
	return s.queryInstance(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident("domain"), domain)
	})
}

func (s *Store) queryInstance(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) (*fedmodel.Instance, error) {
	var instance fedmodel.Instance
	q := where(s.DB.NewSelect().Model(&instance))
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &instance, nil
}

// PutInstance inserts a new instance row, first sight of a peer
// domain.
func (s *Store) PutInstance(ctx context.Context, instance *fedmodel.Instance) error {
	if _, err := s.DB.NewInsert().Model(instance).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// UpdateInstance persists changes (software/version refresh, block
// status).
func (s *Store) UpdateInstance(ctx context.Context, instance *fedmodel.Instance) error {
	if _, err := s.DB.NewUpdate().Model(instance).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// LiveInstances returns every instance not currently blocked, used by
// the scheduler's daily nodeinfo probe (C9).
func (s *Store) LiveInstances(ctx context.Context) ([]*fedmodel.Instance, error) {
	var instances []*fedmodel.Instance
	err := s.DB.NewSelect().
		Model(&instances).
		Where("? IS NULL", bun.Ident("blocked_until")).
		WhereOr("? < now()", bun.Ident("blocked_until")).
		Scan(ctx)
	if err != nil {
		return nil, bundb.ProcessError(err)
	}
	return instances, nil
}
