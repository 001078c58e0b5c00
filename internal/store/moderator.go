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

	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// Moderators are not cached: moderator lists are small per community
// and consulted only on mod-verb and authorization paths, not the hot
// read path.

// ListModerators returns a community's moderators ordered by Position;
// index 0 is the top moderator (§4.4 transfer-ownership rule).
func (s *Store) ListModerators(ctx context.Context, communityID int64) ([]*fedmodel.ModeratorRelation, error) {
	var mods []*fedmodel.ModeratorRelation
	err := s.DB.NewSelect().
		Model(&mods).
		Where("? = ?", bun.Ident("community_id"), communityID).
		OrderExpr("? ASC", bun.Ident("position")).
		Scan(ctx)
	if err != nil {
		return nil, bundb.ProcessError(err)
	}
	return mods, nil
}

// IsModerator reports whether personID moderates communityID, and
// whether it holds the top-mod (position 0) slot.
func (s *Store) IsModerator(ctx context.Context, communityID, personID int64) (isMod, isTop bool, err error) {
	var rel fedmodel.ModeratorRelation
	dbErr := s.DB.NewSelect().
		Model(&rel).
		Where("? = ?", bun.Ident("community_id"), communityID).
		Where("? = ?", bun.Ident("person_id"), personID).
		Scan(ctx)
	if dbErr != nil {
		if errors.Is(dbErr, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, bundb.ProcessError(dbErr)
	}
	return true, rel.Position == 0, nil
}

// AddModerator appends personID to communityID's moderator list at the
// next available position (Add verb, §4.2).
func (s *Store) AddModerator(ctx context.Context, communityID, personID int64) error {
	mods, err := s.ListModerators(ctx, communityID)
	if err != nil {
		return err
	}
	rel := &fedmodel.ModeratorRelation{
		CommunityID: communityID,
		PersonID:    personID,
		Position:    len(mods),
	}
	if _, err := s.DB.NewInsert().Model(rel).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// RemoveModerator deletes personID from communityID's moderator list
// and closes the resulting gap in Position ordering (Remove verb).
func (s *Store) RemoveModerator(ctx context.Context, communityID, personID int64) error {
	if _, err := s.DB.NewDelete().
		Model((*fedmodel.ModeratorRelation)(nil)).
		Where("? = ?", bun.Ident("community_id"), communityID).
		Where("? = ?", bun.Ident("person_id"), personID).
		Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}

	mods, err := s.ListModerators(ctx, communityID)
	if err != nil {
		return err
	}
	for i, m := range mods {
		if m.Position != i {
			m.Position = i
			if _, err := s.DB.NewUpdate().Model(m).WherePK().Exec(ctx); err != nil {
				return bundb.ProcessError(err)
			}
		}
	}
	return nil
}

// TransferCommunity rewrites communityID's moderator ordering so that
// newTopPersonID becomes position 0 (§4.4 ownership transfer).
func (s *Store) TransferCommunity(ctx context.Context, communityID, newTopPersonID int64) error {
	mods, err := s.ListModerators(ctx, communityID)
	if err != nil {
		return err
	}

	reordered := make([]*fedmodel.ModeratorRelation, 0, len(mods))
	var found *fedmodel.ModeratorRelation
	for _, m := range mods {
		if m.PersonID == newTopPersonID {
			found = m
			continue
		}
		reordered = append(reordered, m)
	}
	if found == nil {
		found = &fedmodel.ModeratorRelation{CommunityID: communityID, PersonID: newTopPersonID}
		if _, err := s.DB.NewInsert().Model(found).Exec(ctx); err != nil {
			return bundb.ProcessError(err)
		}
	}
	reordered = append([]*fedmodel.ModeratorRelation{found}, reordered...)

	for i, m := range reordered {
		if m.Position == i {
			continue
		}
		m.Position = i
		if _, err := s.DB.NewUpdate().Model(m).WherePK().Exec(ctx); err != nil {
			return bundb.ProcessError(err)
		}
	}
	return nil
}
