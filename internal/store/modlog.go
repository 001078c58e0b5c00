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

	"github.com/klppl/federails/internal/db"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/paging"
	"github.com/uptrace/bun"
)

// LogRemovePost appends a RemovePost moderation-log entry.
func (s *Store) LogRemovePost(ctx context.Context, entry *fedmodel.RemovePost) error {
	return s.insertModLog(ctx, entry)
}

// LogLockPost appends a LockPost moderation-log entry.
func (s *Store) LogLockPost(ctx context.Context, entry *fedmodel.LockPost) error {
	return s.insertModLog(ctx, entry)
}

// LogFeaturePost appends a FeaturePost moderation-log entry.
func (s *Store) LogFeaturePost(ctx context.Context, entry *fedmodel.FeaturePost) error {
	return s.insertModLog(ctx, entry)
}

// LogRemoveComment appends a RemoveComment moderation-log entry.
func (s *Store) LogRemoveComment(ctx context.Context, entry *fedmodel.RemoveComment) error {
	return s.insertModLog(ctx, entry)
}

// LogRemoveCommunity appends a RemoveCommunity moderation-log entry.
func (s *Store) LogRemoveCommunity(ctx context.Context, entry *fedmodel.RemoveCommunity) error {
	return s.insertModLog(ctx, entry)
}

// LogHideCommunity appends a HideCommunity moderation-log entry.
func (s *Store) LogHideCommunity(ctx context.Context, entry *fedmodel.HideCommunity) error {
	return s.insertModLog(ctx, entry)
}

// LogBanFromCommunity appends a BanFromCommunity moderation-log entry.
func (s *Store) LogBanFromCommunity(ctx context.Context, entry *fedmodel.BanFromCommunity) error {
	return s.insertModLog(ctx, entry)
}

// LogBanFromInstance appends a BanFromInstance moderation-log entry.
func (s *Store) LogBanFromInstance(ctx context.Context, entry *fedmodel.BanFromInstance) error {
	return s.insertModLog(ctx, entry)
}

// LogAddModerator appends an AddModerator moderation-log entry.
func (s *Store) LogAddModerator(ctx context.Context, entry *fedmodel.AddModerator) error {
	return s.insertModLog(ctx, entry)
}

// LogAddAdmin appends an AddAdmin moderation-log entry.
func (s *Store) LogAddAdmin(ctx context.Context, entry *fedmodel.AddAdmin) error {
	return s.insertModLog(ctx, entry)
}

// LogTransferCommunity appends a TransferCommunity moderation-log entry.
func (s *Store) LogTransferCommunity(ctx context.Context, entry *fedmodel.TransferCommunity) error {
	return s.insertModLog(ctx, entry)
}

func (s *Store) insertModLog(ctx context.Context, entry interface{}) error {
	if _, err := s.DB.NewInsert().Model(entry).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// ModLogFilter narrows a community's audit listing (§4.10) to entries
// by a specific moderator, paged by id.
type ModLogFilter struct {
	ModID       int64 // 0 means unfiltered
	CommunityID int64
}

// ListBanFromCommunity returns a page of BanFromCommunity entries for
// a community, optionally filtered to one moderator, grounded on the
// teacher's parseWhere/selectWhere filter-clause helpers.
func (s *Store) ListBanFromCommunity(ctx context.Context, filter ModLogFilter, page *paging.Page[int64]) ([]*fedmodel.BanFromCommunity, error) {
	where := []db.Where{{Key: "community_id", Value: filter.CommunityID}}
	if filter.ModID != 0 {
		where = append(where, db.Where{Key: "mod_id", Value: filter.ModID})
	}

	q := s.DB.NewSelect().Model((*fedmodel.BanFromCommunity)(nil)).Column("id")
	bundb.SelectWhere(q, where)

	ids, err := bundb.ScanQueryPage(ctx, q, page, bun.Ident("id"))
	if err != nil {
		return nil, bundb.ProcessError(err)
	}

	entries := make([]*fedmodel.BanFromCommunity, 0, len(ids))
	for _, id := range ids {
		var entry fedmodel.BanFromCommunity
		if err := s.DB.NewSelect().Model(&entry).Where("? = ?", bun.Ident("id"), id).Scan(ctx); err != nil {
			return nil, bundb.ProcessError(err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
