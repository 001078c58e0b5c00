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
	"sync"

	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
)

// settingsCache holds the single SiteSettings row in memory: it's
// consulted on every vote (C5 authorization), not re-read from the
// database per request. It is filled on first access and replaced only
// when RefreshSiteSettings is called; no scheduler job calls it.
var (
	settingsMu    sync.RWMutex
	settingsCache *fedmodel.SiteSettings
)

// GetSiteSettings returns the cached site settings row, loading it from
// the database on first access.
func (s *Store) GetSiteSettings(ctx context.Context) (*fedmodel.SiteSettings, error) {
	settingsMu.RLock()
	cached := settingsCache
	settingsMu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return s.RefreshSiteSettings(ctx)
}

// RefreshSiteSettings reloads the settings row from the database,
// creating the default row if none exists yet.
func (s *Store) RefreshSiteSettings(ctx context.Context) (*fedmodel.SiteSettings, error) {
	var settings fedmodel.SiteSettings
	err := s.DB.NewSelect().Model(&settings).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			settings = fedmodel.SiteSettings{
				AllowDownvotes:        true,
				AllowCommentDownvotes: true,
				FederateVotes:         true,
			}
			if _, err := s.DB.NewInsert().Model(&settings).Exec(ctx); err != nil {
				return nil, bundb.ProcessError(err)
			}
		} else {
			return nil, bundb.ProcessError(err)
		}
	}

	settingsMu.Lock()
	settingsCache = &settings
	settingsMu.Unlock()
	return &settings, nil
}

// PutReport inserts a moderator report (Flag verb).
func (s *Store) PutReport(ctx context.Context, report *fedmodel.Report) error {
	if _, err := s.DB.NewInsert().Model(report).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}
