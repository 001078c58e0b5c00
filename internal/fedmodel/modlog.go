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

package fedmodel

import "time"

// Entry is the common envelope embedded by every mod-log variant: one
// table per verb (§3, "one variant per mod verb"), rather than a
// single polymorphic table.
type Entry struct {
	ID        int64     `bun:"id,pk,autoincrement"`
	ModID     int64     `bun:"mod_id,notnull"`
	Reason    string    `bun:"reason"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type RemovePost struct {
	Entry
	PostID  int64 `bun:"post_id,notnull"`
	Removed bool  `bun:"removed,notnull"`
}

type LockPost struct {
	Entry
	PostID int64 `bun:"post_id,notnull"`
	Locked bool  `bun:"locked,notnull"`
}

type FeaturePost struct {
	Entry
	PostID   int64 `bun:"post_id,notnull"`
	Featured bool  `bun:"featured,notnull"`
}

type RemoveComment struct {
	Entry
	CommentID int64 `bun:"comment_id,notnull"`
	Removed   bool  `bun:"removed,notnull"`
}

type RemoveCommunity struct {
	Entry
	CommunityID int64 `bun:"community_id,notnull"`
	Removed     bool  `bun:"removed,notnull"`
}

type HideCommunity struct {
	Entry
	CommunityID int64 `bun:"community_id,notnull"`
	Hidden      bool  `bun:"hidden,notnull"`
}

type BanFromCommunity struct {
	Entry
	CommunityID int64      `bun:"community_id,notnull"`
	TargetID    int64      `bun:"target_id,notnull"`
	Banned      bool       `bun:"banned,notnull"`
	ExpiresAt   *time.Time `bun:"expires_at,nullzero"`
}

type BanFromInstance struct {
	Entry
	TargetID  int64      `bun:"target_id,notnull"`
	Banned    bool       `bun:"banned,notnull"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero"`
}

type AddModerator struct {
	Entry
	CommunityID int64 `bun:"community_id,notnull"`
	TargetID    int64 `bun:"target_id,notnull"`
	Removed     bool  `bun:"removed,notnull"` // false = added, true = removed
}

type AddAdmin struct {
	Entry
	TargetID int64 `bun:"target_id,notnull"`
	Removed  bool  `bun:"removed,notnull"`
}

type TransferCommunity struct {
	Entry
	CommunityID int64 `bun:"community_id,notnull"`
	TargetID    int64 `bun:"target_id,notnull"`
}
