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

// Package store's gc.go holds the housekeeping queries the scheduler
// (C9) runs: sentinel-overwriting long-deleted content, pruning denied
// registrations and trimming the SentActivity/ReceivedActivity ledgers
// (daily/weekly), plus recounting subscribers, clearing expired
// instance blocks (hourly) and publishing scheduled posts (10-minute)
// (§4.9).
package store

import (
	"context"
	"time"

	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// SentinelizeOldDeletedPosts overwrites the name/body of posts deleted
// more than olderThan ago with fedmodel.ContentRemoved, so the row
// (needed for thread structure and federation history) survives but
// the content doesn't.
func (s *Store) SentinelizeOldDeletedPosts(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	var posts []*fedmodel.Post
	err := s.DB.NewSelect().
		Model(&posts).
		Where("? = TRUE", bun.Ident("deleted")).
		Where("? != ?", bun.Ident("name"), fedmodel.ContentRemoved).
		Where("? IS NOT NULL AND ? < ?", bun.Ident("deleted_at"), bun.Ident("deleted_at"), cutoff).
		Scan(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}
	for _, p := range posts {
		p.Name = fedmodel.ContentRemoved
		p.Body = fedmodel.ContentRemoved
		p.URL = ""
		if err := s.UpdatePost(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(posts), nil
}

// SentinelizeOldDeletedComments is SentinelizeOldDeletedPosts's
// counterpart for comments.
func (s *Store) SentinelizeOldDeletedComments(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	var comments []*fedmodel.Comment
	err := s.DB.NewSelect().
		Model(&comments).
		Where("? = TRUE", bun.Ident("deleted")).
		Where("? != ?", bun.Ident("content"), fedmodel.ContentRemoved).
		Where("? IS NOT NULL AND ? < ?", bun.Ident("deleted_at"), bun.Ident("deleted_at"), cutoff).
		Scan(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}
	for _, c := range comments {
		c.Content = fedmodel.ContentRemoved
		if err := s.UpdateComment(ctx, c); err != nil {
			return 0, err
		}
	}
	return len(comments), nil
}

// DeleteDeniedRegistrations removes registration applications denied
// more than olderThan ago, along with the LocalUser/Actor rows they
// gated.
func (s *Store) DeleteDeniedRegistrations(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	var apps []*fedmodel.RegistrationApplication
	err := s.DB.NewSelect().
		Model(&apps).
		Where("? = FALSE", bun.Ident("approved")).
		Where("? IS NOT NULL AND ? < ?", bun.Ident("decided_at"), bun.Ident("decided_at"), cutoff).
		Scan(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}

	for _, app := range apps {
		user, err := s.GetLocalUserByID(ctx, app.LocalUserID)
		if err != nil {
			continue
		}
		if _, err := s.DB.NewDelete().Model((*fedmodel.RegistrationApplication)(nil)).
			Where("? = ?", bun.Ident("id"), app.ID).Exec(ctx); err != nil {
			return 0, bundb.ProcessError(err)
		}
		if _, err := s.DB.NewDelete().Model((*fedmodel.LocalUser)(nil)).
			Where("? = ?", bun.Ident("id"), user.ID).Exec(ctx); err != nil {
			return 0, bundb.ProcessError(err)
		}
		if _, err := s.DB.NewDelete().Model((*fedmodel.Actor)(nil)).
			Where("? = ?", bun.Ident("id"), user.ActorID).Exec(ctx); err != nil {
			return 0, bundb.ProcessError(err)
		}
		s.Caches.Actor.Invalidate(user.ActorID)
	}
	return len(apps), nil
}

// GCSentActivities deletes SentActivity rows older than olderThan
// (the weekly audit-ledger trim of §4.9).
func (s *Store) GCSentActivities(ctx context.Context, olderThan time.Duration) (int, error) {
	res, err := s.DB.NewDelete().
		Model((*fedmodel.SentActivity)(nil)).
		Where("? < ?", bun.Ident("created_at"), time.Now().Add(-olderThan)).
		Exec(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// GCReceivedActivities is GCSentActivities's counterpart for the
// inbound dedup ledger.
func (s *Store) GCReceivedActivities(ctx context.Context, olderThan time.Duration) (int, error) {
	res, err := s.DB.NewDelete().
		Model((*fedmodel.ReceivedActivity)(nil)).
		Where("? < ?", bun.Ident("created_at"), time.Now().Add(-olderThan)).
		Exec(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// RecomputeActiveUserCounts refreshes each community's Subscribers
// column from the Follow table (the hourly active-count task of
// §4.9; "active" here means an accepted follower).
func (s *Store) RecomputeActiveUserCounts(ctx context.Context) (int, error) {
	var communities []*fedmodel.Community
	if err := s.DB.NewSelect().Model(&communities).Scan(ctx); err != nil {
		return 0, bundb.ProcessError(err)
	}
	for _, c := range communities {
		count, err := s.DB.NewSelect().
			Model((*fedmodel.Follow)(nil)).
			Where("? = ?", bun.Ident("community_id"), c.ID).
			Where("? = ?", bun.Ident("state"), fedmodel.FollowAccepted).
			Count(ctx)
		if err != nil {
			return 0, bundb.ProcessError(err)
		}
		if int64(count) == c.Subscribers {
			continue
		}
		c.Subscribers = int64(count)
		if err := s.UpdateCommunity(ctx, c); err != nil {
			return 0, err
		}
	}
	return len(communities), nil
}

// DeleteExpiredInstanceBlocks clears BlockedUntil on instances whose
// outbound block has expired, restoring normal delivery.
func (s *Store) DeleteExpiredInstanceBlocks(ctx context.Context) (int, error) {
	res, err := s.DB.NewUpdate().
		Model((*fedmodel.Instance)(nil)).
		Set("? = NULL", bun.Ident("blocked_until")).
		Set("? = ?", bun.Ident("block_reason"), "").
		Where("? IS NOT NULL AND ? < ?", bun.Ident("blocked_until"), bun.Ident("blocked_until"), time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// PublishScheduledPosts publishes posts whose scheduled_publish_at has
// passed, provided the creator isn't banned and the community still
// exists (§4.9's 10-minute task).
func (s *Store) PublishScheduledPosts(ctx context.Context) (int, error) {
	var posts []*fedmodel.Post
	err := s.DB.NewSelect().
		Model(&posts).
		Where("? IS NOT NULL AND ? <= ?", bun.Ident("scheduled_publish_at"), bun.Ident("scheduled_publish_at"), time.Now()).
		Scan(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}

	published := 0
	for _, p := range posts {
		if _, err := s.GetCommunityByID(ctx, p.CommunityID); err != nil {
			continue
		}
		if ban, err := s.ActiveBan(ctx, p.CreatorID, fedmodel.BanScopeCommunity, p.CommunityID); err == nil && ban != nil {
			continue
		}
		if ban, err := s.ActiveBan(ctx, p.CreatorID, fedmodel.BanScopeInstance, 0); err == nil && ban != nil {
			continue
		}
		p.ScheduledPublishAt = nil
		p.PublishedAt = time.Now()
		if err := s.UpdatePost(ctx, p); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}
