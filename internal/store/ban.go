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
	"time"

	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// Bans are not cached: ban checks happen on the inbound-activity hot
// path but at far lower volume than actor/post/comment lookups, and a
// ban can be lifted early (unban), so correctness favors a direct read.

// ActiveBan returns the active ban (unexpired) against targetID within
// scope, if any. For BanScopeCommunity, communityID must match.
func (s *Store) ActiveBan(ctx context.Context, targetID int64, scope fedmodel.BanScope, communityID int64) (*fedmodel.Ban, error) {
	var ban fedmodel.Ban
	q := s.DB.NewSelect().
		Model(&ban).
		Where("? = ?", bun.Ident("target_id"), targetID).
		Where("? = ?", bun.Ident("scope"), scope).
		Where("? IS NULL OR ? > ?", bun.Ident("expires_at"), bun.Ident("expires_at"), time.Now()).
		OrderExpr("? DESC", bun.Ident("created_at")).
		Limit(1)
	if scope == fedmodel.BanScopeCommunity {
		q = q.Where("? = ?", bun.Ident("community_id"), communityID)
	}
	if err := q.Scan(ctx); err != nil {
		// No matching row means no active ban, not an error.
		return nil, nil
	}
	return &ban, nil
}

// PutBan records a new ban (BanFromCommunity / BanFromInstance verb).
// An instance-scope ban cascades: every post and comment by the
// banned actor is marked removed, the actor is marked purged, and their
// media is purged when a MediaPurger is configured (§4.4, scenario 7).
func (s *Store) PutBan(ctx context.Context, ban *fedmodel.Ban) error {
	if _, err := s.DB.NewInsert().Model(ban).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	if ban.Scope == fedmodel.BanScopeInstance {
		if err := s.cascadeInstanceBan(ctx, ban.TargetID); err != nil {
			return err
		}
	}
	return nil
}

// cascadeInstanceBan removes every post/comment by actorID and, if a
// MediaPurger is configured, purges their stored media.
func (s *Store) cascadeInstanceBan(ctx context.Context, actorID int64) error {
	var posts []*fedmodel.Post
	if err := s.DB.NewSelect().
		Model(&posts).
		Where("? = ?", bun.Ident("creator_id"), actorID).
		Where("? = FALSE", bun.Ident("removed")).
		Scan(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	for _, p := range posts {
		p.Removed = true
		if err := s.UpdatePost(ctx, p); err != nil {
			return err
		}
	}

	var comments []*fedmodel.Comment
	if err := s.DB.NewSelect().
		Model(&comments).
		Where("? = ?", bun.Ident("creator_id"), actorID).
		Where("? = FALSE", bun.Ident("removed")).
		Scan(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	for _, c := range comments {
		c.Removed = true
		if err := s.UpdateComment(ctx, c); err != nil {
			return err
		}
	}

	actor, err := s.GetActorByID(ctx, actorID)
	if err != nil {
		return err
	}
	if s.MediaPurger != nil {
		if err := s.MediaPurger.PurgeActorMedia(ctx, actor); err != nil {
			return err
		}
	}
	actor.Purged = true
	return s.UpdateActor(ctx, actor)
}

// SweepExpiredBans deletes ban rows whose expiry has passed, the
// hourly housekeeping task of §4.9. Permanent bans (expires_at NULL)
// are never touched here.
func (s *Store) SweepExpiredBans(ctx context.Context) (int, error) {
	res, err := s.DB.NewDelete().
		Model((*fedmodel.Ban)(nil)).
		Where("? IS NOT NULL AND ? < ?", bun.Ident("expires_at"), bun.Ident("expires_at"), time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// LiftBan deletes any active ban rows matching targetID/scope,
// implementing the unban moderation action (Undo of a Block verb).
func (s *Store) LiftBan(ctx context.Context, targetID int64, scope fedmodel.BanScope, communityID int64) error {
	q := s.DB.NewDelete().
		Model((*fedmodel.Ban)(nil)).
		Where("? = ?", bun.Ident("target_id"), targetID).
		Where("? = ?", bun.Ident("scope"), scope)
	if scope == fedmodel.BanScopeCommunity {
		q = q.Where("? = ?", bun.Ident("community_id"), communityID)
	}
	if _, err := q.Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}
