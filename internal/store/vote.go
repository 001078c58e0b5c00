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

// GetVote returns the actor's existing vote on a target, if any. Votes
// are not cached: the vote table is write-heavy and read only during
// the Like/Dislike/Undo handling path, so a cache would thrash more
// than it would save.
func (s *Store) GetVote(ctx context.Context, actorID, targetID int64, kind fedmodel.VoteTargetKind) (*fedmodel.Vote, error) {
	var vote fedmodel.Vote
	err := s.DB.NewSelect().
		Model(&vote).
		Where("? = ?", bun.Ident("actor_id"), actorID).
		Where("? = ?", bun.Ident("target_id"), targetID).
		Where("? = ?", bun.Ident("target_kind"), kind).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, bundb.ProcessError(err)
	}
	return &vote, nil
}

// PutVote upserts actor's vote on a target, replacing any prior score.
// §3's invariant that "score is always ±1" means a vote row is either
// present with ±1 or deleted entirely; there is no score-0 row.
func (s *Store) PutVote(ctx context.Context, vote *fedmodel.Vote) error {
	_, err := s.DB.NewInsert().
		Model(vote).
		On("CONFLICT (actor_id, target_kind, target_id) DO UPDATE").
		Set("? = EXCLUDED.score", bun.Ident("score")).
		Set("? = EXCLUDED.updated_at", bun.Ident("updated_at")).
		Exec(ctx)
	if err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// DeleteVote removes actor's vote on a target (Undo(Like)/Undo(Dislike)).
func (s *Store) DeleteVote(ctx context.Context, actorID, targetID int64, kind fedmodel.VoteTargetKind) error {
	_, err := s.DB.NewDelete().
		Model((*fedmodel.Vote)(nil)).
		Where("? = ?", bun.Ident("actor_id"), actorID).
		Where("? = ?", bun.Ident("target_id"), targetID).
		Where("? = ?", bun.Ident("target_kind"), kind).
		Exec(ctx)
	if err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// ScoreCounts is the (upvotes, downvotes) pair recomputed after any
// vote change, feeding Post.Score/Upvotes/Downvotes and the ranking
// formulas (C9).
type ScoreCounts struct {
	Upvotes   int
	Downvotes int
}

// CountVotes recomputes upvote/downvote totals for a target directly
// from the votes table, used after every vote mutation rather than
// incrementally maintaining counters that could drift.
func (s *Store) CountVotes(ctx context.Context, targetID int64, kind fedmodel.VoteTargetKind) (ScoreCounts, error) {
	var counts ScoreCounts
	err := s.DB.NewSelect().
		Model((*fedmodel.Vote)(nil)).
		ColumnExpr("count(*) FILTER (WHERE score > 0)").
		ColumnExpr("count(*) FILTER (WHERE score < 0)").
		Where("? = ?", bun.Ident("target_id"), targetID).
		Where("? = ?", bun.Ident("target_kind"), kind).
		Scan(ctx, &counts.Upvotes, &counts.Downvotes)
	if err != nil {
		return ScoreCounts{}, bundb.ProcessError(err)
	}
	return counts, nil
}
