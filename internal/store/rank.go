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
	"math"
	"time"

	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// rankGravity matches Lemmy's post_view hot-rank decay exponent.
const rankGravity = 1.8

// rankBatchSize is the number of rows the 10-minute rank walk
// updates per pass (§4.9: "recompute hot ranks in bounded batches").
const rankBatchSize = 1000

// HotRank computes the hot_rank score for a row with the given score
// and age: sign(score) * log10(max(1,|score|)) / (age_hours + 2)^gravity.
func HotRank(score int64, published time.Time, now time.Time) float64 {
	order := math.Log10(math.Max(1, math.Abs(float64(score))))
	sign := 0.0
	switch {
	case score > 0:
		sign = 1
	case score < 0:
		sign = -1
	}
	ageHours := now.Sub(published).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return sign * order / math.Pow(ageHours+2, rankGravity)
}

// ControversyRank favors close up/down splits with high engagement,
// per the same Lemmy source: (upvotes+downvotes)^balance, balance
// punished when one side dominates.
func ControversyRank(upvotes, downvotes int64) float64 {
	if upvotes <= 0 || downvotes <= 0 {
		return 0
	}
	total := float64(upvotes + downvotes)
	balance := math.Min(float64(upvotes), float64(downvotes)) / math.Max(float64(upvotes), float64(downvotes))
	return math.Pow(total, balance)
}

// ScaledRank normalizes hot_rank by a community's subscriber count, so
// a post in a small community can compete with one in a large
// community at similar relative engagement.
func ScaledRank(hotRank float64, subscribers int64) float64 {
	return hotRank / math.Log10(math.Max(10, float64(subscribers)+2))
}

// RecomputeHotRanksBatch walks up to rankBatchSize posts whose
// hot_rank hasn't been touched in staleAfter, recomputing and
// persisting their derived rank columns (§4.9's 10-minute task).
func (s *Store) RecomputeHotRanksBatch(ctx context.Context, staleAfter time.Duration) (int, error) {
	now := time.Now()
	cutoff := now.Add(-staleAfter)

	var posts []*fedmodel.Post
	err := s.DB.NewSelect().
		Model(&posts).
		Where("? < ?", bun.Ident("rank_updated_at"), cutoff).
		OrderExpr("? ASC", bun.Ident("rank_updated_at")).
		Limit(rankBatchSize).
		Scan(ctx)
	if err != nil {
		return 0, bundb.ProcessError(err)
	}

	for _, p := range posts {
		hot := HotRank(p.Score, p.PublishedAt, now)
		contro := ControversyRank(p.Upvotes, p.Downvotes)
		community, err := s.GetCommunityByID(ctx, p.CommunityID)
		scaled := hot
		if err == nil {
			scaled = ScaledRank(hot, community.Subscribers)
		}
		p.HotRank = hot
		p.ControversyRank = contro
		p.ScaledRank = scaled
		p.RankUpdatedAt = now
		if _, err := s.DB.NewUpdate().Model(p).
			Column("hot_rank", "controversy_rank", "scaled_rank", "rank_updated_at").
			WherePK().Exec(ctx); err != nil {
			return 0, bundb.ProcessError(err)
		}
		s.Caches.Post.Set(p)
	}
	return len(posts), nil
}
