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

package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/klppl/federails/internal/store"
)

func TestHotRankDecaysWithAge(t *testing.T) {
	now := time.Now()
	fresh := store.HotRank(10, now, now)
	hour := store.HotRank(10, now.Add(-time.Hour), now)
	day := store.HotRank(10, now.Add(-24*time.Hour), now)

	assert.Greater(t, fresh, hour)
	assert.Greater(t, hour, day)
}

func TestHotRankSignFollowsScore(t *testing.T) {
	now := time.Now()
	assert.Greater(t, store.HotRank(5, now, now), 0.0)
	assert.Less(t, store.HotRank(-5, now, now), 0.0)
	assert.Equal(t, 0.0, store.HotRank(0, now, now))
}

func TestControversyRankZeroWithoutBothSides(t *testing.T) {
	assert.Equal(t, 0.0, store.ControversyRank(10, 0))
	assert.Equal(t, 0.0, store.ControversyRank(0, 10))
	assert.Greater(t, store.ControversyRank(10, 10), 0.0)
}

func TestControversyRankFavorsBalance(t *testing.T) {
	balanced := store.ControversyRank(10, 10)
	lopsided := store.ControversyRank(18, 2)
	assert.Greater(t, balanced, lopsided)
}

func TestScaledRankShrinksWithSubscribers(t *testing.T) {
	small := store.ScaledRank(1.0, 10)
	large := store.ScaledRank(1.0, 100000)
	assert.Greater(t, small, large)
}
