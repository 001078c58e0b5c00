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

package ratelimit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klppl/federails/internal/ratelimit"
)

func TestAllowEnforcesBurstPerIP(t *testing.T) {
	l := ratelimit.New(1, 2)

	assert.True(t, l.Allow("203.0.113.1"))
	assert.True(t, l.Allow("203.0.113.1"))
	assert.False(t, l.Allow("203.0.113.1"))
}

func TestAllowTracksIPsIndependently(t *testing.T) {
	l := ratelimit.New(1, 1)

	assert.True(t, l.Allow("203.0.113.1"))
	assert.False(t, l.Allow("203.0.113.1"))
	assert.True(t, l.Allow("203.0.113.2"))
}

func TestSweepDoesNotPanicOnEmptyLimiter(t *testing.T) {
	l := ratelimit.New(5, 5)
	assert.NotPanics(t, l.Sweep)
}
