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

package idgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klppl/federails/internal/idgen"
)

func TestNewIsSortedAndUnique(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = idgen.New()
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		assert.Len(t, id, 26)
		_, dup := seen[id]
		assert.False(t, dup, "id %s minted twice", id)
		seen[id] = struct{}{}
	}

	for i := 1; i < len(ids); i++ {
		assert.LessOrEqual(t, ids[i-1], ids[i])
	}
}
