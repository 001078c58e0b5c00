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

// Package idgen mints the sortable, unique local identifiers federails
// embeds in outbound AP IDs for locally originated objects and
// activities (posts, comments, Announce/Accept/Reject wrappers).
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// entropy is a single monotonic ULID entropy source shared across the
// process; ulid.Monotonic is not safe for concurrent use on its own,
// so access is serialized with mu.
var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a new lexically-sortable identifier suitable for an AP
// object or activity ID path segment.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}
