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

// Package store is the object store (C2): a cache-aside facade over
// the bun-backed object database, holding the DB handle directly
// rather than through a separate state indirection layer, since
// federails has no media/timeline subsystems needing that extra seam.
package store

import (
	"context"

	"github.com/klppl/federails/internal/cache"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// MediaPurger deletes a purged actor's stored media (avatar/banner).
// Media/image hosting itself is out of scope for this module, so the
// default Store has no MediaPurger configured and the ban cascade
// (ban.go) skips the purge step entirely when it's nil.
type MediaPurger interface {
	PurgeActorMedia(ctx context.Context, actor *fedmodel.Actor) error
}

// Store bundles the database connection and the in-memory caches
// sat in front of it. Every domain repository (actor.go, post.go,
// ...) is a method set on *Store so they all share one cache
// instance and one DB connection.
type Store struct {
	DB     *bun.DB
	Caches *cache.Caches

	// MediaPurger, if set, is invoked by an instance-scope ban cascade
	// to purge the banned actor's media (§4.4, scenario 7).
	MediaPurger MediaPurger
}

// Open returns a new Store wrapping conn, with freshly initialized
// caches.
func Open(conn *bun.DB) *Store {
	return &Store{
		DB:     conn,
		Caches: cache.New(),
	}
}
