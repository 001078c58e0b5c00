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

package cache

// Caches bundles every per-type cache the store (internal/store) sits
// in front of: one cache field per fedmodel type.
type Caches struct {
	Actor     *ActorCache
	Community *CommunityCache
	Post      *PostCache
	Comment   *CommentCache
	Follow    *FollowCache
}

// New builds a Caches with every sub-cache initialized.
func New() *Caches {
	return &Caches{
		Actor:     NewActor(),
		Community: NewCommunity(),
		Post:      NewPost(),
		Comment:   NewComment(),
		Follow:    NewFollow(),
	}
}
