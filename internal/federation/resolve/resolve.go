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

// Package resolve is the Inbox Resolver (C8): given a local activity and
// its addressing, computes the de-duplicated set of destination inboxes
// on remote instances (§4.8).
package resolve

import (
	"context"

	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/store"
)

// followerPageSize bounds how many follower rows are pulled per batch,
// instead of loading one giant follower list per post.
const followerPageSize = 500

// Resolver computes destination inbox sets.
type Resolver struct {
	Store *store.Store
}

// New builds a Resolver.
func New(st *store.Store) *Resolver {
	return &Resolver{Store: st}
}

// Destination is one delivery target: a destination instance and the
// inbox URL to post to (the shared inbox, when the receiving instance
// has one).
type Destination struct {
	InstanceID int64
	Domain     string
	InboxURL   string
}

// FollowersOfCommunity expands a community's accepted followers into a
// deduplicated, shared-inbox-grouped destination set, excluding
// excludeInstanceID (the origin instance of a remote-origin activity
// being re-announced, per §4.8's "excluding the original sender's
// instance" rule). excludeInstanceID of 0 excludes nothing.
func (r *Resolver) FollowersOfCommunity(ctx context.Context, communityID, excludeInstanceID int64) ([]Destination, error) {
	seen := make(map[string]struct{})
	var dests []Destination

	var afterID int64
	for {
		actors, err := r.Store.ListAcceptedFollowerActors(ctx, communityID, afterID, followerPageSize)
		if err != nil {
			return nil, err
		}
		if len(actors) == 0 {
			break
		}
		for _, actor := range actors {
			afterID = actor.ID
			if actor.Local || actor.InstanceID == excludeInstanceID {
				continue
			}
			inbox := actor.SharedInboxURL
			if inbox == "" {
				inbox = actor.InboxURL
			}
			if inbox == "" {
				continue
			}
			if _, ok := seen[inbox]; ok {
				continue
			}
			seen[inbox] = struct{}{}
			dest := Destination{InstanceID: actor.InstanceID, InboxURL: inbox}
			if actor.Instance != nil {
				dest.Domain = actor.Instance.Domain
			}
			dests = append(dests, dest)
		}
		if len(actors) < followerPageSize {
			break
		}
	}
	return dests, nil
}

// DirectAddressee resolves a single actor's inbox for directly
// addressed activities (Follow, Accept, Reject, Flag). Returns the
// actor's shared inbox if present, else its own inbox.
func (r *Resolver) DirectAddressee(actor *fedmodel.Actor) Destination {
	inbox := actor.SharedInboxURL
	if inbox == "" {
		inbox = actor.InboxURL
	}
	return Destination{InstanceID: actor.InstanceID, InboxURL: inbox}
}
