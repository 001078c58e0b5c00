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

// Package authz is the Authorization component (C5): a single pure
// decision function over a precomputed per-viewer projection, kept
// free of any store/db dependency so its rules can be unit tested in
// isolation.
package authz

import (
	"errors"

	"github.com/klppl/federails/internal/ferror"
)

// Verb identifies the kind of action being authorized.
type Verb int

const (
	DeleteContent Verb = iota
	ChangeModerators
	TransferCommunity
	RemoveCommunity
	BanFromCommunity
	BanFromInstance
	Vote
)

// Decision is the structured denial enum callers map to wire-level
// error codes. Permit is the zero value; a verb Authorize has no
// case for falls through to its default branch and is denied
// (DenyNotAdmin), not silently allowed.
type Decision int

const (
	Permit Decision = iota
	DenyNotCreatorOrMod
	DenyNotModOrAdmin
	DenyNotTopModOrAdmin
	DenyNotAdmin
	DenyBanned
	DenyDownvotesDisabled
)

func (d Decision) String() string {
	switch d {
	case Permit:
		return "permit"
	case DenyNotCreatorOrMod:
		return "not creator or moderator"
	case DenyNotModOrAdmin:
		return "not moderator or admin"
	case DenyNotTopModOrAdmin:
		return "not top moderator or admin"
	case DenyNotAdmin:
		return "not admin"
	case DenyBanned:
		return "actor is banned"
	case DenyDownvotesDisabled:
		return "downvotes disabled"
	default:
		return "unknown"
	}
}

// Error converts a denial into a ferror.AuthorizationError, or nil for
// Permit, so processing code can do `if err := d.Error(); err != nil`.
func (d Decision) Error() error {
	if d == Permit {
		return nil
	}
	return ferror.NewAuthorization(errors.New(d.String()))
}

// Request is the precomputed per-viewer projection §4.5 calls for
// ("creator_is_moderator, creator_is_admin, banned_from_community,
// can_mod, ..."). Store/processing code fills this in from cached
// relationship lookups before calling Authorize; authz itself never
// touches the database.
type Request struct {
	// IsCreator is true if the actor created the content/community
	// the action targets.
	IsCreator bool

	// IsModerator is true if the actor moderates the target
	// community.
	IsModerator bool

	// IsTopModerator is true if the actor is first in the target
	// community's moderator ordering (required to transfer
	// ownership).
	IsTopModerator bool

	// IsAdmin is true if the actor is a site admin.
	IsAdmin bool

	// IsBanned is true if the actor is currently banned from the
	// relevant scope (community, for community-scoped actions; or
	// instance, for Vote).
	IsBanned bool

	// VoteScore is only consulted for the Vote verb: +1 or -1.
	VoteScore int8

	// AllowDownvotes mirrors SiteSettings.AllowDownvotes.
	AllowDownvotes bool
}

// Authorize decides permit/deny for verb given req, per §4.4:
//   - DeleteContent: creator, community moderator, or site admin.
//   - ChangeModerators: moderator or admin.
//   - TransferCommunity: top moderator or admin.
//   - RemoveCommunity: admin only.
//   - BanFromCommunity: moderator or admin.
//   - BanFromInstance: admin only.
//   - Vote: any non-banned actor; a -1 score additionally requires
//     AllowDownvotes.
func Authorize(verb Verb, req Request) Decision {
	switch verb {
	case DeleteContent:
		if req.IsCreator || req.IsModerator || req.IsAdmin {
			return Permit
		}
		return DenyNotCreatorOrMod

	case ChangeModerators:
		if req.IsModerator || req.IsAdmin {
			return Permit
		}
		return DenyNotModOrAdmin

	case TransferCommunity:
		if req.IsTopModerator || req.IsAdmin {
			return Permit
		}
		return DenyNotTopModOrAdmin

	case RemoveCommunity:
		if req.IsAdmin {
			return Permit
		}
		return DenyNotAdmin

	case BanFromCommunity:
		if req.IsModerator || req.IsAdmin {
			return Permit
		}
		return DenyNotModOrAdmin

	case BanFromInstance:
		if req.IsAdmin {
			return Permit
		}
		return DenyNotAdmin

	case Vote:
		if req.IsBanned {
			return DenyBanned
		}
		if req.VoteScore < 0 && !req.AllowDownvotes {
			return DenyDownvotesDisabled
		}
		return Permit

	default:
		return DenyNotAdmin
	}
}
