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

package apmodel

import "encoding/json"

// NewActivity builds an outbound Activity envelope with the given id and
// verb typ, performed by actorID, pointing at an inline object or a bare
// URL reference. To and Cc are left empty.
func NewActivity(id, typ, actorID string, object interface{}) (*Activity, error) {
	raw, err := json.Marshal(object)
	if err != nil {
		return nil, err
	}
	return &Activity{
		Context: DefaultContext,
		ID:      id,
		Type:    typ,
		Actor:   actorID,
		Object:  raw,
	}, nil
}

// WrapAnnounce builds an Announce activity re-broadcasting inner to a
// community's followers (§4.2 Announce, §4.6 step 6).
func WrapAnnounce(id, communityActorID string, inner *Activity) (*Activity, error) {
	return NewActivity(id, "Announce", communityActorID, inner)
}

// WrapUndo builds an Undo activity targeting a previously sent one, used
// for Undo(Like), Undo(Dislike), Undo(Follow), Undo(Block), Undo(Delete).
func WrapUndo(id, actorID string, target *Activity) (*Activity, error) {
	return NewActivity(id, "Undo", actorID, target)
}
