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

package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/federation/resolve"
)

func TestDirectAddresseePrefersSharedInbox(t *testing.T) {
	r := resolve.New(nil)
	actor := &fedmodel.Actor{
		InstanceID:     3,
		InboxURL:       "https://example.com/users/alice/inbox",
		SharedInboxURL: "https://example.com/inbox",
	}

	dest := r.DirectAddressee(actor)
	assert.Equal(t, "https://example.com/inbox", dest.InboxURL)
	assert.Equal(t, int64(3), dest.InstanceID)
}

func TestDirectAddresseeFallsBackToPersonalInbox(t *testing.T) {
	r := resolve.New(nil)
	actor := &fedmodel.Actor{
		InboxURL: "https://example.com/users/bob/inbox",
	}

	dest := r.DirectAddressee(actor)
	assert.Equal(t, "https://example.com/users/bob/inbox", dest.InboxURL)
}
