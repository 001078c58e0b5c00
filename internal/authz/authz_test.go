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

package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klppl/federails/internal/authz"
)

func TestAuthorizeDeleteContent(t *testing.T) {
	assert.Equal(t, authz.Permit, authz.Authorize(authz.DeleteContent, authz.Request{IsCreator: true}))
	assert.Equal(t, authz.Permit, authz.Authorize(authz.DeleteContent, authz.Request{IsModerator: true}))
	assert.Equal(t, authz.Permit, authz.Authorize(authz.DeleteContent, authz.Request{IsAdmin: true}))
	assert.Equal(t, authz.DenyNotCreatorOrMod, authz.Authorize(authz.DeleteContent, authz.Request{}))
}

func TestAuthorizeChangeModerators(t *testing.T) {
	assert.Equal(t, authz.Permit, authz.Authorize(authz.ChangeModerators, authz.Request{IsModerator: true}))
	assert.Equal(t, authz.Permit, authz.Authorize(authz.ChangeModerators, authz.Request{IsAdmin: true}))
	assert.Equal(t, authz.DenyNotModOrAdmin, authz.Authorize(authz.ChangeModerators, authz.Request{IsCreator: true}))
}

func TestAuthorizeTransferCommunity(t *testing.T) {
	assert.Equal(t, authz.Permit, authz.Authorize(authz.TransferCommunity, authz.Request{IsTopModerator: true}))
	assert.Equal(t, authz.Permit, authz.Authorize(authz.TransferCommunity, authz.Request{IsAdmin: true}))
	assert.Equal(t, authz.DenyNotTopModOrAdmin, authz.Authorize(authz.TransferCommunity, authz.Request{IsModerator: true}))
}

func TestAuthorizeRemoveCommunity(t *testing.T) {
	assert.Equal(t, authz.Permit, authz.Authorize(authz.RemoveCommunity, authz.Request{IsAdmin: true}))
	assert.Equal(t, authz.DenyNotAdmin, authz.Authorize(authz.RemoveCommunity, authz.Request{IsTopModerator: true}))
}

func TestAuthorizeBanFromCommunity(t *testing.T) {
	assert.Equal(t, authz.Permit, authz.Authorize(authz.BanFromCommunity, authz.Request{IsModerator: true}))
	assert.Equal(t, authz.DenyNotModOrAdmin, authz.Authorize(authz.BanFromCommunity, authz.Request{}))
}

func TestAuthorizeBanFromInstance(t *testing.T) {
	assert.Equal(t, authz.Permit, authz.Authorize(authz.BanFromInstance, authz.Request{IsAdmin: true}))
	assert.Equal(t, authz.DenyNotAdmin, authz.Authorize(authz.BanFromInstance, authz.Request{IsModerator: true}))
}

func TestAuthorizeVote(t *testing.T) {
	assert.Equal(t, authz.Permit, authz.Authorize(authz.Vote, authz.Request{VoteScore: 1}))
	assert.Equal(t, authz.DenyBanned, authz.Authorize(authz.Vote, authz.Request{IsBanned: true, VoteScore: 1}))
	assert.Equal(t, authz.DenyDownvotesDisabled, authz.Authorize(authz.Vote, authz.Request{VoteScore: -1, AllowDownvotes: false}))
	assert.Equal(t, authz.Permit, authz.Authorize(authz.Vote, authz.Request{VoteScore: -1, AllowDownvotes: true}))
}

func TestDecisionError(t *testing.T) {
	assert.NoError(t, authz.Permit.Error())

	err := authz.DenyNotAdmin.Error()
	assert.Error(t, err)
}
