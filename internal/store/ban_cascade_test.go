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

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/store"
)

// BanCascadeSuite drives PutBan against a real sqlite-backed Store,
// covering the instance-ban cascade (§4.4, scenario 7) that a mocked
// store can't exercise.
type BanCascadeSuite struct {
	suite.Suite
	st *store.Store
}

func (s *BanCascadeSuite) SetupTest() {
	ctx := context.Background()
	db, err := bundb.OpenSQLite(ctx)
	s.Require().NoError(err)
	s.st = store.Open(db)
}

func (s *BanCascadeSuite) putInstance(domain string) *fedmodel.Instance {
	ctx := context.Background()
	inst := &fedmodel.Instance{Domain: domain}
	s.Require().NoError(s.st.PutInstance(ctx, inst))
	return inst
}

func (s *BanCascadeSuite) putActor(instanceID int64, preferredName string) *fedmodel.Actor {
	ctx := context.Background()
	actor := &fedmodel.Actor{
		APID:          "https://example.com/users/" + preferredName,
		Type:          fedmodel.ActorPerson,
		InstanceID:    instanceID,
		PreferredName: preferredName,
		InboxURL:      "https://example.com/users/" + preferredName + "/inbox",
		PublicKeyPEM:  "-----BEGIN PUBLIC KEY-----\n-----END PUBLIC KEY-----",
	}
	s.Require().NoError(s.st.PutActor(ctx, actor))
	return actor
}

// TestInstanceBanRemovesPostsAndComments exercises scenario 7: an
// instance-scope ban must remove every post and comment the banned
// actor authored and mark the actor purged, not just record the Ban row.
func (s *BanCascadeSuite) TestInstanceBanRemovesPostsAndComments() {
	ctx := context.Background()

	instance := s.putInstance("evil.example")
	community := s.putActor(instance.ID, "community-actor")
	target := s.putActor(instance.ID, "spammer")

	comm := &fedmodel.Community{ActorID: community.ID, Title: "news"}
	s.Require().NoError(s.st.PutCommunity(ctx, comm))

	post := &fedmodel.Post{
		APID:        "https://evil.example/posts/1",
		CommunityID: comm.ID,
		CreatorID:   target.ID,
		Name:        "spam",
	}
	s.Require().NoError(s.st.PutPost(ctx, post))

	comment := &fedmodel.Comment{
		APID:      "https://evil.example/comments/1",
		PostID:    post.ID,
		CreatorID: target.ID,
		Content:   "more spam",
		Path:      "1.2",
	}
	s.Require().NoError(s.st.PutComment(ctx, comment))

	err := s.st.PutBan(ctx, &fedmodel.Ban{
		ModID:    community.ID,
		TargetID: target.ID,
		Scope:    fedmodel.BanScopeInstance,
	})
	s.Require().NoError(err)

	gotPost, err := s.st.GetPostByID(ctx, post.ID)
	s.Require().NoError(err)
	s.True(gotPost.Removed, "post must be removed by the ban cascade")

	gotComment, err := s.st.GetCommentByID(ctx, comment.ID)
	s.Require().NoError(err)
	s.True(gotComment.Removed, "comment must be removed by the ban cascade")

	gotActor, err := s.st.GetActorByID(ctx, target.ID)
	s.Require().NoError(err)
	s.True(gotActor.Purged, "actor must be marked purged by the ban cascade")
}

// TestCommunityBanDoesNotCascade confirms the cascade is scoped to
// instance-wide bans: a community-scope ban bans the actor there
// without touching their content elsewhere.
func (s *BanCascadeSuite) TestCommunityBanDoesNotCascade() {
	ctx := context.Background()

	instance := s.putInstance("other.example")
	community := s.putActor(instance.ID, "community-actor-2")
	target := s.putActor(instance.ID, "poster")

	comm := &fedmodel.Community{ActorID: community.ID, Title: "chat"}
	s.Require().NoError(s.st.PutCommunity(ctx, comm))

	post := &fedmodel.Post{
		APID:        "https://other.example/posts/1",
		CommunityID: comm.ID,
		CreatorID:   target.ID,
		Name:        "hello",
	}
	s.Require().NoError(s.st.PutPost(ctx, post))

	err := s.st.PutBan(ctx, &fedmodel.Ban{
		ModID:       community.ID,
		TargetID:    target.ID,
		Scope:       fedmodel.BanScopeCommunity,
		CommunityID: comm.ID,
	})
	s.Require().NoError(err)

	gotPost, err := s.st.GetPostByID(ctx, post.ID)
	s.Require().NoError(err)
	s.False(gotPost.Removed, "a community ban must not cascade-remove content")

	gotActor, err := s.st.GetActorByID(ctx, target.ID)
	s.Require().NoError(err)
	s.False(gotActor.Purged, "a community ban must not purge the actor")
}

func TestBanCascadeSuite(t *testing.T) {
	suite.Run(t, new(BanCascadeSuite))
}
