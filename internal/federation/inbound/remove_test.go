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

package inbound_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/klppl/federails/internal/apmodel"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/federation/dereference"
	"github.com/klppl/federails/internal/federation/inbound"
	"github.com/klppl/federails/internal/httpclient"
	"github.com/klppl/federails/internal/store"
)

// RemoveContentSuite drives Parser.Handle against a real sqlite-backed
// Store, covering the Remove(Note) end-to-end path (§8 scenario 5) that
// the package's pure-helper tests can't reach.
type RemoveContentSuite struct {
	suite.Suite
	st     *store.Store
	parser *inbound.Parser

	localInstance  *fedmodel.Instance
	remoteInstance *fedmodel.Instance
	communityActor *fedmodel.Actor
	community      *fedmodel.Community
	modActor       *fedmodel.Actor
	post           *fedmodel.Post
	comment        *fedmodel.Comment
}

func (s *RemoveContentSuite) SetupTest() {
	ctx := context.Background()
	db, err := bundb.OpenSQLite(ctx)
	s.Require().NoError(err)
	s.st = store.Open(db)

	client := httpclient.New(httpclient.Config{})
	fetcher := dereference.New(client, s.st, "local.example")
	s.parser = inbound.New(s.st, fetcher, "local.example")

	s.localInstance = &fedmodel.Instance{Domain: "local.example"}
	s.Require().NoError(s.st.PutInstance(ctx, s.localInstance))

	s.remoteInstance = &fedmodel.Instance{Domain: "remote.example"}
	s.Require().NoError(s.st.PutInstance(ctx, s.remoteInstance))

	s.communityActor = &fedmodel.Actor{
		APID:          "https://local.example/communities/news",
		Type:          fedmodel.ActorCommunity,
		Local:         true,
		InstanceID:    s.localInstance.ID,
		PreferredName: "news",
		InboxURL:      "https://local.example/communities/news/inbox",
		PublicKeyPEM:  "-----BEGIN PUBLIC KEY-----\n-----END PUBLIC KEY-----",
	}
	s.Require().NoError(s.st.PutActor(ctx, s.communityActor))

	s.community = &fedmodel.Community{ActorID: s.communityActor.ID, Title: "news"}
	s.Require().NoError(s.st.PutCommunity(ctx, s.community))

	s.modActor = &fedmodel.Actor{
		APID:          "https://remote.example/users/mod",
		Type:          fedmodel.ActorPerson,
		InstanceID:    s.remoteInstance.ID,
		PreferredName: "mod",
		InboxURL:      "https://remote.example/users/mod/inbox",
		PublicKeyPEM:  "-----BEGIN PUBLIC KEY-----\n-----END PUBLIC KEY-----",
	}
	s.Require().NoError(s.st.PutActor(ctx, s.modActor))
	s.Require().NoError(s.st.AddModerator(ctx, s.community.ID, s.modActor.ID))

	poster := &fedmodel.Actor{
		APID:          "https://remote.example/users/poster",
		Type:          fedmodel.ActorPerson,
		InstanceID:    s.remoteInstance.ID,
		PreferredName: "poster",
		InboxURL:      "https://remote.example/users/poster/inbox",
		PublicKeyPEM:  "-----BEGIN PUBLIC KEY-----\n-----END PUBLIC KEY-----",
	}
	s.Require().NoError(s.st.PutActor(ctx, poster))

	s.post = &fedmodel.Post{
		APID:        "https://remote.example/posts/1",
		CommunityID: s.community.ID,
		CreatorID:   poster.ID,
		Name:        "hello",
	}
	s.Require().NoError(s.st.PutPost(ctx, s.post))

	s.comment = &fedmodel.Comment{
		APID:      "https://remote.example/comments/1",
		PostID:    s.post.ID,
		CreatorID: poster.ID,
		Content:   "rule-breaking reply",
		Path:      "1.2",
	}
	s.Require().NoError(s.st.PutComment(ctx, s.comment))
}

// TestRemoveNoteMarksCommentRemoved drives a Remove(Note) activity from
// a remote moderator against a local community's comment and asserts it
// is removed, logged, and re-Announced to the community's followers.
func (s *RemoveContentSuite) TestRemoveNoteMarksCommentRemoved() {
	ctx := context.Background()

	act, err := apmodel.NewActivity(
		"https://remote.example/activities/remove-1",
		"Remove",
		s.modActor.APID,
		s.comment.APID,
	)
	s.Require().NoError(err)

	outcome, err := s.parser.Handle(ctx, s.modActor.APID, act)
	s.Require().NoError(err)
	s.Require().NotNil(outcome)

	s.True(outcome.Rebroadcast)
	s.Equal(s.community.ID, outcome.RebroadcastCommunityID)
	s.Equal(s.remoteInstance.ID, outcome.ExcludeInstanceID)
	s.Equal(s.communityActor.ID, outcome.EmitAsActorID)
	s.Require().NotNil(outcome.Emit)
	s.Equal(act.ID, outcome.Emit.ID)

	gotComment, err := s.st.GetCommentByAPID(ctx, s.comment.APID)
	s.Require().NoError(err)
	s.True(gotComment.Removed, "comment must be marked removed")

	var logEntries []*fedmodel.RemoveComment
	s.Require().NoError(s.st.DB.NewSelect().Model(&logEntries).Scan(ctx))
	s.Require().Len(logEntries, 1, "a RemoveComment mod-log row must be written")
	s.Equal(s.modActor.ID, logEntries[0].ModID)
	s.Equal(gotComment.ID, logEntries[0].CommentID)
	s.True(logEntries[0].Removed)
}

// TestUndoRemoveNoteReinstatesComment exercises the reversal path.
func (s *RemoveContentSuite) TestUndoRemoveNoteReinstatesComment() {
	ctx := context.Background()

	removeAct, err := apmodel.NewActivity(
		"https://remote.example/activities/remove-2",
		"Remove",
		s.modActor.APID,
		s.comment.APID,
	)
	s.Require().NoError(err)
	_, err = s.parser.Handle(ctx, s.modActor.APID, removeAct)
	s.Require().NoError(err)

	undoAct, err := apmodel.WrapUndo("https://remote.example/activities/undo-remove-2", s.modActor.APID, removeAct)
	s.Require().NoError(err)

	outcome, err := s.parser.Handle(ctx, s.modActor.APID, undoAct)
	s.Require().NoError(err)
	s.Nil(outcome, "Undo(Remove) is dispatched through handleUndo, which does not produce an Outcome")

	gotComment, err := s.st.GetCommentByAPID(ctx, s.comment.APID)
	s.Require().NoError(err)
	s.False(gotComment.Removed, "comment must be reinstated by Undo(Remove)")
}

func TestRemoveContentSuite(t *testing.T) {
	suite.Run(t, new(RemoveContentSuite))
}
