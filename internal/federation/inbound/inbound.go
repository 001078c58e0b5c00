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

// Package inbound is the Activity Parser (C4): it translates a verified
// inbound Activity into a mutation against the Object Store, dispatched
// by (verb, object-kind) per §4.2's table. Unknown verbs or recognized
// verbs on unrecognized object kinds are not an error: the caller (C6)
// acknowledges 200 and drops them for forward compatibility.
package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/klppl/federails/internal/apmodel"
	"github.com/klppl/federails/internal/authz"
	"github.com/klppl/federails/internal/db"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/federation/dereference"
	"github.com/klppl/federails/internal/ferror"
	"github.com/klppl/federails/internal/log"
	"github.com/klppl/federails/internal/store"
	"github.com/klppl/federails/internal/text"
)

// ErrUnrecognized is returned (not logged as an error) when the
// (verb, object-kind) pair isn't one §4.2 recognizes.
var ErrUnrecognized = errors.New("inbound: unrecognized verb/object-kind")

// Parser applies inbound activities to the Object Store.
type Parser struct {
	Store    *store.Store
	Fetcher  *dereference.Fetcher
	Hostname string
}

// New builds a Parser.
func New(st *store.Store, fetcher *dereference.Fetcher, hostname string) *Parser {
	return &Parser{Store: st, Fetcher: fetcher, Hostname: hostname}
}

// Outcome tells the Inbox Dispatcher (C6) what, if anything, needs to
// happen after a successful Handle: re-broadcasting to a community's
// followers (step 6), or emitting a direct reply activity (e.g. an
// auto-Accept(Follow)).
type Outcome struct {
	// Rebroadcast, if true, means C6 should wrap the original activity
	// in an Announce and enqueue it to RebroadcastCommunityID's
	// followers, excluding ExcludeInstanceID.
	Rebroadcast            bool
	RebroadcastCommunityID int64
	ExcludeInstanceID      int64

	// Emit, if non-nil, is a new activity the community (EmitAsActorID)
	// must sign and send directly to EmitTargetInbox.
	Emit           *apmodel.Activity
	EmitAsActorID  int64
	EmitTargetInbox string
}

func domainOf(apID string) string {
	u, err := url.Parse(apID)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// Handle dispatches act, performed by the actor at outerActorAPID (the
// signature's verified keyId owner), per §4.2's verb table.
func (p *Parser) Handle(ctx context.Context, outerActorAPID string, act *apmodel.Activity) (*Outcome, error) {
	switch act.Type {
	case "Create":
		return nil, p.handleCreate(ctx, act)
	case "Update":
		return nil, p.handleUpdate(ctx, act)
	case "Delete":
		return nil, p.handleDelete(ctx, act, true)
	case "Like":
		return nil, p.handleVote(ctx, act, 1)
	case "Dislike":
		return nil, p.handleVote(ctx, act, -1)
	case "Follow":
		return p.handleFollow(ctx, act)
	case "Accept":
		return nil, p.handleAcceptReject(ctx, act, true)
	case "Reject":
		return nil, p.handleAcceptReject(ctx, act, false)
	case "Undo":
		return nil, p.handleUndo(ctx, act)
	case "Announce":
		return p.handleAnnounce(ctx, act)
	case "Add":
		return nil, p.handleAddRemoveModerator(ctx, act, true)
	case "Remove":
		return p.handleRemove(ctx, act)
	case "Block":
		return nil, p.handleBlock(ctx, act, true)
	case "Flag":
		return nil, p.handleFlag(ctx, act)
	default:
		log.Debugf("inbound: dropping unrecognized verb %q from %s", act.Type, outerActorAPID)
		return nil, ErrUnrecognized
	}
}

// handleCreate inserts a Post or Comment from an inline Note/Page
// object, distinguishing the two by whether InReplyTo is set and
// whether the community's ap_id matches Audience or To.
func (p *Parser) handleCreate(ctx context.Context, act *apmodel.Activity) error {
	obj, err := act.InnerObject()
	if err != nil {
		return ferror.NewValidation(fmt.Errorf("inbound: create: %w", err))
	}
	if obj.ID == "" || obj.AttributedTo == "" {
		return ferror.NewValidation(fmt.Errorf("inbound: create: missing id/attributedTo"))
	}
	if domainOf(obj.ID) != domainOf(act.Actor) {
		return ferror.NewAuthorization(fmt.Errorf("inbound: create: object domain %s does not match actor domain %s", domainOf(obj.ID), domainOf(act.Actor)))
	}

	creator, err := p.Fetcher.FetchActor(ctx, act.Actor)
	if err != nil {
		return err
	}

	cleanBody, verr := text.Validate(obj.Content)
	if verr != nil {
		return ferror.NewValidation(verr)
	}

	if obj.InReplyTo != "" {
		return p.createComment(ctx, obj, creator, cleanBody)
	}
	return p.createPost(ctx, obj, creator, cleanBody)
}

func (p *Parser) createPost(ctx context.Context, obj *apmodel.Object, creator *fedmodel.Actor, body string) error {
	community, err := p.communityForAudience(ctx, obj.Audience, obj.To, obj.CC)
	if err != nil {
		return err
	}

	if _, err := p.Store.GetPostByAPID(ctx, obj.ID); err == nil {
		return nil // already applied: inbox idempotence
	} else if !errors.Is(err, db.ErrNoEntries) {
		return err
	}

	post := &fedmodel.Post{
		APID:        obj.ID,
		CommunityID: community.ID,
		CreatorID:   creator.ID,
		Name:        obj.Name,
		URL:         obj.URL,
		Body:        body,
		NSFW:        obj.Sensitive,
		Local:       false,
		PublishedAt: parseTimeOr(obj.Published, time.Now()),
	}
	return p.Store.PutPost(ctx, post)
}

func (p *Parser) createComment(ctx context.Context, obj *apmodel.Object, creator *fedmodel.Actor, body string) error {
	if _, err := p.Store.GetCommentByAPID(ctx, obj.ID); err == nil {
		return nil
	} else if !errors.Is(err, db.ErrNoEntries) {
		return err
	}

	parentObj, _, err := p.Fetcher.FetchObject(ctx, obj.InReplyTo)
	if err != nil {
		return err
	}

	var path string
	var postID int64
	if parent, perr := p.Store.GetCommentByAPID(ctx, parentObj.ID); perr == nil {
		postID = parent.PostID
		path = parent.Path
	} else if !errors.Is(perr, db.ErrNoEntries) {
		return perr
	} else if post, perr := p.Store.GetPostByAPID(ctx, parentObj.ID); perr == nil {
		postID = post.ID
		path = fmt.Sprintf("%d", post.ID)
	} else {
		return ferror.NewNotFound(fmt.Errorf("inbound: comment parent %s not found", obj.InReplyTo))
	}

	comment := &fedmodel.Comment{
		APID:        obj.ID,
		PostID:      postID,
		CreatorID:   creator.ID,
		Content:     body,
		Local:       false,
		PublishedAt: parseTimeOr(obj.Published, time.Now()),
	}
	if err := p.Store.PutComment(ctx, comment); err != nil {
		return err
	}
	comment.Path = fmt.Sprintf("%s.%d", path, comment.ID)
	return p.Store.UpdateComment(ctx, comment)
}

// handleUpdate merges mutable fields from the wire object into the
// existing local record, bumping updated_at (§4.2 Update).
func (p *Parser) handleUpdate(ctx context.Context, act *apmodel.Activity) error {
	obj, err := act.InnerObject()
	if err != nil {
		return ferror.NewValidation(err)
	}

	if post, perr := p.Store.GetPostByAPID(ctx, obj.ID); perr == nil {
		clean, verr := text.Validate(obj.Content)
		if verr != nil {
			return ferror.NewValidation(verr)
		}
		post.Name = obj.Name
		post.Body = clean
		post.NSFW = obj.Sensitive
		post.UpdatedAt = parseTimeOr(obj.Updated, time.Now())
		return p.Store.UpdatePost(ctx, post)
	}

	if comment, cerr := p.Store.GetCommentByAPID(ctx, obj.ID); cerr == nil {
		clean, verr := text.Validate(obj.Content)
		if verr != nil {
			return ferror.NewValidation(verr)
		}
		comment.Content = clean
		comment.UpdatedAt = parseTimeOr(obj.Updated, time.Now())
		return p.Store.UpdateComment(ctx, comment)
	}

	if actor, aerr := p.Store.GetActorByAPID(ctx, obj.ID); aerr == nil && !actor.Local {
		actor.DisplayName = obj.Name
		actor.Bio = obj.Content
		actor.UpdatedAt = time.Now()
		return p.Store.UpdateActor(ctx, actor)
	}

	return ferror.NewNotFound(fmt.Errorf("inbound: update target %s not found", obj.ID))
}

// handleDelete sets deleted=true (or, when deleted is false, reverses it for
// Undo(Delete)) on the referenced Post or Comment.
func (p *Parser) handleDelete(ctx context.Context, act *apmodel.Activity, deleted bool) error {
	ref := act.ObjectRef()
	if ref == "" {
		if obj, err := act.InnerObject(); err == nil {
			ref = obj.ID
		}
	}
	if ref == "" {
		return ferror.NewValidation(fmt.Errorf("inbound: delete: no object reference"))
	}

	if post, err := p.Store.GetPostByAPID(ctx, ref); err == nil {
		post.Deleted = deleted
		post.DeletedAt = deletedTimestamp(deleted)
		return p.Store.UpdatePost(ctx, post)
	}
	if comment, err := p.Store.GetCommentByAPID(ctx, ref); err == nil {
		comment.Deleted = deleted
		comment.DeletedAt = deletedTimestamp(deleted)
		return p.Store.UpdateComment(ctx, comment)
	}
	return ferror.NewNotFound(fmt.Errorf("inbound: delete target %s not found", ref))
}

// handleVote upserts a Vote row for Like/Dislike, enforcing the
// authorization rule before the write (§4.4: non-banned, and a
// downvote additionally requires allow_downvotes).
func (p *Parser) handleVote(ctx context.Context, act *apmodel.Activity, score int8) error {
	actor, err := p.Fetcher.FetchActor(ctx, act.Actor)
	if err != nil {
		return err
	}
	ref := act.ObjectRef()
	targetID, kind, err := p.resolveVoteTarget(ctx, ref)
	if err != nil {
		return err
	}

	settings, err := p.Store.GetSiteSettings(ctx)
	if err != nil {
		return err
	}
	ban, _ := p.Store.ActiveBan(ctx, actor.ID, fedmodel.BanScopeInstance, 0)
	decision := authz.Authorize(authz.Vote, authz.Request{
		IsBanned:       ban != nil,
		VoteScore:      score,
		AllowDownvotes: settings.AllowDownvotes,
	})
	if decision != authz.Permit {
		return decision.Error()
	}

	if err := p.Store.PutVote(ctx, &fedmodel.Vote{
		ActorID:    actor.ID,
		TargetKind: kind,
		TargetID:   targetID,
		Score:      score,
		UpdatedAt:  time.Now(),
	}); err != nil {
		return err
	}
	return p.recomputeScore(ctx, targetID, kind)
}

func (p *Parser) resolveVoteTarget(ctx context.Context, ref string) (int64, fedmodel.VoteTargetKind, error) {
	if post, err := p.Store.GetPostByAPID(ctx, ref); err == nil {
		return post.ID, fedmodel.VoteTargetPost, nil
	}
	if comment, err := p.Store.GetCommentByAPID(ctx, ref); err == nil {
		return comment.ID, fedmodel.VoteTargetComment, nil
	}
	return 0, "", ferror.NewNotFound(fmt.Errorf("inbound: vote target %s not found", ref))
}

func (p *Parser) recomputeScore(ctx context.Context, targetID int64, kind fedmodel.VoteTargetKind) error {
	counts, err := p.Store.CountVotes(ctx, targetID, kind)
	if err != nil {
		return err
	}
	switch kind {
	case fedmodel.VoteTargetPost:
		post, err := p.Store.GetPostByID(ctx, targetID)
		if err != nil {
			return err
		}
		post.Upvotes, post.Downvotes = int64(counts.Upvotes), int64(counts.Downvotes)
		post.Score = post.Upvotes - post.Downvotes
		return p.Store.UpdatePost(ctx, post)
	case fedmodel.VoteTargetComment:
		comment, err := p.Store.GetCommentByID(ctx, targetID)
		if err != nil {
			return err
		}
		comment.Upvotes, comment.Downvotes = int64(counts.Upvotes), int64(counts.Downvotes)
		comment.Score = comment.Upvotes - comment.Downvotes
		return p.Store.UpdateComment(ctx, comment)
	}
	return nil
}

// handleFollow inserts a pending Follow and, if the target community is
// local and unrestricted, produces an Accept for C6 to send back.
func (p *Parser) handleFollow(ctx context.Context, act *apmodel.Activity) (*Outcome, error) {
	person, err := p.Fetcher.FetchActor(ctx, act.Actor)
	if err != nil {
		return nil, err
	}
	communityAPID := act.ObjectRef()
	community, err := p.communityByActorAPID(ctx, communityAPID)
	if err != nil {
		return nil, err
	}

	if existing, ferr := p.Store.GetFollow(ctx, person.ID, community.ID); ferr == nil {
		if existing.State == fedmodel.FollowAccepted {
			return nil, nil
		}
	} else if !errors.Is(ferr, db.ErrNoEntries) {
		return nil, ferr
	} else if err := p.Store.PutFollow(ctx, &fedmodel.Follow{
		PersonID:    person.ID,
		CommunityID: community.ID,
		State:       fedmodel.FollowPending,
	}); err != nil {
		return nil, err
	}

	if !community.Actor.Local || community.Restricted {
		return nil, nil
	}

	accept, err := apmodel.NewActivity(community.Actor.APID+"#accepts/"+fmt.Sprint(person.ID), "Accept", community.Actor.APID, act)
	if err != nil {
		return nil, err
	}
	return &Outcome{Emit: accept, EmitAsActorID: community.ActorID, EmitTargetInbox: person.InboxURL}, nil
}

// handleAcceptReject flips a pending Follow to accepted, or deletes it.
func (p *Parser) handleAcceptReject(ctx context.Context, act *apmodel.Activity, accept bool) error {
	inner, err := act.InnerActivity()
	if err != nil {
		return ferror.NewValidation(err)
	}
	person, err := p.Store.GetActorByAPID(ctx, inner.Actor)
	if err != nil {
		return err
	}
	communityAPID := inner.ObjectRef()
	community, err := p.communityByActorAPID(ctx, communityAPID)
	if err != nil {
		return err
	}
	follow, err := p.Store.GetFollow(ctx, person.ID, community.ID)
	if err != nil {
		return err
	}
	if !accept {
		return p.Store.DeleteFollow(ctx, follow.ID)
	}
	follow.State = fedmodel.FollowAccepted
	return p.Store.UpdateFollow(ctx, follow)
}

// handleUndo dispatches the inner activity's reversal: Undo(Like)
// deletes the vote row, Undo(Delete) un-deletes, Undo(Follow) removes
// the relation, Undo(Block) lifts the ban.
func (p *Parser) handleUndo(ctx context.Context, act *apmodel.Activity) error {
	inner, err := act.InnerActivity()
	if err != nil {
		return ferror.NewValidation(err)
	}
	switch inner.Type {
	case "Like", "Dislike":
		actor, err := p.Store.GetActorByAPID(ctx, inner.Actor)
		if err != nil {
			return err
		}
		targetID, kind, err := p.resolveVoteTarget(ctx, inner.ObjectRef())
		if err != nil {
			return err
		}
		if err := p.Store.DeleteVote(ctx, actor.ID, targetID, kind); err != nil {
			return err
		}
		return p.recomputeScore(ctx, targetID, kind)
	case "Delete":
		return p.handleDelete(ctx, inner, false)
	case "Follow":
		person, err := p.Store.GetActorByAPID(ctx, inner.Actor)
		if err != nil {
			return err
		}
		community, err := p.communityByActorAPID(ctx, inner.ObjectRef())
		if err != nil {
			return err
		}
		follow, err := p.Store.GetFollow(ctx, person.ID, community.ID)
		if err != nil {
			if errors.Is(err, db.ErrNoEntries) {
				return nil
			}
			return err
		}
		return p.Store.DeleteFollow(ctx, follow.ID)
	case "Block":
		return p.handleBlock(ctx, inner, false)
	case "Remove":
		_, err := p.handleRemoveContent(ctx, inner, false)
		return err
	default:
		log.Debugf("inbound: dropping unrecognized Undo(%s)", inner.Type)
		return nil
	}
}

// handleAnnounce unwraps inner and re-dispatches it as if received
// directly (§4.2). The inner activity is authorized against its own
// actor: a community-wrapped Announce(Undo(Remove)) still requires the
// inner actor to moderate the community, and the announcing
// community's authority is not consulted.
func (p *Parser) handleAnnounce(ctx context.Context, act *apmodel.Activity) (*Outcome, error) {
	inner, err := act.InnerActivity()
	if err != nil {
		return nil, ferror.NewValidation(err)
	}
	return p.Handle(ctx, act.Actor, inner)
}

// handleAddRemoveModerator applies an Add/Remove on a community's
// moderators collection, after checking the actor is a moderator of
// that community.
func (p *Parser) handleAddRemoveModerator(ctx context.Context, act *apmodel.Activity, add bool) error {
	actingActor, err := p.Store.GetActorByAPID(ctx, act.Actor)
	if err != nil {
		return err
	}
	targetActor, err := p.Fetcher.FetchActor(ctx, act.ObjectRef())
	if err != nil {
		return err
	}

	var target string
	if err := unmarshalTarget(act, &target); err != nil || target == "" {
		return ferror.NewValidation(fmt.Errorf("inbound: add/remove moderator: missing target collection"))
	}
	community, err := p.communityFromModeratorsURL(ctx, target)
	if err != nil {
		return err
	}

	isMod, _, err := p.Store.IsModerator(ctx, community.ID, actingActor.ID)
	if err != nil {
		return err
	}
	decision := authz.Authorize(authz.ChangeModerators, authz.Request{IsModerator: isMod})
	if decision != authz.Permit {
		return decision.Error()
	}

	if add {
		if err := p.Store.AddModerator(ctx, community.ID, targetActor.ID); err != nil {
			return err
		}
	} else if err := p.Store.RemoveModerator(ctx, community.ID, targetActor.ID); err != nil {
		return err
	}

	return p.Store.LogAddModerator(ctx, &fedmodel.AddModerator{
		Entry:       fedmodel.Entry{ModID: actingActor.ID},
		CommunityID: community.ID,
		TargetID:    targetActor.ID,
		Removed:     !add,
	})
}

// handleRemove dispatches the Remove verb by object-kind: a
// moderators-collection target (carried in act.Target) removes a
// ModeratorRelation, while anything else is a content removal on the
// Post or Comment act.ObjectRef() points at (§8 scenario 5).
func (p *Parser) handleRemove(ctx context.Context, act *apmodel.Activity) (*Outcome, error) {
	if len(act.Target) != 0 {
		return nil, p.handleAddRemoveModerator(ctx, act, false)
	}
	return p.handleRemoveContent(ctx, act, true)
}

// handleRemoveContent flips Removed on a Post or Comment, after
// checking the acting actor moderates the owning community, logs the
// action, and asks C6 to re-Announce the Remove to the community's
// followers (§8 scenario 5). removed=false reverses it (Undo(Remove)).
func (p *Parser) handleRemoveContent(ctx context.Context, act *apmodel.Activity, removed bool) (*Outcome, error) {
	modActor, err := p.Store.GetActorByAPID(ctx, act.Actor)
	if err != nil {
		return nil, err
	}

	ref := act.ObjectRef()
	if ref == "" {
		if obj, oerr := act.InnerObject(); oerr == nil {
			ref = obj.ID
		}
	}
	if ref == "" {
		return nil, ferror.NewValidation(fmt.Errorf("inbound: remove content: no object reference"))
	}

	if post, perr := p.Store.GetPostByAPID(ctx, ref); perr == nil {
		community, err := p.Store.GetCommunityByID(ctx, post.CommunityID)
		if err != nil {
			return nil, err
		}
		if err := p.authorizeModeration(ctx, community.ID, modActor.ID); err != nil {
			return nil, err
		}
		post.Removed = removed
		if err := p.Store.UpdatePost(ctx, post); err != nil {
			return nil, err
		}
		if err := p.Store.LogRemovePost(ctx, &fedmodel.RemovePost{
			Entry:   fedmodel.Entry{ModID: modActor.ID},
			PostID:  post.ID,
			Removed: removed,
		}); err != nil {
			return nil, err
		}
		return &Outcome{
			Rebroadcast:            true,
			RebroadcastCommunityID: community.ID,
			ExcludeInstanceID:      modActor.InstanceID,
			Emit:                   act,
			EmitAsActorID:          community.ActorID,
		}, nil
	}

	if comment, cerr := p.Store.GetCommentByAPID(ctx, ref); cerr == nil {
		post, perr := p.Store.GetPostByID(ctx, comment.PostID)
		if perr != nil {
			return nil, perr
		}
		community, err := p.Store.GetCommunityByID(ctx, post.CommunityID)
		if err != nil {
			return nil, err
		}
		if err := p.authorizeModeration(ctx, community.ID, modActor.ID); err != nil {
			return nil, err
		}
		comment.Removed = removed
		if err := p.Store.UpdateComment(ctx, comment); err != nil {
			return nil, err
		}
		if err := p.Store.LogRemoveComment(ctx, &fedmodel.RemoveComment{
			Entry:     fedmodel.Entry{ModID: modActor.ID},
			CommentID: comment.ID,
			Removed:   removed,
		}); err != nil {
			return nil, err
		}
		return &Outcome{
			Rebroadcast:            true,
			RebroadcastCommunityID: community.ID,
			ExcludeInstanceID:      modActor.InstanceID,
			Emit:                   act,
			EmitAsActorID:          community.ActorID,
		}, nil
	}

	return nil, ferror.NewNotFound(fmt.Errorf("inbound: remove content target %s not found", ref))
}

// authorizeModeration checks actorID may remove content in
// communityID, per §4.4's DeleteContent rule restricted to the
// moderator/admin grounds a remote mod-list membership can establish.
func (p *Parser) authorizeModeration(ctx context.Context, communityID, actorID int64) error {
	isMod, _, err := p.Store.IsModerator(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	return authz.Authorize(authz.DeleteContent, authz.Request{IsModerator: isMod}).Error()
}

// handleBlock adds or removes a per-community or per-instance ban,
// after checking the actor may moderate the relevant scope.
func (p *Parser) handleBlock(ctx context.Context, act *apmodel.Activity, block bool) error {
	modActor, err := p.Store.GetActorByAPID(ctx, act.Actor)
	if err != nil {
		return err
	}
	targetActor, err := p.Fetcher.FetchActor(ctx, act.ObjectRef())
	if err != nil {
		return err
	}

	scope := fedmodel.BanScopeInstance
	var communityID int64
	if community, cerr := p.communityByActorAPID(ctx, act.Actor); cerr == nil {
		scope = fedmodel.BanScopeCommunity
		communityID = community.ID
		isMod, _, err := p.Store.IsModerator(ctx, communityID, modActor.ID)
		if err != nil {
			return err
		}
		if d := authz.Authorize(authz.BanFromCommunity, authz.Request{IsModerator: isMod}); d != authz.Permit {
			return d.Error()
		}
	} else if !errors.Is(cerr, db.ErrNoEntries) {
		return cerr
	}

	if !block {
		if err := p.Store.LiftBan(ctx, targetActor.ID, scope, communityID); err != nil {
			return err
		}
		return p.logBan(ctx, modActor.ID, targetActor.ID, scope, communityID, false)
	}

	if err := p.Store.PutBan(ctx, &fedmodel.Ban{
		ModID:       modActor.ID,
		TargetID:    targetActor.ID,
		Scope:       scope,
		CommunityID: communityID,
	}); err != nil {
		return err
	}
	return p.logBan(ctx, modActor.ID, targetActor.ID, scope, communityID, true)
}

// logBan appends the BanFromCommunity or BanFromInstance mod-log
// variant matching scope, recording banned=false for a lifted ban
// (§4.10).
func (p *Parser) logBan(ctx context.Context, modID, targetID int64, scope fedmodel.BanScope, communityID int64, banned bool) error {
	if scope == fedmodel.BanScopeCommunity {
		return p.Store.LogBanFromCommunity(ctx, &fedmodel.BanFromCommunity{
			Entry:       fedmodel.Entry{ModID: modID},
			CommunityID: communityID,
			TargetID:    targetID,
			Banned:      banned,
		})
	}
	return p.Store.LogBanFromInstance(ctx, &fedmodel.BanFromInstance{
		Entry:    fedmodel.Entry{ModID: modID},
		TargetID: targetID,
		Banned:   banned,
	})
}

// handleFlag inserts a Report row for moderator review.
func (p *Parser) handleFlag(ctx context.Context, act *apmodel.Activity) error {
	reporter, err := p.Store.GetActorByAPID(ctx, act.Actor)
	if err != nil {
		return err
	}
	ref := act.ObjectRef()

	var kind string
	var targetID int64
	if post, perr := p.Store.GetPostByAPID(ctx, ref); perr == nil {
		kind, targetID = "post", post.ID
	} else if comment, cerr := p.Store.GetCommentByAPID(ctx, ref); cerr == nil {
		kind, targetID = "comment", comment.ID
	} else {
		return ferror.NewNotFound(fmt.Errorf("inbound: flag target %s not found", ref))
	}

	return p.Store.PutReport(ctx, &fedmodel.Report{
		ReporterID: reporter.ID,
		TargetKind: kind,
		TargetID:   targetID,
	})
}

// communityForAudience resolves a Post/Comment's owning community from
// its audience or addressing fields.
func (p *Parser) communityForAudience(ctx context.Context, audience string, to, cc apmodel.StringOrArray) (*fedmodel.Community, error) {
	if audience != "" {
		return p.communityByActorAPID(ctx, audience)
	}
	for _, addr := range append(append([]string{}, to...), cc...) {
		if addr == apmodel.PublicURI {
			continue
		}
		if c, err := p.communityByActorAPID(ctx, addr); err == nil {
			return c, nil
		}
	}
	return nil, ferror.NewValidation(fmt.Errorf("inbound: no community addressee found"))
}

func (p *Parser) communityByActorAPID(ctx context.Context, actorAPID string) (*fedmodel.Community, error) {
	actor, err := p.Fetcher.FetchActor(ctx, actorAPID)
	if err != nil {
		return nil, err
	}
	return p.Store.GetCommunityByActorID(ctx, actor.ID)
}

// communityFromModeratorsURL strips the conventional "/moderators"
// suffix a collection URL carries and resolves the underlying actor.
func (p *Parser) communityFromModeratorsURL(ctx context.Context, collectionURL string) (*fedmodel.Community, error) {
	actorAPID := strings.TrimSuffix(collectionURL, "/moderators")
	return p.communityByActorAPID(ctx, actorAPID)
}

func unmarshalTarget(act *apmodel.Activity, out *string) error {
	if len(act.Target) == 0 {
		return nil
	}
	return json.Unmarshal(act.Target, out)
}

func parseTimeOr(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t
}

// deletedTimestamp returns now when marking a row deleted, or nil when
// reversing a deletion (Undo(Delete)), so the daily GC task (C9) can
// age off content from the moment it was actually removed.
func deletedTimestamp(deleted bool) *time.Time {
	if !deleted {
		return nil
	}
	now := time.Now()
	return &now
}
