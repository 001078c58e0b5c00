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

// Package fedmodel holds the bare Go structs for every entity in the
// data model (§3): no behavior, just bun-tagged fields.
package fedmodel

import "time"

// ActorType distinguishes the three federatable actor kinds.
type ActorType string

const (
	ActorPerson         ActorType = "Person"
	ActorCommunity      ActorType = "Group"
	ActorMultiCommunity ActorType = "Organization"
)

// Instance is a remote or local federation domain.
type Instance struct {
	ID        int64     `bun:"id,pk,autoincrement"`
	Domain    string    `bun:"domain,unique,notnull"`
	Software  string    `bun:"software"`
	Version   string    `bun:"version"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	// BlockedUntil is set when an admin adds this instance to the
	// outbound blocklist; zero means not blocked.
	BlockedUntil time.Time `bun:"blocked_until,nullzero"`
	BlockReason  string    `bun:"block_reason"`
}

// Dead reports whether this instance should be treated as
// unreachable per the Outbound Queue's liveness gate (§4.7).
func (i *Instance) Dead(deadAfter time.Duration) bool {
	return time.Since(i.UpdatedAt) > deadAfter
}

// Blocked reports whether the instance's outbound blocklist entry is
// still in force.
func (i *Instance) Blocked(now time.Time) bool {
	return !i.BlockedUntil.IsZero() && i.BlockedUntil.After(now)
}

// Actor is a federatable identity: Person, Community (Group), or
// MultiCommunity (Organization). Local actors always carry a private
// key; remote actors never do (invariant 6).
type Actor struct {
	ID              int64     `bun:"id,pk,autoincrement"`
	APID            string    `bun:"ap_id,unique,notnull"`
	Type            ActorType `bun:"type,notnull"`
	Local           bool      `bun:"local,notnull"`
	InstanceID      int64     `bun:"instance_id,notnull"`
	PreferredName   string    `bun:"preferred_name,notnull"`
	DisplayName     string    `bun:"display_name"`
	Bio             string    `bun:"bio"`
	InboxURL        string    `bun:"inbox_url,notnull"`
	SharedInboxURL  string    `bun:"shared_inbox_url"`
	OutboxURL       string    `bun:"outbox_url"`
	PublicKeyPEM    string    `bun:"public_key_pem,notnull"`
	PrivateKeyPEM   string    `bun:"private_key_pem"`
	Tombstoned      bool      `bun:"tombstoned,notnull,default:false"`
	Purged          bool      `bun:"purged,notnull,default:false"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Instance *Instance `bun:"rel:belongs-to,join:instance_id=id"`
}

// LocalUser is the authentication/profile envelope around a local
// Person Actor.
type LocalUser struct {
	ID                   int64     `bun:"id,pk,autoincrement"`
	ActorID              int64     `bun:"actor_id,unique,notnull"`
	PasswordHash         string    `bun:"password_hash,notnull"`
	Email                string    `bun:"email"`
	EmailVerified        bool      `bun:"email_verified,notnull,default:false"`
	EmailVerificationToken string  `bun:"email_verification_token"`
	InterfaceLanguages   []string  `bun:"interface_languages,array"`
	NotifyOnReply        bool      `bun:"notify_on_reply,notnull,default:true"`
	Admin                bool      `bun:"admin,notnull,default:false"`
	AcceptedApplication  bool      `bun:"accepted_application,notnull,default:false"`
	CreatedAt            time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Actor *Actor `bun:"rel:belongs-to,join:actor_id=id"`
}

// ModeratorRelation orders a Community's moderator list; index 0 is
// the "top mod" used by ownership transfer (§4.4).
type ModeratorRelation struct {
	ID          int64     `bun:"id,pk,autoincrement"`
	CommunityID int64     `bun:"community_id,notnull"`
	PersonID    int64     `bun:"person_id,notnull"`
	Position    int       `bun:"position,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Community is a discussion container (one kind of Actor).
type Community struct {
	ID          int64     `bun:"id,pk,autoincrement"`
	ActorID     int64     `bun:"actor_id,unique,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	NSFW        bool      `bun:"nsfw,notnull,default:false"`
	Restricted  bool      `bun:"restricted,notnull,default:false"` // posting restricted to mods
	Removed     bool      `bun:"removed,notnull,default:false"`    // admin-removed, still federated, hidden
	Hidden      bool      `bun:"hidden,notnull,default:false"`
	Subscribers int64     `bun:"subscribers,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Actor *Actor `bun:"rel:belongs-to,join:actor_id=id"`
}

// Post is a top-level submission within a Community.
type Post struct {
	ID                    int64      `bun:"id,pk,autoincrement"`
	APID                  string     `bun:"ap_id,unique,notnull"`
	CommunityID           int64      `bun:"community_id,notnull"`
	CreatorID             int64      `bun:"creator_id,notnull"`
	Name                  string     `bun:"name,notnull"`
	URL                   string     `bun:"url"`
	Body                  string     `bun:"body"`
	NSFW                  bool       `bun:"nsfw,notnull,default:false"`
	Locked                bool       `bun:"locked,notnull,default:false"`
	Featured              bool       `bun:"featured,notnull,default:false"`
	Deleted               bool       `bun:"deleted,notnull,default:false"`
	DeletedAt             *time.Time `bun:"deleted_at,nullzero"`
	Removed               bool       `bun:"removed,notnull,default:false"`
	Local                 bool       `bun:"local,notnull"`
	PublishedAt           time.Time  `bun:"published_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time  `bun:"updated_at,nullzero"`
	ScheduledPublishAt    *time.Time `bun:"scheduled_publish_at,nullzero"`
	Score                 int64      `bun:"score,notnull,default:0"`
	Upvotes               int64      `bun:"upvotes,notnull,default:0"`
	Downvotes             int64      `bun:"downvotes,notnull,default:0"`
	ChildCount            int64      `bun:"child_count,notnull,default:0"`
	HotRank               float64    `bun:"hot_rank,notnull,default:0"`
	ControversyRank       float64    `bun:"controversy_rank,notnull,default:0"`
	ScaledRank            float64    `bun:"scaled_rank,notnull,default:0"`
	// RankUpdatedAt tracks when the derived rank columns were last
	// recomputed, so the scheduled walk (C9) can pick the stalest
	// rows first instead of rescanning the whole table.
	RankUpdatedAt time.Time `bun:"rank_updated_at,nullzero,notnull,default:current_timestamp"`

	Community *Community `bun:"rel:belongs-to,join:community_id=id"`
	Creator   *Actor     `bun:"rel:belongs-to,join:creator_id=id"`
}

// ContentRemoved is the sentinel substituted for content 30 days
// after deletion (§3 lifecycle).
const ContentRemoved = "[removed]"

// Comment replies to a Post or another Comment. Path is a
// materialized ancestor chain: "<post_id>.<ancestor1>...<self_id>".
type Comment struct {
	ID            int64     `bun:"id,pk,autoincrement"`
	APID          string    `bun:"ap_id,unique,notnull"`
	PostID        int64     `bun:"post_id,notnull"`
	CreatorID     int64     `bun:"creator_id,notnull"`
	Content       string    `bun:"content,notnull"`
	Path          string    `bun:"path,notnull"`
	Distinguished bool       `bun:"distinguished,notnull,default:false"`
	Deleted       bool       `bun:"deleted,notnull,default:false"`
	DeletedAt     *time.Time `bun:"deleted_at,nullzero"`
	Removed       bool       `bun:"removed,notnull,default:false"`
	Local         bool      `bun:"local,notnull"`
	PublishedAt   time.Time `bun:"published_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero"`
	Score         int64     `bun:"score,notnull,default:0"`
	Upvotes       int64     `bun:"upvotes,notnull,default:0"`
	Downvotes     int64     `bun:"downvotes,notnull,default:0"`
	ChildCount    int64     `bun:"child_count,notnull,default:0"`
	HotRank       float64   `bun:"hot_rank,notnull,default:0"`

	Post    *Post  `bun:"rel:belongs-to,join:post_id=id"`
	Creator *Actor `bun:"rel:belongs-to,join:creator_id=id"`
}

// VoteTargetKind discriminates what a Vote points at.
type VoteTargetKind string

const (
	VoteTargetPost    VoteTargetKind = "post"
	VoteTargetComment VoteTargetKind = "comment"
)

// Vote is keyed by (actor, target); invariant 1 says score 0 means no
// row exists, so Score here is always -1 or +1.
type Vote struct {
	ID         int64          `bun:"id,pk,autoincrement"`
	ActorID    int64          `bun:"actor_id,notnull"`
	TargetKind VoteTargetKind `bun:"target_kind,notnull"`
	TargetID   int64          `bun:"target_id,notnull"`
	Score      int8           `bun:"score,notnull"`
	UpdatedAt  time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// FollowState is the lifecycle of a Follow row (invariant 3).
type FollowState string

const (
	FollowPending  FollowState = "pending"
	FollowAccepted FollowState = "accepted"
)

// Follow is (person, community), pending until the community's
// authoritative instance accepts it.
type Follow struct {
	ID          int64       `bun:"id,pk,autoincrement"`
	PersonID    int64       `bun:"person_id,notnull"`
	CommunityID int64       `bun:"community_id,notnull"`
	State       FollowState `bun:"state,notnull"`
	CreatedAt   time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// BanScope is the scope a Ban applies to (§4.4).
type BanScope string

const (
	BanScopeCommunity BanScope = "community"
	BanScopeInstance  BanScope = "instance"
)

// Ban records a mod/admin ban of a person, optionally expiring.
type Ban struct {
	ID          int64      `bun:"id,pk,autoincrement"`
	ModID       int64      `bun:"mod_id,notnull"`
	TargetID    int64      `bun:"target_id,notnull"`
	Scope       BanScope   `bun:"scope,notnull"`
	CommunityID int64      `bun:"community_id,nullzero"` // set iff Scope == community
	ExpiresAt   *time.Time `bun:"expires_at,nullzero"`
	Reason      string     `bun:"reason"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Expired reports whether the ban should be treated as absent
// (invariant 8): a ban with expires_at < now is absent.
func (b *Ban) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}

// SentActivity is the outbound federation log (§3): one row per
// activity this instance produced, keyed by its globally-unique ap_id
// (invariant 5), serving both as idempotency key and audit record.
type SentActivity struct {
	ID          int64     `bun:"id,pk,autoincrement"`
	APID        string    `bun:"ap_id,unique,notnull"`
	ActorID     int64     `bun:"actor_id,notnull"`
	Verb        string    `bun:"verb,notnull"`
	Body        []byte    `bun:"body,notnull"`
	Inboxes     []string  `bun:"inboxes,array"` // snapshot of target-inbox list
	Sensitive   bool      `bun:"sensitive,notnull,default:false"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ReceivedActivity is the inbound dedup ledger (invariant 4): exactly
// one row per applied remote-origin activity, keyed by ap_id.
type ReceivedActivity struct {
	ID        int64     `bun:"id,pk,autoincrement"`
	APID      string    `bun:"ap_id,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// RegistrationApplication is the (local_user, answer, decision) triple
// the onboarding flow produces; decision is nil until an admin acts.
type RegistrationApplication struct {
	ID           int64     `bun:"id,pk,autoincrement"`
	LocalUserID  int64     `bun:"local_user_id,unique,notnull"`
	Answer       string    `bun:"answer"`
	Approved     *bool     `bun:"approved,nullzero"`
	DenyReason   string    `bun:"deny_reason"`
	DecidedAt    *time.Time `bun:"decided_at,nullzero"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Report (Flag) records a piece of content reported to moderators.
type Report struct {
	ID          int64     `bun:"id,pk,autoincrement"`
	ReporterID  int64     `bun:"reporter_id,notnull"`
	TargetKind  string    `bun:"target_kind,notnull"` // post | comment | private_message
	TargetID    int64     `bun:"target_id,notnull"`
	Reason      string    `bun:"reason"`
	Resolved    bool      `bun:"resolved,notnull,default:false"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// SiteSettings is the subset of instance-wide configuration the
// Authorization component consults (e.g. allow_downvotes). The store
// loads it on first access and keeps it cached; no scheduler job
// reloads it.
type SiteSettings struct {
	ID                   int64 `bun:"id,pk,autoincrement"`
	AllowDownvotes       bool  `bun:"allow_downvotes,notnull,default:true"`
	AllowCommentDownvotes bool `bun:"allow_comment_downvotes,notnull,default:true"`
	FederateVotes        bool  `bun:"federate_votes,notnull,default:true"`
}
