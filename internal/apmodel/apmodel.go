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

// Package apmodel holds the wire-level Activity Streams vocabulary (§4.2,
// §6): plain JSON-tagged structs, not a typed object graph, since the
// Activity Parser only ever needs to read a handful of fields off each
// shape before handing the rest to the Object Store.
package apmodel

import "encoding/json"

// PublicURI is the addressing value denoting federation-wide visibility.
const PublicURI = "https://www.w3.org/ns/activitystreams#Public"

// ActivityStreamsNS is the JSON-LD context every outbound document carries.
const ActivityStreamsNS = "https://www.w3.org/ns/activitystreams"

// SecurityNS carries the publicKey vocabulary extension.
const SecurityNS = "https://w3id.org/security/v1"

// DefaultContext is the @context value attached to every document federails
// produces.
var DefaultContext = []interface{}{ActivityStreamsNS, SecurityNS}

// StringOrArray deserializes an AP field that may be a bare string or an
// array of strings; both forms appear across deployed implementations.
type StringOrArray []string

func (s *StringOrArray) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*s = arr
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = nil
		return nil
	}
	*s = []string{str}
	return nil
}

func (s StringOrArray) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(s))
}

// PublicKey is the publicKey block attached to every Actor document.
type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// Endpoints carries the shared inbox URL, if the actor's instance has one.
type Endpoints struct {
	SharedInbox string `json:"sharedInbox,omitempty"`
}

// Actor is the wire representation of a Person, Group, or Organization
// (fedmodel.ActorType); §4.1 publishes this in place of a local actor's
// PublicKeyPEM, and §4.3 parses it back off a remote fetch.
type Actor struct {
	Context           interface{} `json:"@context,omitempty"`
	ID                string      `json:"id"`
	Type              string      `json:"type"`
	PreferredUsername string      `json:"preferredUsername"`
	Name              string      `json:"name,omitempty"`
	Summary           string      `json:"summary,omitempty"`
	Inbox             string      `json:"inbox"`
	Outbox            string      `json:"outbox,omitempty"`
	Followers         string      `json:"followers,omitempty"`
	PublicKey         *PublicKey  `json:"publicKey,omitempty"`
	Endpoints         *Endpoints  `json:"endpoints,omitempty"`
}

// Object is the wire representation of a Post (Page) or Comment (Note);
// §4.2's Create/Update handlers parse this.
type Object struct {
	Context      interface{}   `json:"@context,omitempty"`
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	AttributedTo string        `json:"attributedTo"`
	Name         string        `json:"name,omitempty"` // Post title
	Content      string        `json:"content,omitempty"`
	URL          string        `json:"url,omitempty"`
	InReplyTo    string        `json:"inReplyTo,omitempty"`
	Audience     string        `json:"audience,omitempty"` // community ap_id, Lemmy convention
	To           StringOrArray `json:"to,omitempty"`
	CC           StringOrArray `json:"cc,omitempty"`
	Published    string        `json:"published,omitempty"`
	Updated      string        `json:"updated,omitempty"`
	Sensitive    bool          `json:"sensitive,omitempty"`
}

// Activity is the generic envelope every inbound POST carries (§6):
// @context, id, type, actor, object, to, cc, published/updated. Object is
// left as json.RawMessage since its shape depends on Type and the inner
// verb — the Activity Parser (C4) decodes it a second time once it knows
// what to expect.
type Activity struct {
	Context   interface{}     `json:"@context,omitempty"`
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     string          `json:"actor"`
	Object    json.RawMessage `json:"object"`
	Target    json.RawMessage `json:"target,omitempty"`
	To        StringOrArray   `json:"to,omitempty"`
	CC        StringOrArray   `json:"cc,omitempty"`
	Published string          `json:"published,omitempty"`
}

// ObjectRef resolves Object when it's a bare URL reference (the common
// case for Like/Dislike/Delete/Follow/Accept/Reject/Undo) rather than an
// inline object body. Returns "" if Object is an inline object instead.
func (a *Activity) ObjectRef() string {
	var ref string
	if err := json.Unmarshal(a.Object, &ref); err != nil {
		return ""
	}
	return ref
}

// InnerActivity decodes Object as a nested Activity, used by Undo and by
// unwrapping an Announce (§4.2, §4.6).
func (a *Activity) InnerActivity() (*Activity, error) {
	var inner Activity
	if err := json.Unmarshal(a.Object, &inner); err != nil {
		return nil, err
	}
	return &inner, nil
}

// InnerObject decodes Object as an inline Object, used by Create/Update.
func (a *Activity) InnerObject() (*Object, error) {
	var obj Object
	if err := json.Unmarshal(a.Object, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// OrderedCollection is the wire shape of a followers/moderators collection
// reference; federails never serves one, but parses remote references to
// {community}/followers.
type OrderedCollection struct {
	Context      interface{} `json:"@context,omitempty"`
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	TotalItems   int         `json:"totalItems"`
	OrderedItems interface{} `json:"orderedItems,omitempty"`
}

// NodeInfoWellKnown is the `.well-known/nodeinfo` discovery document
// (§6): a `links` array, one of which points at the actual nodeinfo doc.
type NodeInfoWellKnown struct {
	Links []NodeInfoLink `json:"links"`
}

type NodeInfoLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// NodeInfo is the document fetched from a NodeInfoLink's Href (§6, §4.9's
// instance-software probe).
type NodeInfo struct {
	Software NodeInfoSoftware `json:"software"`
}

type NodeInfoSoftware struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
