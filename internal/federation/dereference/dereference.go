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

// Package dereference is the Fetcher (C3): given a URL and an expected
// kind, resolve it to a local record by local lookup, then HTTPS GET,
// parse, recursive resolve (bounded by a per-ingest fetch budget), and
// upsert (§4.3).
package dereference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klppl/federails/internal/apmodel"
	"github.com/klppl/federails/internal/fedctx"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/ferror"
	"github.com/klppl/federails/internal/httpclient"
	"github.com/klppl/federails/internal/log"
	"github.com/klppl/federails/internal/store"
	"github.com/miekg/dns"
)

// DefaultFetchBudget is the per-ingest request-count budget §4.2 calls
// for ("referenced objects are ... fetchable within the per-request
// fetch budget (default 25)").
const DefaultFetchBudget = 25

// staleAfter bounds how long a cached remote record is trusted before a
// refetch is attempted (§4.3 step 1: "not stale (< 24h)").
const staleAfter = 24 * time.Hour

// Fetcher resolves remote ActivityPub URLs into local fedmodel rows.
type Fetcher struct {
	Client   *httpclient.Client
	Store    *store.Store
	Hostname string
}

// New builds a Fetcher.
func New(client *httpclient.Client, st *store.Store, hostname string) *Fetcher {
	return &Fetcher{Client: client, Store: st, Hostname: hostname}
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if !fedctx.TakeFetch(ctx) {
		return nil, ferror.NewTransient(fmt.Errorf("dereference: fetch budget exhausted for %s", rawURL))
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ferror.NewValidation(fmt.Errorf("dereference: invalid url %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/activity+json")
	req.Header.Set("User-Agent", "federails/1.0 (+https://"+f.Hostname+")")

	rsp, err := f.Client.Do(req)
	if err != nil {
		return nil, ferror.NewTransient(fmt.Errorf("dereference: GET %s: %w", rawURL, err))
	}
	defer rsp.Body.Close()

	if rsp.StatusCode == http.StatusGone || rsp.StatusCode == http.StatusNotFound {
		return nil, ferror.NewNotFound(fmt.Errorf("dereference: %s returned %d", rawURL, rsp.StatusCode))
	}
	if rsp.StatusCode/100 == 5 {
		return nil, ferror.NewTransient(fmt.Errorf("dereference: %s returned %d", rawURL, rsp.StatusCode))
	}
	if rsp.StatusCode/100 != 2 {
		return nil, ferror.NewValidation(fmt.Errorf("dereference: %s returned %d", rawURL, rsp.StatusCode))
	}

	body := make([]byte, 0, 4096)
	buf := make([]byte, 4096)
	for {
		n, rerr := rsp.Body.Read(buf)
		if n > 0 {
			body = append(body, buf[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	return body, nil
}

// FetchActor resolves apID to an Actor, local lookup first.
func (f *Fetcher) FetchActor(ctx context.Context, apID string) (*fedmodel.Actor, error) {
	existing, err := f.Store.GetActorByAPID(ctx, apID)
	if err == nil && (existing.Local || time.Since(existing.UpdatedAt) < staleAfter) {
		return existing, nil
	}

	body, err := f.get(ctx, apID)
	if err != nil {
		if existing != nil {
			log.Warnf("dereference: refresh of %s failed, serving stale: %v", apID, err)
			return existing, nil
		}
		return nil, err
	}

	var wire apmodel.Actor
	if jerr := json.Unmarshal(body, &wire); jerr != nil {
		return nil, ferror.NewValidation(fmt.Errorf("dereference: parse actor %s: %w", apID, jerr))
	}
	if wire.ID != apID {
		return nil, ferror.NewValidation(fmt.Errorf("dereference: actor id mismatch: wanted %s got %s", apID, wire.ID))
	}

	instance, err := f.instanceForURL(ctx, apID)
	if err != nil {
		return nil, err
	}

	actor := existing
	if actor == nil {
		actor = &fedmodel.Actor{APID: apID, Local: false, InstanceID: instance.ID}
	}
	actor.Type = fedmodel.ActorType(wire.Type)
	actor.PreferredName = wire.PreferredUsername
	actor.DisplayName = wire.Name
	actor.Bio = wire.Summary
	actor.InboxURL = wire.Inbox
	actor.OutboxURL = wire.Outbox
	if wire.Endpoints != nil {
		actor.SharedInboxURL = wire.Endpoints.SharedInbox
	}
	if wire.PublicKey != nil {
		actor.PublicKeyPEM = wire.PublicKey.PublicKeyPem
	}
	actor.UpdatedAt = time.Now()

	if existing == nil {
		if err := f.Store.PutActor(ctx, actor); err != nil {
			return nil, err
		}
	} else if !actor.Local {
		// never demote a local record to remote, never overwrite the
		// private key (remote actors don't carry one anyway).
		if err := f.Store.UpdateActor(ctx, actor); err != nil {
			return nil, err
		}
	}
	return actor, nil
}

// instanceForURL upserts the Instance row for apID's host, used both by
// FetchActor and by the nodeinfo probe in the scheduler.
func (f *Fetcher) instanceForURL(ctx context.Context, rawURL string) (*fedmodel.Instance, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ferror.NewValidation(err)
	}
	domain := strings.ToLower(u.Host)

	inst, err := f.Store.GetInstanceByDomain(ctx, domain)
	if err == nil {
		return inst, nil
	}
	inst = &fedmodel.Instance{Domain: domain, UpdatedAt: time.Now()}
	if err := f.Store.PutInstance(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// FetchObject resolves an object URL (Post or Comment) into its wire
// shape, recursively resolving its AttributedTo actor within the
// caller's fetch budget. It does not decide Post vs Comment; callers
// (the Activity Parser) do that from InReplyTo/context.
func (f *Fetcher) FetchObject(ctx context.Context, objURL string) (*apmodel.Object, *fedmodel.Actor, error) {
	body, err := f.get(ctx, objURL)
	if err != nil {
		return nil, nil, err
	}

	var obj apmodel.Object
	if jerr := json.Unmarshal(body, &obj); jerr != nil {
		return nil, nil, ferror.NewValidation(fmt.Errorf("dereference: parse object %s: %w", objURL, jerr))
	}
	if obj.ID != objURL {
		return nil, nil, ferror.NewValidation(fmt.Errorf("dereference: object id mismatch: wanted %s got %s", objURL, obj.ID))
	}

	actor, err := f.FetchActor(ctx, obj.AttributedTo)
	if err != nil {
		return nil, nil, err
	}
	return &obj, actor, nil
}

// resolves reports whether domain has at least one A or AAAA record,
// queried straight against the host's configured resolver rather than
// through Go's resolver cache. The scheduled nodeinfo probe (C9) runs
// this ahead of every dial so a domain that's dropped off the DNS
// entirely is recorded as dead without spending an HTTPS round trip.
func resolves(domain string) bool {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return true
	}
	c := new(dns.Client)
	c.Timeout = 5 * time.Second
	server := conf.Servers[0] + ":" + conf.Port

	for _, qtype := range [...]uint16{dns.TypeA, dns.TypeAAAA} {
		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(domain), qtype)
		rsp, _, err := c.Exchange(m, server)
		if err == nil && rsp != nil && len(rsp.Answer) > 0 {
			return true
		}
	}
	return false
}

// FetchNodeInfo implements §6's instance-software probe: GET
// .well-known/nodeinfo, follow the 2.x schema link, GET that document.
func (f *Fetcher) FetchNodeInfo(ctx context.Context, domain string) (*apmodel.NodeInfo, error) {
	if !resolves(domain) {
		return nil, ferror.NewNotFound(fmt.Errorf("dereference: %s does not resolve", domain))
	}

	wellKnownURL := "https://" + domain + "/.well-known/nodeinfo"
	body, err := f.get(ctx, wellKnownURL)
	if err != nil {
		return nil, err
	}

	var wk apmodel.NodeInfoWellKnown
	if jerr := json.Unmarshal(body, &wk); jerr != nil {
		return nil, ferror.NewValidation(err)
	}

	const schemaPrefix = "http://nodeinfo.diaspora.software/ns/schema/2."
	var href string
	for _, l := range wk.Links {
		if strings.HasPrefix(l.Rel, schemaPrefix) {
			href = l.Href
			break
		}
	}
	if href == "" {
		return nil, ferror.NewNotFound(fmt.Errorf("dereference: no 2.x nodeinfo link for %s", domain))
	}

	niBody, err := f.get(ctx, href)
	if err != nil {
		return nil, err
	}
	var ni apmodel.NodeInfo
	if jerr := json.Unmarshal(niBody, &ni); jerr != nil {
		return nil, ferror.NewValidation(jerr)
	}
	return &ni, nil
}
