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

// Package inbox is the Inbox Dispatcher (C6): verifies the HTTP
// Signature and idempotency of every delivery to /inbox,
// /u/{name}/inbox and /c/{name}/inbox, hands the parsed activity to
// the Activity Parser (C4), and acts on the returned Outcome by
// re-announcing to a community's followers or emitting a direct
// response (§4.6).
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klppl/federails/internal/apmodel"
	"github.com/klppl/federails/internal/fedctx"
	"github.com/klppl/federails/internal/federation/dereference"
	"github.com/klppl/federails/internal/federation/inbound"
	"github.com/klppl/federails/internal/federation/outbox"
	"github.com/klppl/federails/internal/federation/resolve"
	"github.com/klppl/federails/internal/fedsig"
	"github.com/klppl/federails/internal/ferror"
	"github.com/klppl/federails/internal/idgen"
	"github.com/klppl/federails/internal/log"
	"github.com/klppl/federails/internal/metrics"
	"github.com/klppl/federails/internal/ratelimit"
	"github.com/klppl/federails/internal/store"
)

// maxBodySize bounds the body of a single inbox delivery.
const maxBodySize = 2 * 1024 * 1024

// fetchBudget is the per-ingest recursive-dereference ceiling handed
// to the Fetcher while processing one inbound activity (§4.3).
const fetchBudget = 25

// Dispatcher wires the verified-delivery pipeline together.
type Dispatcher struct {
	Store    *store.Store
	Fetcher  *dereference.Fetcher
	Parser   *inbound.Parser
	Resolve  *resolve.Resolver
	Outbox   *outbox.Queue
	Limiter  *ratelimit.Limiter
	Hostname string
}

// New builds a Dispatcher.
func New(st *store.Store, fetcher *dereference.Fetcher, parser *inbound.Parser, resolver *resolve.Resolver, ob *outbox.Queue, limiter *ratelimit.Limiter, hostname string) *Dispatcher {
	return &Dispatcher{
		Store:    st,
		Fetcher:  fetcher,
		Parser:   parser,
		Resolve:  resolver,
		Outbox:   ob,
		Limiter:  limiter,
		Hostname: hostname,
	}
}

// Register mounts the shared and per-actor inbox routes.
func (d *Dispatcher) Register(r gin.IRouter) {
	r.POST("/inbox", d.handle)
	r.POST("/u/:name/inbox", d.handle)
	r.POST("/c/:name/inbox", d.handle)
}

func (d *Dispatcher) handle(c *gin.Context) {
	if d.Limiter != nil && !d.Limiter.Allow(c.ClientIP()) {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize+1))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if len(body) > maxBodySize {
		c.AbortWithStatus(http.StatusRequestEntityTooLarge)
		return
	}

	ctx := fedctx.WithFetchBudget(c.Request.Context(), fetchBudget)
	if fedctx.DebugSignatures(ctx) {
		log.Debugf("inbox: signature checks relaxed for %s", c.Request.URL.Path)
	} else {
		keyID, err := fedsig.VerifyRequest(ctx, c.Request, body, d.resolveKey)
		if err != nil {
			log.Warnf("inbox: rejecting delivery from keyId=%s: %v", keyID, err)
			metrics.InboxActivities.WithLabelValues("unknown", "rejected").Inc()
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	var act apmodel.Activity
	if err := json.Unmarshal(body, &act); err != nil {
		metrics.InboxActivities.WithLabelValues("unknown", "rejected").Inc()
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if act.ID != "" {
		seen, err := d.Store.HasReceivedActivity(ctx, act.ID)
		if err != nil {
			log.Errorf("inbox: dedup lookup for %s: %v", act.ID, err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if seen {
			metrics.InboxActivities.WithLabelValues(act.Type, "duplicate").Inc()
			c.Status(http.StatusAccepted)
			return
		}
	}

	outerActor := act.Actor
	outcome, err := d.Parser.Handle(ctx, outerActor, &act)
	if err != nil {
		if errors.Is(err, inbound.ErrUnrecognized) {
			// unknown verb or object kind: acknowledge and drop
			metrics.InboxActivities.WithLabelValues(act.Type, "dropped").Inc()
			c.Status(http.StatusOK)
			return
		}
		label := "rejected"
		if ferror.IsTransient(err) {
			label = "deferred"
		}
		metrics.InboxActivities.WithLabelValues(act.Type, label).Inc()
		log.Warnf("inbox: %s from %s failed: %v", act.Type, outerActor, err)
		if ferror.IsTransient(err) {
			c.AbortWithStatus(http.StatusServiceUnavailable)
		} else {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		}
		return
	}

	if act.ID != "" {
		if err := d.Store.RecordReceivedActivity(ctx, act.ID); err != nil {
			log.Warnf("inbox: record dedup row for %s: %v", act.ID, err)
		}
	}
	metrics.InboxActivities.WithLabelValues(act.Type, "applied").Inc()

	if outcome != nil {
		d.actOn(ctx, outcome)
	}

	c.Status(http.StatusAccepted)
}

// actOn carries out the follow-up delivery actions an Outcome
// requests: re-Announce to a community's followers, or emit a direct
// response such as Accept/Reject (§4.6 step 6).
func (d *Dispatcher) actOn(ctx context.Context, outcome *inbound.Outcome) {
	if outcome.Rebroadcast && outcome.RebroadcastCommunityID != 0 && outcome.Emit != nil {
		community, err := d.Store.GetActorByID(ctx, outcome.EmitAsActorID)
		if err != nil {
			log.Errorf("inbox: load community actor %d for rebroadcast: %v", outcome.EmitAsActorID, err)
			return
		}
		announce, err := apmodel.WrapAnnounce(community.APID+"#announces/"+idgen.New(), community.APID, outcome.Emit)
		if err != nil {
			log.Errorf("inbox: wrap announce: %v", err)
			return
		}
		dests, err := d.Resolve.FollowersOfCommunity(ctx, outcome.RebroadcastCommunityID, outcome.ExcludeInstanceID)
		if err != nil {
			log.Errorf("inbox: resolve followers for rebroadcast: %v", err)
			return
		}
		d.enqueueToAll(outcome.EmitAsActorID, announce, dests, true)
		return
	}

	if outcome.Emit != nil && outcome.EmitTargetInbox != "" {
		d.enqueueToAll(outcome.EmitAsActorID, outcome.Emit, []resolve.Destination{{InboxURL: outcome.EmitTargetInbox}}, true)
	}
}

func (d *Dispatcher) enqueueToAll(actorID int64, activity *apmodel.Activity, dests []resolve.Destination, critical bool) {
	if activity == nil || len(dests) == 0 {
		return
	}
	actor, err := d.Store.GetActorByID(context.Background(), actorID)
	if err != nil {
		log.Errorf("inbox: load signing actor %d: %v", actorID, err)
		return
	}
	privKey, err := fedsig.DecodePrivateKey(actor.PrivateKeyPEM)
	if err != nil {
		log.Errorf("inbox: decode signing key for actor %d: %v", actorID, err)
		return
	}
	body, err := json.Marshal(activity)
	if err != nil {
		log.Errorf("inbox: marshal outgoing activity: %v", err)
		return
	}
	keyID := actor.APID + "#main-key"
	for _, dest := range dests {
		d.Outbox.Enqueue(&outbox.Job{
			ActorAPID:  actor.APID,
			KeyID:      keyID,
			PrivateKey: privKey,
			Dest:       dest,
			Body:       body,
			Domain:     strings.ToLower(activity.Type),
			Critical:   critical,
		})
	}
}

// resolveKey implements fedsig.KeyResolver: it resolves a signature's
// keyId (of the form "<actor-ap-id>#main-key") to the actor's public
// key PEM, fetching the actor if it isn't already known locally.
func (d *Dispatcher) resolveKey(ctx context.Context, keyID string) (string, error) {
	actorAPID := strings.SplitN(keyID, "#", 2)[0]
	if actorAPID == "" {
		return "", fmt.Errorf("inbox: empty actor id in keyId %q", keyID)
	}

	actor, err := d.Store.GetActorByAPID(ctx, actorAPID)
	if err == nil {
		return actor.PublicKeyPEM, nil
	}

	actor, err = d.Fetcher.FetchActor(ctx, actorAPID)
	if err != nil {
		return "", fmt.Errorf("inbox: fetch actor %s: %w", actorAPID, err)
	}
	return actor.PublicKeyPEM, nil
}
