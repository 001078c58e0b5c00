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

// Package outbox is the Outbound Queue (C7): a per-destination FIFO of
// signed deliveries, with retry/backoff, a per-instance liveness gate,
// and backpressure shedding of non-critical traffic (§4.7).
package outbox

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"codeberg.org/gruf/go-mutexes"
	"github.com/klppl/federails/internal/concurrency"
	"github.com/klppl/federails/internal/federation/resolve"
	"github.com/klppl/federails/internal/fedsig"
	"github.com/klppl/federails/internal/httpclient"
	"github.com/klppl/federails/internal/log"
	"github.com/klppl/federails/internal/metrics"
	"github.com/klppl/federails/internal/store"
)

// backoffSchedule is the retry ladder of §4.7: 60s, 5m, 30m, 3h, 24h,
// then the delivery is abandoned.
var backoffSchedule = []time.Duration{
	60 * time.Second,
	5 * time.Minute,
	30 * time.Minute,
	3 * time.Hour,
	24 * time.Hour,
}

// deadAfter is how long an instance may go without a successful
// contact before the liveness gate treats it as dead and new
// deliveries to it are dropped rather than queued (§4.7).
const deadAfter = 7 * 24 * time.Hour

// Job is one queued delivery: a signed activity body bound for a
// single destination inbox.
type Job struct {
	ActivityID int64 // fedmodel.SentActivity.ID, for audit/backoff bookkeeping
	ActorAPID  string
	KeyID      string
	PrivateKey *rsa.PrivateKey
	Dest       resolve.Destination
	Body       []byte
	Domain     string // metrics label: the activity's type, lowercased (announce, accept, ...)

	// Critical marks a delivery that must not be shed under
	// backpressure: Follow/Accept/Reject and moderation actions are
	// critical; Like/Dislike/Undo votes are not (§4.7).
	Critical bool
	attempt  int
}

// Queue is the outbound delivery queue. Delivery state is partitioned
// per destination instance (§4.7/§5: "queue state is partitioned per
// instance so that one slow receiver cannot block another"): each
// instance gets its own single-worker FIFO lane, created lazily on
// first enqueue, so that a retried job re-Enqueued for an instance can
// never race a fresh job for that same instance — both pass through
// the one lane's queue and are delivered strictly in arrival order.
type Queue struct {
	store    *store.Store
	client   *httpclient.Client
	locks    *mutexes.MutexMap
	hostname string

	lanesMu sync.Mutex
	lanes   map[int64]*concurrency.WorkerPool[*Job]

	mu       sync.Mutex
	pending  int
	maxQueue int
}

// New builds a Queue with one single-worker lane per destination
// instance. workers sets the shedding threshold: once workers*200
// deliveries are pending across all lanes together, new non-critical
// jobs are shed.
func New(st *store.Store, client *httpclient.Client, hostname string, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		store:    st,
		client:   client,
		locks:    mutexes.NewMap(),
		hostname: hostname,
		lanes:    make(map[int64]*concurrency.WorkerPool[*Job]),
		maxQueue: workers * 200,
	}
}

// Start is a no-op: lanes start themselves lazily as destinations are
// first enqueued to.
func (q *Queue) Start() error { return nil }

// Stop stops every lane that's been created so far.
func (q *Queue) Stop() error {
	q.lanesMu.Lock()
	lanes := make([]*concurrency.WorkerPool[*Job], 0, len(q.lanes))
	for _, lane := range q.lanes {
		lanes = append(lanes, lane)
	}
	q.lanesMu.Unlock()

	for _, lane := range lanes {
		if err := lane.Stop(); err != nil {
			return err
		}
	}
	return nil
}

// lane returns the single-worker FIFO pool dedicated to instanceID,
// creating and starting it on first use.
func (q *Queue) lane(instanceID int64) *concurrency.WorkerPool[*Job] {
	q.lanesMu.Lock()
	defer q.lanesMu.Unlock()

	if l, ok := q.lanes[instanceID]; ok {
		return l
	}
	l := concurrency.NewWorkerPool[*Job](1, 200)
	l.SetProcessor(q.deliver)
	if err := l.Start(); err != nil {
		log.Errorf("outbox: starting lane for instance %d: %v", instanceID, err)
	}
	q.lanes[instanceID] = l
	return l
}

// Enqueue queues job for delivery, shedding it if the queue is
// saturated and the job is not Critical (§4.7 backpressure rule).
func (q *Queue) Enqueue(job *Job) {
	q.mu.Lock()
	saturated := q.pending >= q.maxQueue
	if !saturated {
		q.pending++
	}
	q.mu.Unlock()

	if saturated {
		if !job.Critical {
			metrics.DeliveryOutcomes.WithLabelValues(job.Domain, "shed").Inc()
			log.Warnf("outbox: shedding non-critical job to %s, queue saturated", job.Dest.InboxURL)
			return
		}
		// Critical jobs are queued regardless; the lane's own queue
		// will block the caller rather than drop the activity.
	}
	metrics.QueueDepth.WithLabelValues(job.Domain).Inc()
	q.lane(job.Dest.InstanceID).Queue(job)
}

func (q *Queue) deliver(ctx context.Context, job *Job) error {
	defer func() {
		q.mu.Lock()
		if q.pending > 0 {
			q.pending--
		}
		q.mu.Unlock()
		metrics.QueueDepth.WithLabelValues(job.Domain).Dec()
	}()

	instance, err := q.store.GetInstanceByID(ctx, job.Dest.InstanceID)
	if err != nil {
		metrics.DeliveryOutcomes.WithLabelValues(job.Domain, "error").Inc()
		return fmt.Errorf("outbox: load instance %d: %w", job.Dest.InstanceID, err)
	}
	now := time.Now()
	if instance.Dead(deadAfter) || instance.Blocked(now) {
		metrics.DeliveryOutcomes.WithLabelValues(job.Domain, "dropped_dead").Inc()
		return nil
	}

	unlock := q.locks.Lock(job.Dest.InboxURL)
	err = q.deliverOnce(ctx, job)
	unlock()

	if err == nil {
		metrics.DeliveryOutcomes.WithLabelValues(job.Domain, "delivered").Inc()
		instance.UpdatedAt = now
		if uerr := q.store.UpdateInstance(ctx, instance); uerr != nil {
			log.Warnf("outbox: touch instance %s after delivery: %v", instance.Domain, uerr)
		}
		return nil
	}

	q.scheduleRetry(job, err)
	return nil
}

func (q *Queue) deliverOnce(ctx context.Context, job *Job) error {
	digest := sha256.Sum256(job.Body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.Dest.InboxURL, bytes.NewReader(job.Body))
	if err != nil {
		return fmt.Errorf("outbox: build request: %w", err)
	}
	req.Header.Set("Content-Type", `application/activity+json`)
	req.Header.Set("Accept", `application/activity+json`)
	req.Header.Set("User-Agent", "federails/"+q.hostname)
	req.Header.Set("Digest", "SHA-256="+base64.StdEncoding.EncodeToString(digest[:]))

	if err := fedsig.SignRequest(req, job.KeyID, job.PrivateKey, job.Body); err != nil {
		return fmt.Errorf("outbox: sign request: %w", err)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("outbox: deliver to %s: %w", job.Dest.InboxURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// Any 4xx means the peer rejects the request itself (bad
		// auth, gone, bad request, rate limited); retrying the same
		// signed body on the same backoff ladder as a 5xx would just
		// repeat the rejection (§4.7: "4xx => permanent failure").
		return fmt.Errorf("%w: %s responded %d", errPermanent, job.Dest.InboxURL, resp.StatusCode)
	}
	return fmt.Errorf("outbox: %s responded %d", job.Dest.InboxURL, resp.StatusCode)
}

// errPermanent marks a delivery the peer has permanently rejected, so
// scheduleRetry gives up immediately instead of walking the backoff
// ladder.
var errPermanent = fmt.Errorf("outbox: permanent failure")

func (q *Queue) scheduleRetry(job *Job, cause error) {
	if errors.Is(cause, errPermanent) || job.attempt >= len(backoffSchedule) {
		metrics.DeliveryOutcomes.WithLabelValues(job.Domain, "abandoned").Inc()
		log.Warnf("outbox: abandoning delivery to %s after %d attempts: %v", job.Dest.InboxURL, job.attempt+1, cause)
		return
	}

	delay := backoffSchedule[job.attempt]
	job.attempt++
	metrics.DeliveryOutcomes.WithLabelValues(job.Domain, "retry_scheduled").Inc()
	log.Infof("outbox: retrying delivery to %s in %s (attempt %d): %v", job.Dest.InboxURL, delay, job.attempt, cause)

	time.AfterFunc(delay, func() {
		q.Enqueue(job)
	})
}
