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

// Package scheduler is the Scheduled Tasks component (C9): a single
// cooperative worker running the 10-minute, hourly, daily and weekly
// housekeeping jobs of §4.9, built on go-sched.
package scheduler

import (
	"context"
	"time"

	"codeberg.org/gruf/go-sched"
	"github.com/klppl/federails/internal/federation/dereference"
	"github.com/klppl/federails/internal/log"
	"github.com/klppl/federails/internal/metrics"
	"github.com/klppl/federails/internal/store"
)

const (
	tenMinutes = 10 * time.Minute
	oneHour    = time.Hour
	oneDay     = 24 * time.Hour
	oneWeek    = 7 * oneDay

	deletedGracePeriod      = 30 * oneDay
	deniedRegistrationGrace = 7 * oneDay
	ledgerRetention         = oneWeek
	rankStaleAfter          = tenMinutes
)

// Scheduler owns the single cooperative scheduling loop §5 describes;
// every job runs on it in turn, never concurrently with another job.
type Scheduler struct {
	sched    sched.Scheduler
	store    *store.Store
	fetcher  *dereference.Fetcher
	hostname string
}

// New builds a Scheduler over store, using fetcher to probe peer
// nodeinfo during the daily instance-refresh task.
func New(st *store.Store, fetcher *dereference.Fetcher, hostname string) *Scheduler {
	return &Scheduler{store: st, fetcher: fetcher, hostname: hostname}
}

// Start registers every job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	s.sched.Start(nil)

	s.every(tenMinutes, "hot_rank_recompute", s.recomputeHotRanks)
	s.every(tenMinutes, "publish_scheduled_posts", s.publishScheduledPosts)
	s.every(oneHour, "active_user_counts", s.recomputeActiveUserCounts)
	s.every(oneHour, "sweep_expired_bans", s.sweepExpiredBans)
	s.every(oneHour, "delete_expired_instance_blocks", s.deleteExpiredInstanceBlocks)
	s.every(oneDay, "sentinelize_deleted_content", s.sentinelizeDeletedContent)
	s.every(oneDay, "delete_denied_registrations", s.deleteDeniedRegistrations)
	s.every(oneDay, "probe_instance_nodeinfo", s.probeInstances)
	s.every(oneWeek, "gc_activity_ledgers", s.gcActivityLedgers)

	return nil
}

// Stop stops the underlying scheduler.
func (s *Scheduler) Stop() error {
	s.sched.Stop()
	return nil
}

// every registers fn to run on a fixed period, starting one period
// from now, logging and counting its outcome under name.
func (s *Scheduler) every(period time.Duration, name string, fn func(context.Context) error) {
	s.sched.AddJob(sched.Job{
		Run: func(time.Time) {
			ctx := context.Background()
			if err := fn(ctx); err != nil {
				metrics.SchedulerRuns.WithLabelValues(name, "error").Inc()
				log.Errorf("scheduler: %s: %v", name, err)
				return
			}
			metrics.SchedulerRuns.WithLabelValues(name, "ok").Inc()
		},
		Start:    time.Now().Add(period),
		Interval: period,
	})
}

func (s *Scheduler) recomputeHotRanks(ctx context.Context) error {
	n, err := s.store.RecomputeHotRanksBatch(ctx, rankStaleAfter)
	if err != nil {
		return err
	}
	log.Infof("scheduler: recomputed hot ranks for %d posts", n)
	return nil
}

func (s *Scheduler) publishScheduledPosts(ctx context.Context) error {
	n, err := s.store.PublishScheduledPosts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Infof("scheduler: published %d scheduled posts", n)
	}
	return nil
}

func (s *Scheduler) recomputeActiveUserCounts(ctx context.Context) error {
	_, err := s.store.RecomputeActiveUserCounts(ctx)
	return err
}

func (s *Scheduler) sweepExpiredBans(ctx context.Context) error {
	n, err := s.store.SweepExpiredBans(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Infof("scheduler: swept %d expired bans", n)
	}
	return nil
}

func (s *Scheduler) deleteExpiredInstanceBlocks(ctx context.Context) error {
	_, err := s.store.DeleteExpiredInstanceBlocks(ctx)
	return err
}

func (s *Scheduler) sentinelizeDeletedContent(ctx context.Context) error {
	posts, err := s.store.SentinelizeOldDeletedPosts(ctx, deletedGracePeriod)
	if err != nil {
		return err
	}
	comments, err := s.store.SentinelizeOldDeletedComments(ctx, deletedGracePeriod)
	if err != nil {
		return err
	}
	if posts+comments > 0 {
		log.Infof("scheduler: sentinelized %d posts and %d comments", posts, comments)
	}
	return nil
}

func (s *Scheduler) deleteDeniedRegistrations(ctx context.Context) error {
	n, err := s.store.DeleteDeniedRegistrations(ctx, deniedRegistrationGrace)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Infof("scheduler: removed %d denied registrations", n)
	}
	return nil
}

func (s *Scheduler) probeInstances(ctx context.Context) error {
	instances, err := s.store.LiveInstances(ctx)
	if err != nil {
		return err
	}
	for _, inst := range instances {
		info, err := s.fetcher.FetchNodeInfo(ctx, inst.Domain)
		if err != nil {
			log.Warnf("scheduler: nodeinfo probe for %s failed, leaving as possibly-dead: %v", inst.Domain, err)
			continue
		}
		inst.Software = info.Software.Name
		inst.Version = info.Software.Version
		inst.UpdatedAt = time.Now()
		if err := s.store.UpdateInstance(ctx, inst); err != nil {
			log.Warnf("scheduler: persist nodeinfo refresh for %s: %v", inst.Domain, err)
		}
	}
	return nil
}

func (s *Scheduler) gcActivityLedgers(ctx context.Context) error {
	sent, err := s.store.GCSentActivities(ctx, ledgerRetention)
	if err != nil {
		return err
	}
	received, err := s.store.GCReceivedActivities(ctx, ledgerRetention)
	if err != nil {
		return err
	}
	log.Infof("scheduler: GC'd %d sent and %d received activity rows", sent, received)
	return nil
}
