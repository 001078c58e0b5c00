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

// Package metrics exports outbound delivery outcomes and per-instance
// queue depth for the scheduled and queue components. Full
// dashboards/tracing are out of scope.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveryOutcomes counts outbound deliveries by destination domain
	// and outcome (delivered, retry_scheduled, abandoned, shed,
	// dropped_dead, error).
	DeliveryOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "federails",
		Subsystem: "outbox",
		Name:      "delivery_total",
		Help:      "Outbound activity deliveries by destination and outcome.",
	}, []string{"domain", "outcome"})

	// QueueDepth reports the current pending-delivery count per
	// destination instance (§4.7's per-instance FIFO).
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "federails",
		Subsystem: "outbox",
		Name:      "queue_depth",
		Help:      "Pending deliveries queued per destination instance.",
	}, []string{"domain"})

	// InboxActivities counts inbound activities processed by the
	// dispatcher (C6), by verb and outcome (applied, duplicate,
	// dropped, deferred, rejected).
	InboxActivities = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "federails",
		Subsystem: "inbox",
		Name:      "activities_total",
		Help:      "Inbound activities processed by verb and outcome.",
	}, []string{"verb", "outcome"})

	// SchedulerRuns counts each scheduled task run by job name and
	// outcome (ok, error), per C9.
	SchedulerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "federails",
		Subsystem: "scheduler",
		Name:      "runs_total",
		Help:      "Scheduled task invocations by job and outcome.",
	}, []string{"job", "outcome"})
)
