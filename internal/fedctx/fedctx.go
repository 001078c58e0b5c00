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

// Package fedctx carries request-scoped flags through a context.Context:
// a "barebones" flag for store reads that shouldn't populate relations,
// plus the Fetcher's per-ingest request-count budget (§4.3).
package fedctx

import "context"

type ctxKey string

const (
	barebonesKey ctxKey = "barebones"
	budgetKey    ctxKey = "fetch-budget"
	debugSigKey  ctxKey = "debug-signatures"
)

// Barebones reports whether only a barebones model was requested.
func Barebones(ctx context.Context) bool {
	_, ok := ctx.Value(barebonesKey).(struct{})
	return ok
}

// SetBarebones wraps ctx to set the barebones flag.
func SetBarebones(ctx context.Context) context.Context {
	return context.WithValue(ctx, barebonesKey, struct{}{})
}

// budget is a pointer so every recursive Fetcher call decrementing it
// shares the same counter for the whole ingest (§4.3: "each recursion
// decrements a request-count budget attached to the originating
// ingest context").
type budget struct{ remaining int }

// WithFetchBudget returns a context carrying a fresh fetch-request
// budget of n, the per-ingest ceiling on recursive dereferences.
func WithFetchBudget(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, budgetKey, &budget{remaining: n})
}

// TakeFetch consumes one unit of the ingest's fetch budget, returning
// false if the budget is exhausted (or was never set, treated as
// unlimited for callers outside an ingest, e.g. admin tooling).
func TakeFetch(ctx context.Context) bool {
	b, ok := ctx.Value(budgetKey).(*budget)
	if !ok {
		return true
	}
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// DebugSignatures reports whether federation.debug relaxed signature
// checking for this context (test-only use, §6).
func DebugSignatures(ctx context.Context) bool {
	v, _ := ctx.Value(debugSigKey).(bool)
	return v
}

// WithDebugSignatures wraps ctx to set the federation.debug flag.
func WithDebugSignatures(ctx context.Context, debug bool) context.Context {
	return context.WithValue(ctx, debugSigKey, debug)
}
