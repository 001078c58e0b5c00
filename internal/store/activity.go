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

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/klppl/federails/internal/db"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// PutSentActivity records an activity this instance signed and queued
// for delivery (C7), for audit and for the retry/backoff bookkeeping.
func (s *Store) PutSentActivity(ctx context.Context, activity *fedmodel.SentActivity) error {
	if _, err := s.DB.NewInsert().Model(activity).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// HasReceivedActivity reports whether apID has already been processed
// by the Inbox Dispatcher (C6), implementing the idempotent-delivery
// dedup check.
func (s *Store) HasReceivedActivity(ctx context.Context, apID string) (bool, error) {
	var received fedmodel.ReceivedActivity
	err := s.DB.NewSelect().
		Model(&received).
		Where("? = ?", bun.Ident("ap_id"), apID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, bundb.ProcessError(err)
	}
	return true, nil
}

// RecordReceivedActivity marks apID as processed, so a redelivered or
// re-announced copy is dropped rather than reprocessed.
func (s *Store) RecordReceivedActivity(ctx context.Context, apID string) error {
	received := &fedmodel.ReceivedActivity{APID: apID}
	_, err := s.DB.NewInsert().Model(received).Exec(ctx)
	if err != nil {
		if errors.Is(bundb.ProcessError(err), db.ErrAlreadyExists) {
			// Raced with a concurrent delivery of the same
			// activity; either way it's now recorded.
			return nil
		}
		return bundb.ProcessError(err)
	}
	return nil
}
