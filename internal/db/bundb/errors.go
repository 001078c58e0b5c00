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

package bundb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/klppl/federails/internal/db"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// processPostgresError replaces postgres-specific unique-violation
// errors with our own db.ErrAlreadyExists, so callers never need to
// import a driver package to check for a duplicate ap_id / domain.
func processPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return db.ErrAlreadyExists
	default:
		return err
	}
}

// processSQLiteError is the sqlite equivalent of processPostgresError.
func processSQLiteError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return db.ErrAlreadyExists
	default:
		return err
	}
}

// ProcessError chooses the right dialect-specific translator based on
// which driver produced err, falling through unrecognized errors
// unchanged. Exported so internal/store can normalize errors from
// queries run directly against the shared *bun.DB.
func ProcessError(err error) error {
	if err == nil {
		return nil
	}
	if pgErr := processPostgresError(err); pgErr != err {
		return pgErr
	}
	if sqliteErr := processSQLiteError(err); sqliteErr != err {
		return sqliteErr
	}
	return err
}
