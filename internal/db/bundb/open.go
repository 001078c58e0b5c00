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
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open opens the database named by dsn and wraps it in a *bun.DB
// using the dialect implied by its scheme: "postgres://"/"postgresql://"
// for pgx, anything else (a file path, or "sqlite://path") for the
// concurrency-patched modernc.org/sqlite fork pinned in go.mod.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	driver, dialectDSN, dialect := driverFor(dsn)

	sqldb, err := sql.Open(driver, dialectDSN)
	if err != nil {
		return nil, fmt.Errorf("bundb: open %s: %w", driver, err)
	}
	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(25)
	sqldb.SetConnMaxLifetime(time.Hour)

	db := bun.NewDB(sqldb, dialect)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("bundb: ping: %w", err)
	}

	return db, nil
}

// OpenSQLite opens an in-memory sqlite database and creates every
// table via AutoMigrate, for package tests that want to drive the
// Object Store against a real database instead of mocking it.
func OpenSQLite(ctx context.Context) (*bun.DB, error) {
	db, err := Open(ctx, "file::memory:?cache=shared")
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("bundb: OpenSQLite: %w", err)
	}
	return db, nil
}

func driverFor(dsn string) (driver, dialectDSN string, dialect bun.Dialect) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn, pgdialect.New()
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), sqlitedialect.New()
	default:
		return "sqlite", dsn, sqlitedialect.New()
	}
}
