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

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/klppl/federails/internal/config"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/db/migrations"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/uptrace/bun"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg)
		},
	}
}

// migrateLockKey is the Postgres advisory lock key held while
// migrations run.
const migrateLockKey = 7265_6465_6661

func runMigrations(ctx context.Context, cfg *config.Config) error {
	driver, dsn := migrations.DriverAndDSN(cfg.DatabaseURL)

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: open %s: %w", driver, err)
	}
	defer sqldb.Close()

	if driver == "sqlite" {
		// the goose SQL set is Postgres-flavoured; sqlite deployments
		// get their schema from bun's own type mapping instead.
		db := bun.NewDB(sqldb, sqlitedialect.New())
		return bundb.AutoMigrate(ctx, db)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// hold a session-level advisory lock on the one pooled connection
	// for the whole run, so concurrent runners apply migrations one at
	// a time.
	sqldb.SetMaxOpenConns(1)
	if _, err := sqldb.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrateLockKey); err != nil {
		return fmt.Errorf("migrate: advisory lock: %w", err)
	}
	defer sqldb.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrateLockKey)

	if err := goose.UpContext(ctx, sqldb, migrations.Dir); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}

	return nil
}
