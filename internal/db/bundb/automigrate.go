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
	"fmt"

	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// autoMigrateModels lists every table bun should create for a sqlite
// deployment. The goose SQL set in internal/db/migrations targets
// Postgres syntax (SERIAL, TIMESTAMPTZ); sqlite installs, meant for
// local development and single-process testing rather than production
// federation, get their schema from bun's own type mapping instead.
var autoMigrateModels = []interface{}{
	(*fedmodel.Instance)(nil),
	(*fedmodel.Actor)(nil),
	(*fedmodel.LocalUser)(nil),
	(*fedmodel.Community)(nil),
	(*fedmodel.ModeratorRelation)(nil),
	(*fedmodel.Post)(nil),
	(*fedmodel.Comment)(nil),
	(*fedmodel.Vote)(nil),
	(*fedmodel.Follow)(nil),
	(*fedmodel.Ban)(nil),
	(*fedmodel.SentActivity)(nil),
	(*fedmodel.ReceivedActivity)(nil),
	(*fedmodel.RegistrationApplication)(nil),
	(*fedmodel.Report)(nil),
	(*fedmodel.SiteSettings)(nil),
	(*fedmodel.RemovePost)(nil),
	(*fedmodel.LockPost)(nil),
	(*fedmodel.FeaturePost)(nil),
	(*fedmodel.RemoveComment)(nil),
	(*fedmodel.RemoveCommunity)(nil),
	(*fedmodel.HideCommunity)(nil),
	(*fedmodel.BanFromCommunity)(nil),
	(*fedmodel.BanFromInstance)(nil),
	(*fedmodel.AddModerator)(nil),
	(*fedmodel.AddAdmin)(nil),
	(*fedmodel.TransferCommunity)(nil),
}

// AutoMigrate creates every table in autoMigrateModels if it doesn't
// already exist, for sqlite deployments that skip goose entirely.
func AutoMigrate(ctx context.Context, db *bun.DB) error {
	for _, model := range autoMigrateModels {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bundb: auto-migrate %T: %w", model, err)
		}
	}
	return nil
}
