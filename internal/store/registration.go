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

	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// PutRegistrationApplication records a new pending registration
// application (§12's supplemented registration-application flow).
func (s *Store) PutRegistrationApplication(ctx context.Context, app *fedmodel.RegistrationApplication) error {
	if _, err := s.DB.NewInsert().Model(app).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// UpdateRegistrationApplication persists an approve/deny decision.
func (s *Store) UpdateRegistrationApplication(ctx context.Context, app *fedmodel.RegistrationApplication) error {
	if _, err := s.DB.NewUpdate().Model(app).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// PendingRegistrationApplications lists applications awaiting an
// admin decision, oldest first.
func (s *Store) PendingRegistrationApplications(ctx context.Context) ([]*fedmodel.RegistrationApplication, error) {
	var apps []*fedmodel.RegistrationApplication
	err := s.DB.NewSelect().
		Model(&apps).
		Where("? IS NULL", bun.Ident("approved")).
		OrderExpr("? ASC", bun.Ident("created_at")).
		Scan(ctx)
	if err != nil {
		return nil, bundb.ProcessError(err)
	}
	return apps, nil
}
