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

	"github.com/google/uuid"
	"github.com/klppl/federails/internal/db"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/uptrace/bun"
)

// GetLocalUserByActorID fetches local account credentials for an
// actor, used by the Identity/Signing component (C1) and by login.
func (s *Store) GetLocalUserByActorID(ctx context.Context, actorID int64) (*fedmodel.LocalUser, error) {
	var user fedmodel.LocalUser
	err := s.DB.NewSelect().
		Model(&user).
		Where("? = ?", bun.Ident("actor_id"), actorID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &user, nil
}

// GetLocalUserByID fetches a local user row by its own numeric id, as
// opposed to the actor it's attached to.
func (s *Store) GetLocalUserByID(ctx context.Context, id int64) (*fedmodel.LocalUser, error) {
	var user fedmodel.LocalUser
	err := s.DB.NewSelect().
		Model(&user).
		Where("? = ?", bun.Ident("id"), id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &user, nil
}

// GetLocalUserByEmail fetches local account credentials by login email.
func (s *Store) GetLocalUserByEmail(ctx context.Context, email string) (*fedmodel.LocalUser, error) {
	var user fedmodel.LocalUser
	err := s.DB.NewSelect().
		Model(&user).
		Where("? = ?", bun.Ident("email"), email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNoEntries
		}
		return nil, bundb.ProcessError(err)
	}
	return &user, nil
}

// PutLocalUser inserts a new local user row (registration). A fresh
// email verification token is minted whenever an email is given and
// the row doesn't already carry one.
func (s *Store) PutLocalUser(ctx context.Context, user *fedmodel.LocalUser) error {
	if user.Email != "" && user.EmailVerificationToken == "" {
		user.EmailVerificationToken = uuid.NewString()
	}
	if _, err := s.DB.NewInsert().Model(user).Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}

// VerifyLocalUserEmail marks a user's email verified if token matches
// the row's outstanding verification token, then clears the token.
func (s *Store) VerifyLocalUserEmail(ctx context.Context, userID int64, token string) error {
	user, err := s.GetLocalUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerificationToken == "" || user.EmailVerificationToken != token {
		return db.ErrNoEntries
	}
	user.EmailVerified = true
	user.EmailVerificationToken = ""
	return s.UpdateLocalUser(ctx, user)
}

// UpdateLocalUser persists changes (application acceptance, notify
// preferences, password rotation).
func (s *Store) UpdateLocalUser(ctx context.Context, user *fedmodel.LocalUser) error {
	if _, err := s.DB.NewUpdate().Model(user).WherePK().Exec(ctx); err != nil {
		return bundb.ProcessError(err)
	}
	return nil
}
