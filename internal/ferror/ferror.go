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

// Package ferror implements the error taxonomy of §7: Validation,
// Authorization, NotFound, Conflict, Transient and Fatal errors, each
// a distinct type so call sites can errors.As() against it, all built
// atop a caller-tagged wrap chain (New/Newf/Wrap, caller name
// prefixed, cause never swallowed).
package ferror

import (
	"errors"
	"fmt"

	"github.com/klppl/federails/internal/log"
)

// cerror wraps an error with the calling function's name, exactly as
// gtserror.cerror does, so a logged chain always shows provenance.
type cerror struct {
	c string
	e error
}

func (ce *cerror) Error() string { return ce.c + ": " + ce.e.Error() }
func (ce *cerror) Unwrap() error { return ce.e }

//go:noinline
func New(msg string) error {
	return &cerror{c: log.Caller(3), e: errors.New(msg)}
}

//go:noinline
func Newf(format string, args ...any) error {
	return &cerror{c: log.Caller(3), e: fmt.Errorf(format, args...)}
}

//go:noinline
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &cerror{c: log.Caller(3), e: err}
}

// kind is the taxonomy discriminant; each typed error below embeds one.
type kind int

const (
	kindValidation kind = iota
	kindAuthorization
	kindNotFound
	kindConflict
	kindTransient
	kindFatal
)

// typed is the common shape of every taxonomy error: a kind, the
// wrapped cause, and context fields attached by each layer that
// touches it (activity id, actor, target) per §7's propagation policy.
type typed struct {
	k       kind
	cause   error
	context map[string]any
}

func (t *typed) Error() string {
	msg := t.cause.Error()
	for k, v := range t.context {
		msg += fmt.Sprintf(" %s=%v", k, v)
	}
	return msg
}

func (t *typed) Unwrap() error { return t.cause }

// WithContext attaches a key/value of diagnostic context (activity
// id, actor, target) without swallowing the underlying cause, and
// returns the same error value for chaining at each layer boundary.
func WithContext(err error, key string, value any) error {
	var t *typed
	if errors.As(err, &t) {
		if t.context == nil {
			t.context = make(map[string]any, 1)
		}
		t.context[key] = value
		return err
	}
	return err
}

type (
	ValidationError   struct{ *typed }
	AuthorizationError struct{ *typed }
	NotFoundError     struct{ *typed }
	ConflictError     struct{ *typed }
	TransientError    struct{ *typed }
	FatalError        struct{ *typed }
)

func newTyped(k kind, cause error) *typed {
	return &typed{k: k, cause: cause}
}

// NewValidation wraps cause as a ValidationError — malformed input, a
// slur-filter hit, an oversized body, a bad password length.
func NewValidation(cause error) error { return &ValidationError{newTyped(kindValidation, cause)} }

// NewAuthorization wraps cause as an AuthorizationError — invalid
// signature, actor lacks capability, ban in force.
func NewAuthorization(cause error) error {
	return &AuthorizationError{newTyped(kindAuthorization, cause)}
}

// NewNotFound wraps cause as a NotFoundError — referenced object
// unresolvable within the fetch budget.
func NewNotFound(cause error) error { return &NotFoundError{newTyped(kindNotFound, cause)} }

// NewConflict wraps cause as a ConflictError — uniqueness violation:
// duplicate username, duplicate vote row, replayed activity.
func NewConflict(cause error) error { return &ConflictError{newTyped(kindConflict, cause)} }

// NewTransient wraps cause as a TransientError — lost DB connection,
// outbound 5xx, network timeout. The inbox dispatcher answers an
// inbound activity that fails this way with 503 so the sender retries.
func NewTransient(cause error) error { return &TransientError{newTyped(kindTransient, cause)} }

// NewFatal wraps cause as a FatalError — an invariant was violated.
// Callers should abort the enclosing transaction.
func NewFatal(cause error) error { return &FatalError{newTyped(kindFatal, cause)} }

// IsTransient reports whether err (or anything it wraps) is a
// TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsConflict reports whether err is a ConflictError — callers map
// these to idempotent success where semantics allow (re-like) and to
// a typed error otherwise.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Code maps an error to a stable wire-level error code, never leaking
// diagnostic detail to the caller (§7: "User-facing responses contain
// only a stable error code; diagnostic detail is logged").
func Code(err error) string {
	switch {
	case IsValidation(err):
		return "invalid_request"
	case IsAuthorization(err):
		return "not_permitted"
	case IsNotFound(err):
		return "not_found"
	case IsConflict(err):
		return "conflict"
	case IsTransient(err):
		return "temporarily_unavailable"
	default:
		var f *FatalError
		if errors.As(err, &f) {
			return "internal_error"
		}
		return "internal_error"
	}
}
