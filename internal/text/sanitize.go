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

// Package text sanitizes the HTML fragments carried in remote Post/Comment
// bodies before they reach the Object Store (C4 validation, §7
// ValidationError).
package text

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is bluemonday's UGC policy (links, emphasis, paragraphs, lists,
// blockquotes, headings, tables, images and similar user-content markup)
// plus class attributes on code/span; everything else is stripped,
// including script/style/event-handler content.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	return p
}

// Sanitize strips disallowed markup from a remote post/comment body,
// returning the cleaned HTML fragment.
func Sanitize(body string) string {
	return strings.TrimSpace(policy.Sanitize(body))
}

// MaxLen is enforced on Post.Body/Comment.Content before persistence; a
// body over this length is a ValidationError rather than being truncated
// silently.
const MaxLen = 50_000

// ErrTooLong is returned by Validate when body exceeds MaxLen runes.
var ErrTooLong = errTooLong{}

type errTooLong struct{}

func (errTooLong) Error() string { return "text: body exceeds maximum length" }

// Validate sanitizes body and checks its length, returning the cleaned
// text or ErrTooLong.
func Validate(body string) (string, error) {
	clean := Sanitize(body)
	if len([]rune(clean)) > MaxLen {
		return "", ErrTooLong
	}
	return clean, nil
}
