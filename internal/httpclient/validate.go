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

package httpclient

import "net/http"

// ValidateRequest performs minimal sanity checks on an outgoing
// request before it's handed to the underlying http.Client{}, catching
// malformed requests built from untrusted remote-supplied URLs (e.g.
// an actor's inbox field) before we attempt to dial out.
func ValidateRequest(req *http.Request) error {
	if req == nil || req.URL == nil {
		return ErrInvalidRequest
	}

	switch req.URL.Scheme {
	case "http", "https":
		// ok
	default:
		return ErrInvalidRequest
	}

	if req.URL.Host == "" {
		return ErrInvalidRequest
	}

	return nil
}
