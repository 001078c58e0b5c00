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

package inbound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klppl/federails/internal/apmodel"
)

func TestDomainOfLowercasesHost(t *testing.T) {
	assert.Equal(t, "example.com", domainOf("https://Example.Com/users/alice"))
	assert.Equal(t, "", domainOf(":not a url"))
}

func TestParseTimeOrFallsBackOnEmptyOrInvalid(t *testing.T) {
	fallback := time.Now()
	assert.Equal(t, fallback, parseTimeOr("", fallback))
	assert.Equal(t, fallback, parseTimeOr("not-a-time", fallback))

	want, _ := time.Parse(time.RFC3339, "2026-01-02T15:04:05Z")
	assert.Equal(t, want, parseTimeOr("2026-01-02T15:04:05Z", fallback))
}

func TestDeletedTimestamp(t *testing.T) {
	assert.Nil(t, deletedTimestamp(false))

	ts := deletedTimestamp(true)
	require.NotNil(t, ts)
	assert.WithinDuration(t, time.Now(), *ts, time.Second)
}

func TestUnmarshalTargetEmptyIsNoop(t *testing.T) {
	act := &apmodel.Activity{}
	var out string
	require.NoError(t, unmarshalTarget(act, &out))
	assert.Equal(t, "", out)
}

func TestUnmarshalTargetDecodesString(t *testing.T) {
	act := &apmodel.Activity{Target: []byte(`"https://example.com/communities/news"`)}
	var out string
	require.NoError(t, unmarshalTarget(act, &out))
	assert.Equal(t, "https://example.com/communities/news", out)
}
