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

package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klppl/federails/internal/config"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	os.Setenv("FEDERAILS_DATABASE_URL", "sqlite://:memory:")
	defer os.Unsetenv("FEDERAILS_DATABASE_URL")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.Federation.WorkerCount)
	assert.True(t, cfg.Federation.Enabled)
}

func TestLoadReadsFederationWorkerCountFromEnv(t *testing.T) {
	os.Setenv("FEDERAILS_DATABASE_URL", "sqlite://:memory:")
	os.Setenv("FEDERAILS_FEDERATION_WORKER_COUNT", "9")
	defer os.Unsetenv("FEDERAILS_DATABASE_URL")
	defer os.Unsetenv("FEDERAILS_FEDERATION_WORKER_COUNT")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Federation.WorkerCount)
}
