// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/scanner111/pkg/config"
)

func TestWriteCrashLog(t *testing.T) {
	path := WriteCrashLog(t, SampleLogText())
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SampleLogText(), string(data))
}

func TestInsertCrashLog(t *testing.T) {
	log := InsertCrashLog(t, SampleLogText())
	require.NotNil(t, log)
	assert.Equal(t, "Fallout4", log.GameType)
	require.NotNil(t, log.Header)
	assert.Equal(t, "1.10.163", log.Header.GameVersion)
	assert.Len(t, log.Plugins, 2)
}

func TestNewTestStore_MergesInOrder(t *testing.T) {
	store := NewTestStore(t,
		"analyzers:\n  suspect:\n    enabled: true\n",
		"analyzers:\n  suspect:\n    enabled: false\n",
	)

	got, getErr := config.Get[bool](store, "analyzers.suspect.enabled")
	require.NoError(t, getErr)
	assert.False(t, got, "the later fragment's value should win")
}

func TestNewTestStore_Empty(t *testing.T) {
	store := NewTestStore(t)
	require.NotNil(t, store)
}
