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

// Package testing provides test helpers for scanner111 integration tests.
//
// # Quick Start
//
// Use WriteCrashLog to materialize a temp crash-log file and SampleLogText
// for the text of a minimal valid crash log:
//
//	func TestMyFeature(t *testing.T) {
//	    path := testing.WriteCrashLog(t, testing.SampleLogText())
//	    log, err := crashlog.Parse(context.Background(), path, testing.SampleLogText())
//	    require.NoError(t, err)
//	}
//
// # Seeding a Configuration Store
//
// NewTestStore writes one or more YAML fragments to temp files and loads
// them into a fresh *config.Store, in the order given (later fragments
// win on key conflicts, matching Store.LoadMultiple's merge order).
package testing
