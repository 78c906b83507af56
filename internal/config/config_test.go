// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesPersistedConstants(t *testing.T) {
	cfg := Default()
	require.Equal(t, uint32(100), cfg.ArchivePackageSize)
	require.Equal(t, uint32(20000), cfg.ArchiveSliceSize)
	require.Equal(t, uint32(8), cfg.ShardApplyLagBlocks)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archivenode.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir = "/var/lib/archivenode"
archive_package_size = 50
shard_apply_lag_blocks = 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/archivenode", cfg.DataDir)
	require.Equal(t, uint32(50), cfg.ArchivePackageSize)
	require.Equal(t, uint32(4), cfg.ShardApplyLagBlocks)
	// Unset fields keep their defaults.
	require.Equal(t, uint32(20000), cfg.ArchiveSliceSize)
}

func TestValidateRejectsLagBelowOne(t *testing.T) {
	cfg := Default()
	cfg.ShardApplyLagBlocks = 0
	require.Error(t, cfg.Validate())
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	cfg.WaitTimeoutSeconds = 30
	require.Equal(t, 30*time.Second, cfg.WaitTimeout())
	require.Equal(t, 600*time.Second, cfg.ValidatorSetCacheTTL())
}
