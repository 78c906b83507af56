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

// Package config is the ambient configuration scaffold every teacher binary
// carries around its core logic (ambient stack, not spec.md's
// functionality): a plain struct with the persisted constants from spec §6
// as overridable fields, loaded from TOML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every knob a running node needs beyond spec.md's core
// algorithms: where to put its data, the persisted constants §6 names, and
// the concurrency/retry knobs internal/walker exposes as policy (spec §9's
// open questions).
type Config struct {
	// DataDir is the directory the KV engine's database lives under.
	DataDir string `toml:"data_dir"`

	// ArchivePackageSize, ArchiveSliceSize and ShardApplyLagBlocks are loaded
	// and validated only: internal/archive and internal/validator use their
	// own fixed constants (100, 20000 and 8) and do not read these fields.
	ArchivePackageSize    uint32 `toml:"archive_package_size"`
	ArchiveSliceSize      uint32 `toml:"archive_slice_size"`
	ShardApplyLagBlocks   uint32 `toml:"shard_apply_lag_blocks"`
	ArchiveSliceCacheSize int    `toml:"archive_slice_cache_size"`

	// ValidatorSetCacheSize <= 0 disables the broadcast validator's
	// per-key-block validator set cache entirely (the original's
	// Option<ShardStateCacheOptions>-gated cache, carried over for the same
	// purpose: a validator node fed a burst of shard broadcasts re-resolves
	// the same key block's validator set on every one without it).
	ValidatorSetCacheSize       int `toml:"validator_set_cache_size"`
	ValidatorSetCacheTTLSeconds int `toml:"validator_set_cache_ttl_seconds"`

	ShardBatchConcurrency          int `toml:"shard_batch_concurrency"`
	WaitTimeoutSeconds             int `toml:"wait_timeout_seconds"`
	MasterchainRetryRateMillis     int `toml:"masterchain_retry_rate_millis"`
	MasterchainRetryBurst          int `toml:"masterchain_retry_burst"`
	ShardBlockBackoffInitialMillis int `toml:"shard_block_backoff_initial_millis"`
	ShardBlockBackoffMaxMillis     int `toml:"shard_block_backoff_max_millis"`
}

// Default returns the standby configuration: spec §6's persisted constants
// exactly, and the same walker retry/concurrency defaults
// internal/walker.DefaultConfig uses.
func Default() Config {
	return Config{
		DataDir:               "./data",
		ArchivePackageSize:    100,
		ArchiveSliceSize:      20000,
		ShardApplyLagBlocks:   8,
		ArchiveSliceCacheSize: 16,

		ValidatorSetCacheSize:       64,
		ValidatorSetCacheTTLSeconds: 600,

		ShardBatchConcurrency:          16,
		WaitTimeoutSeconds:             30,
		MasterchainRetryRateMillis:     1000,
		MasterchainRetryBurst:          1,
		ShardBlockBackoffInitialMillis: 200,
		ShardBlockBackoffMaxMillis:     30000,
	}
}

// Load reads and parses a TOML config file at path, seeding unset fields
// (TOML's standard "absent field keeps zero value" would silently disagree
// with spec §6's defaults) from Default() first.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants spec.md itself calls out as load-bearing:
// §9's "the value 8 is a policy knob but MUST be >= 1" for the shard-apply
// lag window.
func (c Config) Validate() error {
	if c.ShardApplyLagBlocks < 1 {
		return fmt.Errorf("config: shard_apply_lag_blocks must be >= 1, got %d", c.ShardApplyLagBlocks)
	}
	if c.ArchivePackageSize == 0 {
		return fmt.Errorf("config: archive_package_size must be > 0")
	}
	if c.ArchiveSliceSize == 0 {
		return fmt.Errorf("config: archive_slice_size must be > 0")
	}
	if c.ShardBatchConcurrency <= 0 {
		return fmt.Errorf("config: shard_batch_concurrency must be > 0")
	}
	return nil
}

func (c Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

func (c Config) MasterchainRetryRate() time.Duration {
	return time.Duration(c.MasterchainRetryRateMillis) * time.Millisecond
}

func (c Config) ShardBlockBackoffInitial() time.Duration {
	return time.Duration(c.ShardBlockBackoffInitialMillis) * time.Millisecond
}

func (c Config) ShardBlockBackoffMax() time.Duration {
	return time.Duration(c.ShardBlockBackoffMaxMillis) * time.Millisecond
}

func (c Config) ValidatorSetCacheTTL() time.Duration {
	return time.Duration(c.ValidatorSetCacheTTLSeconds) * time.Second
}
