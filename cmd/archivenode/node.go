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

package main

import (
	"fmt"

	log "github.com/erigontech/erigon-lib/log/v3"

	"github.com/tonnet/archivenode/internal/archive"
	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/cellstore"
	"github.com/tonnet/archivenode/internal/config"
	"github.com/tonnet/archivenode/internal/pkgentry"
	"github.com/tonnet/archivenode/internal/tonkv"
	"github.com/tonnet/archivenode/internal/walker"
)

// node bundles the four storage-core components (cell store, block handle
// store, package entry store, archive manager) plus the KV engine they all
// sit on top of, built once per process
// from a loaded Config.
type node struct {
	cfg     config.Config
	kv      tonkv.Engine
	cells   *cellstore.Store
	handles *blockhandle.Store
	entries *pkgentry.Store
	archive *archive.Manager
	log     log.Logger
}

// buildNode opens the KV engine at cfg.DataDir and constructs every
// storage-core component against it. It does not construct a Validator or
// Walker: those additionally need an engine.Collaborator and a Crypto,
// which are genuinely external to this core (spec §1) and are wired in by
// the caller once a concrete download/apply/consensus-crypto stack exists.
func buildNode(cfg config.Config) (*node, error) {
	logger := log.New()

	kv, err := tonkv.OpenPebble(tonkv.Options{Dir: cfg.DataDir})
	if err != nil {
		return nil, fmt.Errorf("archivenode: open KV engine at %s: %w", cfg.DataDir, err)
	}

	cells, err := cellstore.New(kv, cellstoreCacheCapacity)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("archivenode: build cell store: %w", err)
	}

	handles := blockhandle.New(kv)
	entries := pkgentry.New(kv)

	archiveMgr, err := archive.New(kv, handles, entries, cfg.ArchiveSliceCacheSize, logger)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("archivenode: build archive manager: %w", err)
	}
	if err := archiveMgr.Preload(); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("archivenode: preload archive index: %w", err)
	}

	return &node{
		cfg:     cfg,
		kv:      kv,
		cells:   cells,
		handles: handles,
		entries: entries,
		archive: archiveMgr,
		log:     logger,
	}, nil
}

// cellstoreCacheCapacity bounds the cell store's bounded strong-reference
// cache (internal/cellstore's weak-reference substitute). Not yet
// config-driven: spec.md does not name this as a persisted constant, and no
// S1–S6 scenario in spec §8 depends on its exact value.
const cellstoreCacheCapacity = 1 << 16

func (n *node) Close() error {
	return n.kv.Close()
}

// walkerConfig translates Config's flat TOML fields into walker.Config.
func walkerConfig(cfg config.Config) walker.Config {
	return walker.Config{
		WaitTimeout:              cfg.WaitTimeout(),
		MasterchainRetryRate:     cfg.MasterchainRetryRate(),
		MasterchainRetryBurst:    cfg.MasterchainRetryBurst,
		ShardBlockBackoffInitial: cfg.ShardBlockBackoffInitial(),
		ShardBlockBackoffMax:     cfg.ShardBlockBackoffMax(),
		ShardBatchConcurrency:    cfg.ShardBatchConcurrency,
	}
}
