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

package cellstore

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tonnet/archivenode/internal/blockid"
)

// cacheShards is the number of independent LRU shards the cell cache is
// split across. Go has no weak pointer equivalent to the reference
// implementation's cache (pre-1.24's `weak` package is not available to this
// module's toolchain), so spec §9's sanctioned substitute is used instead: a
// bounded, explicitly-evicted cache, sharded to keep per-operation lock
// contention down.
const cacheShards = 16

// cellCache is a bounded, xxhash-sharded LRU of *StorageCell keyed by hash.
// Eviction is both capacity-driven (LRU) and explicit: RemoveCell drops an
// entry outright once a cell's refcount has been fully exhausted, so the
// cache never serves a StorageCell for a hash the store no longer considers
// live.
type cellCache struct {
	shards [cacheShards]*lru.Cache[blockid.Hash, *StorageCell]
}

// newCellCache builds a cache with capacity distributed evenly across
// shards. Every shard holds at least one entry, so a capacity below
// cacheShards (including capacity <= 0) still yields a cache of cacheShards
// entries; caching cannot be turned off.
func newCellCache(capacity int) (*cellCache, error) {
	perShard := capacity / cacheShards
	if perShard < 1 {
		perShard = 1
	}
	c := &cellCache{}
	for i := range c.shards {
		s, err := lru.New[blockid.Hash, *StorageCell](perShard)
		if err != nil {
			return nil, err
		}
		c.shards[i] = s
	}
	return c, nil
}

func (c *cellCache) shardFor(h blockid.Hash) *lru.Cache[blockid.Hash, *StorageCell] {
	return c.shards[xxhash.Sum64(h[:])%cacheShards]
}

func (c *cellCache) get(h blockid.Hash) (*StorageCell, bool) {
	return c.shardFor(h).Get(h)
}

func (c *cellCache) add(h blockid.Hash, cell *StorageCell) {
	c.shardFor(h).Add(h, cell)
}

// remove drops h from the cache unconditionally. Called by RemoveCell when
// h's stored refcount has reached zero in that call, and by DropCell.
func (c *cellCache) remove(h blockid.Hash) {
	c.shardFor(h).Remove(h)
}
