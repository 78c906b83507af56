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

package archive

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// TopBlocks is the live frontier of committed blocks GC must never delete
// (spec §4.2, §8 "GC safety"): for each distinct shard_prefix, the set of
// retained seq_nos, compactly represented as a roaring bitmap.
type TopBlocks struct {
	mu      sync.RWMutex
	byShard map[uint64]*roaring.Bitmap
}

// NewTopBlocks builds an empty frontier.
func NewTopBlocks() *TopBlocks {
	return &TopBlocks{byShard: make(map[uint64]*roaring.Bitmap)}
}

// Set marks (shardPrefix, seqNo) as part of the retained frontier.
func (t *TopBlocks) Set(shardPrefix uint64, seqNo uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bm, ok := t.byShard[shardPrefix]
	if !ok {
		bm = roaring.New()
		t.byShard[shardPrefix] = bm
	}
	bm.Add(seqNo)
}

// Contains reports whether (shardPrefix, seqNo) is part of the retained
// frontier.
func (t *TopBlocks) Contains(shardPrefix uint64, seqNo uint32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	bm, ok := t.byShard[shardPrefix]
	if !ok {
		return false
	}
	return bm.Contains(seqNo)
}
