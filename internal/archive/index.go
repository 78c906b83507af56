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

	"github.com/tidwall/btree"
)

// Index is the in-memory ordered set of registered archive ids (spec §3
// "Archive Index"): the authoritative answer to "which archive contains
// mc_seq_no N?", kept in sync with the archives column's keys.
type Index struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[uint32]
}

// NewIndex builds an empty Index.
func NewIndex() *Index {
	return &Index{tree: btree.NewBTreeG[uint32](func(a, b uint32) bool { return a < b })}
}

// Insert registers id. A no-op if id is already registered.
func (x *Index) Insert(id uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.tree.Set(id)
}

// Contains reports whether id is registered.
func (x *Index) Contains(id uint32) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.tree.Get(id)
	return ok
}

// GreatestLEQ returns the greatest registered id <= upTo, if any.
func (x *Index) GreatestLEQ(upTo uint32) (uint32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var found uint32
	ok := false
	x.tree.Descend(upTo, func(item uint32) bool {
		found = item
		ok = true
		return false
	})
	return found, ok
}

// Len returns the number of registered ids.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.tree.Len()
}

// All returns every registered id in ascending order.
func (x *Index) All() []uint32 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]uint32, 0, x.tree.Len())
	x.tree.Ascend(0, func(item uint32) bool {
		out = append(out, item)
		return true
	})
	return out
}

// RemoveBelow deletes every registered id strictly less than the pivot —
// the greatest registered id strictly less than until — and returns them in
// ascending order. The pivot itself is retained: it is still the archive
// responsible for every mc_seq_no in [pivot, until), so it must survive.
// If no registered id is strictly less than until, this is a no-op. Used by
// RemoveOutdatedArchives (spec §4.2): "split the ordered id set at the
// greatest id strictly less than until_id; retain the upper part; delete
// the lower part's rows."
func (x *Index) RemoveBelow(until uint32) []uint32 {
	x.mu.Lock()
	defer x.mu.Unlock()

	var pivot uint32
	havePivot := false
	x.tree.Descend(until, func(item uint32) bool {
		if item >= until {
			return true
		}
		pivot = item
		havePivot = true
		return false
	})
	if !havePivot {
		return nil
	}

	var toDelete []uint32
	x.tree.Ascend(0, func(item uint32) bool {
		if item >= pivot {
			return false
		}
		toDelete = append(toDelete, item)
		return true
	})
	for _, id := range toDelete {
		x.tree.Delete(id)
	}
	return toDelete
}
