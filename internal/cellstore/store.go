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
	"fmt"

	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/tonkv"
)

// Store is the content-addressed cell store (spec §4.1). Every exported
// method takes the caller's own tonkv.Batch so a cell mutation composes
// atomically with whatever else the caller is persisting in the same write
// (e.g. a block handle update alongside the block's state root).
type Store struct {
	engine tonkv.Engine
	cache  *cellCache
}

// New builds a Store over engine with an LRU cache sized for capacity
// resident cells.
func New(engine tonkv.Engine, capacity int) (*Store, error) {
	cache, err := newCellCache(capacity)
	if err != nil {
		return nil, err
	}
	return &Store{engine: engine, cache: cache}, nil
}

// localEntry accumulates the net refcount bump and the body (set at most
// once, since every occurrence of a hash carries identical bytes) for one
// distinct cell touched during a single StoreCell call.
type localEntry struct {
	rc   int64
	body []byte
}

// StoreCell persists root and every cell it transitively references,
// deduplicated globally by hash. Returns the number of distinct cells
// touched by this call (new insertions and in-call bumps).
//
// If root is already persisted with a positive refcount, the call is a
// complete no-op and returns 0: per spec §4.1 / the original cell store this
// generalizes, re-storing an already-live root does not even bump its own
// refcount, since whatever currently holds it is assumed to release it
// exactly once. For any other cell encountered mid-walk with a positive
// on-disk refcount, the call still schedules a +1 bump (the reference is
// real) but does not recurse into it — the subgraph below it is already
// fully persisted.
//
// Traversal is an explicit stack, not recursion, per spec §9: TON cell trees
// can be deep enough that a recursive walk risks stack overflow.
func (s *Store) StoreCell(batch tonkv.Batch, root InputCell) (int, error) {
	rootHash := root.Hash()
	rootAlreadyLive, err := s.hasPositiveRefcount(batch, rootHash)
	if err != nil {
		return 0, err
	}
	if rootAlreadyLive {
		return 0, nil
	}

	touched := map[blockid.Hash]*localEntry{
		rootHash: {rc: 1, body: root.Body()},
	}

	stack := make([]InputCell, 0, 16)
	stack = append(stack, root)

	for len(stack) > 0 {
		cell := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := 0; i < cell.NumRefs(); i++ {
			child := cell.Ref(i)
			h := child.Hash()

			// Already touched earlier in this same call (the batch-local
			// transaction already has it): another parent in this same
			// StoreCell call refers to it too, so bump and do not re-push —
			// its own children were already scheduled for descent (or
			// correctly skipped) the first time it was encountered.
			if e, ok := touched[h]; ok {
				e.rc++
				continue
			}

			alreadyLive, err := s.hasPositiveRefcount(batch, h)
			if err != nil {
				return 0, err
			}
			touched[h] = &localEntry{rc: 1, body: child.Body()}
			if alreadyLive {
				continue
			}
			stack = append(stack, child)
		}
	}

	for h, e := range touched {
		if err := batch.Merge(tonkv.Cells, h[:], tonkv.EncodeCellDelta(e.rc, e.body)); err != nil {
			return 0, fmt.Errorf("cellstore: merge cell %s: %w", h, err)
		}
	}
	return len(touched), nil
}

// hasPositiveRefcount reports whether h already has a materially present row
// (effective refcount >= 1) visible to batch — read-your-writes against
// whatever this same batch has staged so far, matching how the rest of this
// store reads through a pending batch.
func (s *Store) hasPositiveRefcount(batch tonkv.Batch, h blockid.Hash) (bool, error) {
	value, closer, err := batch.Get(tonkv.Cells, h[:])
	if err != nil {
		return false, fmt.Errorf("cellstore: get cell %s: %w", h, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	_, ok := tonkv.StripRefcount(value)
	return ok, nil
}

// LoadCell returns the StorageCell for hash, cache-first. A cell whose
// effective stored refcount is <= 0 is treated as absent (ErrCellNotFound),
// matching tonkv.StripRefcount's tombstone semantics.
func (s *Store) LoadCell(hash blockid.Hash) (*StorageCell, error) {
	if c, ok := s.cache.get(hash); ok {
		return c, nil
	}

	value, closer, err := s.engine.Get(tonkv.Cells, hash[:])
	if err != nil {
		return nil, fmt.Errorf("cellstore: get cell %s: %w", hash, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	if value == nil {
		return nil, ErrCellNotFound
	}
	body, ok := tonkv.StripRefcount(value)
	if !ok {
		return nil, ErrCellNotFound
	}

	data, refs, treeBits, treeCells, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	cell := &StorageCell{
		hash:          hash,
		data:          data,
		refHashes:     refs,
		treeBitsCount: treeBits,
		treeCellCount: treeCells,
		store:         s,
	}
	s.cache.add(hash, cell)
	return cell, nil
}

// removeState accumulates one hash's removal bookkeeping for a single
// RemoveCell call: rc is the refcount observed on first touch (from cache or
// disk), removes is how many times this call has decremented it so far.
type removeState struct {
	rc      int64
	removes int64
}

// RemoveCell removes one reference to hash. When the last reference is
// removed (the running local decrement count reaches the cell's stored
// refcount), removal cascades to its children — each child loses exactly the
// one reference hash's body held — and the cell is evicted from cache.
// Cells that merely lose a reference but remain referenced elsewhere are
// left in cache, since other holders still depend on them.
//
// Returns ErrCounterMismatch if a cascade would remove more references from
// a cell than it was ever granted — a fatal bookkeeping invariant violation
// (spec §4.1) rather than a recoverable error.
func (s *Store) RemoveCell(batch tonkv.Batch, hash blockid.Hash) error {
	local := make(map[blockid.Hash]*removeState)
	fullyRemoved := make(map[blockid.Hash]bool)

	stack := make([]blockid.Hash, 0, 16)
	stack = append(stack, hash)

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		st, ok := local[h]
		if !ok {
			rc, err := s.storedRefcount(batch, h)
			if err != nil {
				return err
			}
			if rc <= 0 {
				return fmt.Errorf("%w: %s", ErrCellNotFound, h)
			}
			st = &removeState{rc: rc}
			local[h] = st
		}

		st.removes++
		if st.removes > st.rc {
			return fmt.Errorf("%w: cell %s", ErrCounterMismatch, h)
		}
		if st.removes == st.rc {
			fullyRemoved[h] = true
			cell, err := s.loadForRemoval(batch, h)
			if err != nil {
				return err
			}
			stack = append(stack, cell.refHashes...)
		}
	}

	for h, st := range local {
		if err := batch.Merge(tonkv.Cells, h[:], tonkv.EncodeCellDelta(-st.removes, nil)); err != nil {
			return fmt.Errorf("cellstore: merge removal of cell %s: %w", h, err)
		}
	}
	for h := range fullyRemoved {
		s.cache.remove(h)
	}
	return nil
}

// DropCell evicts hash from the in-memory cache without touching storage.
// It is RemoveCell's cache-eviction step exposed standalone, for callers
// that already know (e.g. from a prior RemoveCell result) that a cell's
// references are exhausted and want to free the cache entry immediately.
func (s *Store) DropCell(hash blockid.Hash) {
	s.cache.remove(hash)
}

// storedRefcount returns the persisted refcount for h. The cache only holds
// StorageCell bodies, not refcounts, so RemoveCell's bookkeeping always
// reads the exact stored count from the batch rather than guessing it from a
// cache hit.
func (s *Store) storedRefcount(batch tonkv.Batch, h blockid.Hash) (int64, error) {
	value, closer, err := batch.Get(tonkv.Cells, h[:])
	if err != nil {
		return 0, fmt.Errorf("cellstore: get cell %s: %w", h, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	return tonkv.Refcount(value), nil
}

// loadForRemoval resolves h's children for cascade, cache-first, falling
// back to the batch's own view (so a RemoveCell sees any cell this same
// batch stored earlier).
func (s *Store) loadForRemoval(batch tonkv.Batch, h blockid.Hash) (*StorageCell, error) {
	if c, ok := s.cache.get(h); ok {
		return c, nil
	}
	value, closer, err := batch.Get(tonkv.Cells, h[:])
	if err != nil {
		return nil, fmt.Errorf("cellstore: get cell %s: %w", h, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	body, ok := tonkv.StripRefcount(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, h)
	}
	data, refs, treeBits, treeCells, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	return &StorageCell{
		hash:          h,
		data:          data,
		refHashes:     refs,
		treeBitsCount: treeBits,
		treeCellCount: treeCells,
		store:         s,
	}, nil
}
