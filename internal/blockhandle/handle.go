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

package blockhandle

import (
	"sync"
	"sync/atomic"

	"github.com/tonnet/archivenode/internal/blockid"
)

// Handle is a shared, in-memory handle for one block: a monotone flag
// bitset, a masterchain reference seq_no, the handle's connection-graph
// edges (next1/next2/prev1/prev2 — a shard block may briefly have two
// successors around a merge/split boundary), and two reader-writer locks
// serializing archive-export writers against body/proof readers.
//
// A Handle is safe for concurrent use. It is shared: every caller that
// resolves the same root_hash through Store gets the identical pointer, so
// a flag transition observed by one goroutine is immediately visible to
// every other holder.
type Handle struct {
	id blockid.Id

	flags               atomic.Uint32
	masterchainRefSeqNo atomic.Uint32

	edgesMu           sync.Mutex
	next1, next2      *blockid.Id
	prev1, prev2      *blockid.Id

	blockDataLock sync.RWMutex
	proofDataLock sync.RWMutex
}

func newHandle(id blockid.Id) *Handle {
	return &Handle{id: id}
}

// Id returns the block identity this handle describes.
func (h *Handle) Id() blockid.Id { return h.id }

// Has reports whether f is currently set.
func (h *Handle) Has(f Flag) bool {
	return Flag(h.flags.Load())&f != 0
}

// TrySet attempts the unset-to-set transition for f. Flags are monotone —
// once set they never clear — so at most one caller ever observes won==true
// for a given flag on a given handle; that caller is obliged to perform the
// work the transition gates (spec §5 "Handle transitions").
func (h *Handle) TrySet(f Flag) bool {
	for {
		old := h.flags.Load()
		if Flag(old)&f != 0 {
			return false
		}
		if h.flags.CompareAndSwap(old, old|uint32(f)) {
			return true
		}
	}
}

// MasterchainRefSeqNo returns the referencing masterchain block's seq_no for
// a shard block, or the block's own seq_no for a masterchain block.
func (h *Handle) MasterchainRefSeqNo() uint32 { return h.masterchainRefSeqNo.Load() }

// SetMasterchainRefSeqNo records the masterchain reference seq_no. Called
// once, when the handle is first populated from an applied block.
func (h *Handle) SetMasterchainRefSeqNo(seqNo uint32) { h.masterchainRefSeqNo.Store(seqNo) }

// BlockDataLock guards the handle's raw block-body blob.
func (h *Handle) BlockDataLock() *sync.RWMutex { return &h.blockDataLock }

// ProofDataLock guards the handle's proof/proof-link blob.
func (h *Handle) ProofDataLock() *sync.RWMutex { return &h.proofDataLock }

// Next1 returns the handle's primary successor edge, if set.
func (h *Handle) Next1() (blockid.Id, bool) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	if h.next1 == nil {
		return blockid.Id{}, false
	}
	return *h.next1, true
}

// SetNext1 sets the primary successor edge.
func (h *Handle) SetNext1(id blockid.Id) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	h.next1 = &id
}

// Next2 returns the handle's secondary successor edge (present only around
// a shard split), if set.
func (h *Handle) Next2() (blockid.Id, bool) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	if h.next2 == nil {
		return blockid.Id{}, false
	}
	return *h.next2, true
}

// SetNext2 sets the secondary successor edge.
func (h *Handle) SetNext2(id blockid.Id) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	h.next2 = &id
}

// Prev1 returns the handle's primary predecessor edge, if set.
func (h *Handle) Prev1() (blockid.Id, bool) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	if h.prev1 == nil {
		return blockid.Id{}, false
	}
	return *h.prev1, true
}

// SetPrev1 sets the primary predecessor edge.
func (h *Handle) SetPrev1(id blockid.Id) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	h.prev1 = &id
}

// Prev2 returns the handle's secondary predecessor edge (present only
// around a shard merge), if set.
func (h *Handle) Prev2() (blockid.Id, bool) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	if h.prev2 == nil {
		return blockid.Id{}, false
	}
	return *h.prev2, true
}

// SetPrev2 sets the secondary predecessor edge.
func (h *Handle) SetPrev2(id blockid.Id) {
	h.edgesMu.Lock()
	defer h.edgesMu.Unlock()
	h.prev2 = &id
}
