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
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/tonkv"
)

const (
	edgeNext1 = 1 << iota
	edgeNext2
	edgePrev1
	edgePrev2
)

// Store is the Block Handle Store (spec §4, "Block Handle Store" row). It
// keeps exactly one live *Handle per root_hash — "a BlockHandle is shared;
// it outlives any operation holding it" — so Persist/Load never hand out two
// different objects for the same block.
type Store struct {
	engine   tonkv.Engine
	registry sync.Map // blockid.Hash -> *Handle
}

// New builds a Store over engine.
func New(engine tonkv.Engine) *Store {
	return &Store{engine: engine}
}

// Get returns the resident handle for rootHash without touching storage.
func (s *Store) Get(rootHash blockid.Hash) (*Handle, bool) {
	v, ok := s.registry.Load(rootHash)
	if !ok {
		return nil, false
	}
	return v.(*Handle), true
}

// Load resolves rootHash to a handle, reading through to storage on a
// registry miss. Returns ErrNotFound if no row exists.
func (s *Store) Load(r tonkv.Reader, rootHash blockid.Hash) (*Handle, error) {
	if h, ok := s.Get(rootHash); ok {
		return h, nil
	}
	value, closer, err := r.Get(tonkv.BlockHandles, rootHash[:])
	if err != nil {
		return nil, fmt.Errorf("blockhandle: get %s: %w", rootHash, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	if value == nil {
		return nil, ErrNotFound
	}
	h, err := decodeHandle(value)
	if err != nil {
		return nil, err
	}
	actual, _ := s.registry.LoadOrStore(rootHash, h)
	return actual.(*Handle), nil
}

// GetOrCreate resolves id's handle, creating a fresh zero-flags handle when
// neither the registry nor storage has one yet. id must carry the full
// identity (workchain/shard/seq_no/root_hash/file_hash): unlike Load, this
// is the entry point used when a caller has just learned of a block by its
// full id (e.g. the walker discovering a successor) rather than merely its
// root_hash.
func (s *Store) GetOrCreate(r tonkv.Reader, id blockid.Id) (*Handle, error) {
	if h, ok := s.Get(id.RootHash); ok {
		return h, nil
	}
	value, closer, err := r.Get(tonkv.BlockHandles, id.RootHash[:])
	if err != nil {
		return nil, fmt.Errorf("blockhandle: get %s: %w", id.RootHash, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	var h *Handle
	if value != nil {
		h, err = decodeHandle(value)
		if err != nil {
			return nil, err
		}
	} else {
		h = newHandle(id)
	}
	actual, _ := s.registry.LoadOrStore(id.RootHash, h)
	return actual.(*Handle), nil
}

// PersistKeyBlock registers h under the key_blocks column, keyed by its own
// seq_no, so later validator-set lookups (spec §4.4: "load the key block
// handle for prev_key_block_seqno") can resolve a seq_no to a handle without
// scanning block_handles. Callers are expected to call this exactly once,
// right after a handle wins the IsKeyBlock CAS transition.
func (s *Store) PersistKeyBlock(batch tonkv.Batch, h *Handle) error {
	return batch.Set(tonkv.KeyBlocks, blockid.KeyBlockKey(h.id.SeqNo), h.id.RootHash[:])
}

// LoadKeyBlock resolves a masterchain key-block seq_no to its handle. It
// returns ErrNotFound both when no key block is registered at seqNo and when
// the registered pointer cannot be resolved to a handle row.
func (s *Store) LoadKeyBlock(r tonkv.Reader, seqNo uint32) (*Handle, error) {
	value, closer, err := r.Get(tonkv.KeyBlocks, blockid.KeyBlockKey(seqNo))
	if err != nil {
		return nil, fmt.Errorf("blockhandle: get key block %d: %w", seqNo, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	if len(value) != blockid.HashSize {
		return nil, ErrNotFound
	}
	var rootHash blockid.Hash
	copy(rootHash[:], value)
	return s.Load(r, rootHash)
}

// Persist writes h's current flags, masterchain_ref_seq_no, and connection
// edges into batch. Handles are a plain column, not merge-operator based:
// every Persist call is a full overwrite of the row, matching spec §6's
// "point get" rather than "merge" treatment of the block_handles CF.
func (s *Store) Persist(batch tonkv.Batch, h *Handle) error {
	return batch.Set(tonkv.BlockHandles, h.id.RootHash[:], encodeHandle(h))
}

func encodeHandle(h *Handle) []byte {
	next1, hasNext1 := h.Next1()
	next2, hasNext2 := h.Next2()
	prev1, hasPrev1 := h.Prev1()
	prev2, hasPrev2 := h.Prev2()

	var presence byte
	if hasNext1 {
		presence |= edgeNext1
	}
	if hasNext2 {
		presence |= edgeNext2
	}
	if hasPrev1 {
		presence |= edgePrev1
	}
	if hasPrev2 {
		presence |= edgePrev2
	}

	buf := make([]byte, 0, blockid.IdSize+4+4+1+4*blockid.IdSize)
	buf = append(buf, h.id.Encode()...)
	buf = binary.BigEndian.AppendUint32(buf, h.flags.Load())
	buf = binary.BigEndian.AppendUint32(buf, h.masterchainRefSeqNo.Load())
	buf = append(buf, presence)
	if hasNext1 {
		buf = append(buf, next1.Encode()...)
	}
	if hasNext2 {
		buf = append(buf, next2.Encode()...)
	}
	if hasPrev1 {
		buf = append(buf, prev1.Encode()...)
	}
	if hasPrev2 {
		buf = append(buf, prev2.Encode()...)
	}
	return buf
}

func decodeHandle(value []byte) (*Handle, error) {
	const headerSize = 4 + 4 + 1
	if len(value) < blockid.IdSize+headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidHandle)
	}
	id, err := blockid.DecodeId(value[:blockid.IdSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	off := blockid.IdSize
	flags := binary.BigEndian.Uint32(value[off : off+4])
	off += 4
	seqNo := binary.BigEndian.Uint32(value[off : off+4])
	off += 4
	presence := value[off]
	off++

	h := newHandle(id)
	h.flags.Store(flags)
	h.masterchainRefSeqNo.Store(seqNo)

	readEdge := func() (blockid.Id, error) {
		if len(value) < off+blockid.IdSize {
			return blockid.Id{}, fmt.Errorf("%w: truncated edge", ErrInvalidHandle)
		}
		eid, err := blockid.DecodeId(value[off : off+blockid.IdSize])
		off += blockid.IdSize
		return eid, err
	}

	if presence&edgeNext1 != 0 {
		eid, err := readEdge()
		if err != nil {
			return nil, err
		}
		h.next1 = &eid
	}
	if presence&edgeNext2 != 0 {
		eid, err := readEdge()
		if err != nil {
			return nil, err
		}
		h.next2 = &eid
	}
	if presence&edgePrev1 != 0 {
		eid, err := readEdge()
		if err != nil {
			return nil, err
		}
		h.prev1 = &eid
	}
	if presence&edgePrev2 != 0 {
		eid, err := readEdge()
		if err != nil {
			return nil, err
		}
		h.prev2 = &eid
	}
	return h, nil
}
