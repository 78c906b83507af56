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

// Package tonkv is the storage core's KV engine contract (spec §6): atomic
// multi-table write batches, pinned point gets, prefix iteration, and
// per-table merge operators. CF is short for "column family"; this package
// implements each one as a distinct byte-prefixed keyspace within a single
// pebble.DB, since pebble has no native column family concept but does
// provide the first-class Merger required for archive segment and cell
// refcount merges.
package tonkv

// CF names the five column families the storage core persists into.
type CF string

const (
	// Archives holds one row per archive id (u32 big-endian): the
	// concatenation of archive segments, built exclusively through the
	// archive merge operator.
	Archives CF = "archives"

	// PackageEntries holds raw block/proof blobs keyed by PackageEntryId.
	PackageEntries CF = "package_entries"

	// BlockHandles holds per-block metadata keyed by root_hash.
	BlockHandles CF = "block_handles"

	// KeyBlocks is a set of masterchain key-block seq_nos, keyed by
	// seq_no big-endian; membership is what matters, the value is opaque.
	KeyBlocks CF = "key_blocks"

	// Cells holds the content-addressed cell rows: refcount(i64 LE) ++
	// serialized cell body, built exclusively through the cell merge
	// operator.
	Cells CF = "cells"
)

// All lists every column family the engine must register at open time.
// PebbleEngine does not iterate over it; it maps each column family to its
// key prefix through prefixByte.
var All = []CF{Archives, PackageEntries, BlockHandles, KeyBlocks, Cells}

// prefixByte assigns each CF a single-byte keyspace prefix inside the shared
// pebble.DB. Keeping this a byte (not the CF name itself) keeps every key
// short and fixed-offset, which matters for PackageEntries (spec §3 requires
// GC to slice key[16:48] directly).
var prefixByte = map[CF]byte{
	Archives:       0x01,
	PackageEntries: 0x02,
	BlockHandles:   0x03,
	KeyBlocks:      0x04,
	Cells:          0x05,
}

// prefixed returns key prefixed with cf's single-byte keyspace tag.
func prefixed(cf CF, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = prefixByte[cf]
	copy(out[1:], key)
	return out
}
