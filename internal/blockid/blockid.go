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

// Package blockid defines the block identity types shared by every storage
// component: the masterchain/shardchain BlockId, the sort-key prefix GC
// slices out of it, and the PackageEntryId used to key raw block and proof
// blobs.
package blockid

import (
	"encoding/binary"
	"fmt"
)

// HashSize is the width of a cell repr_hash / block root_hash / file_hash.
const HashSize = 32

// Hash is a 32 byte content hash (root_hash, file_hash, or cell repr_hash).
type Hash [HashSize]byte

func (h Hash) String() string { return fmt.Sprintf("%x", h[:]) }

// Id is the full identity of a block: (workchain, shard_prefix, seq_no,
// root_hash, file_hash). Two blocks are identical iff all five fields match.
type Id struct {
	Workchain   int32
	ShardPrefix uint64
	SeqNo       uint32
	RootHash    Hash
	FileHash    Hash
}

func (id Id) String() string {
	return fmt.Sprintf("(%d,%016x,%d):%x", id.Workchain, id.ShardPrefix, id.SeqNo, id.RootHash[:8])
}

// IsMasterchain reports whether id belongs to the masterchain (workchain -1
// by TON convention).
func (id Id) IsMasterchain() bool { return id.Workchain == MasterchainWorkchain }

// MasterchainWorkchain is the workchain id reserved for the masterchain.
const MasterchainWorkchain = -1

// PrefixSize is the width of the (workchain, shard_prefix, seq_no) sort key.
const PrefixSize = 4 + 8 + 4

// Prefix is the 16 byte sort key GC operates on: (workchain, shard_prefix,
// seq_no), big-endian. It sorts lexicographically by workchain, then shard,
// then block height, matching ascending iteration order in the KV engine.
type Prefix [PrefixSize]byte

// EncodePrefix serializes (workchain, shard_prefix, seq_no) as the 16 byte
// big-endian sort key described in spec §3.
func EncodePrefix(workchain int32, shardPrefix uint64, seqNo uint32) Prefix {
	var p Prefix
	binary.BigEndian.PutUint32(p[0:4], uint32(workchain))
	binary.BigEndian.PutUint64(p[4:12], shardPrefix)
	binary.BigEndian.PutUint32(p[12:16], seqNo)
	return p
}

// DecodePrefix recovers (workchain, shard_prefix, seq_no) from a Prefix.
func DecodePrefix(p Prefix) (workchain int32, shardPrefix uint64, seqNo uint32) {
	workchain = int32(binary.BigEndian.Uint32(p[0:4]))
	shardPrefix = binary.BigEndian.Uint64(p[4:12])
	seqNo = binary.BigEndian.Uint32(p[12:16])
	return
}

// Prefix returns the 16 byte (workchain, shard_prefix, seq_no) sort key for id.
func (id Id) Prefix() Prefix { return EncodePrefix(id.Workchain, id.ShardPrefix, id.SeqNo) }

// IdSize is the length of a serialized Id: the 16 byte Prefix plus the two
// 32 byte content hashes.
const IdSize = PrefixSize + HashSize + HashSize

// Encode serializes the full five-field identity: prefix(16B) ++
// root_hash(32B) ++ file_hash(32B). Used wherever a component needs to
// persist a BlockId itself rather than just its sort key, e.g. a block
// handle's next/prev connection edges.
func (id Id) Encode() []byte {
	buf := make([]byte, IdSize)
	p := id.Prefix()
	copy(buf[0:PrefixSize], p[:])
	copy(buf[PrefixSize:PrefixSize+HashSize], id.RootHash[:])
	copy(buf[PrefixSize+HashSize:], id.FileHash[:])
	return buf
}

// DecodeId is Encode's inverse.
func DecodeId(b []byte) (Id, error) {
	if len(b) != IdSize {
		return Id{}, fmt.Errorf("blockid: encoded id has length %d, want %d", len(b), IdSize)
	}
	var p Prefix
	copy(p[:], b[0:PrefixSize])
	var id Id
	id.Workchain, id.ShardPrefix, id.SeqNo = DecodePrefix(p)
	copy(id.RootHash[:], b[PrefixSize:PrefixSize+HashSize])
	copy(id.FileHash[:], b[PrefixSize+HashSize:])
	return id, nil
}

// Kind distinguishes the three package entry flavors stored per block.
type Kind uint8

const (
	KindBlock Kind = iota
	KindProof
	KindProofLink
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindProof:
		return "proof"
	case KindProofLink:
		return "proof_link"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// EntryId is a PackageEntryId: a BlockId tagged with the kind of blob it
// addresses (Block body, Proof, or ProofLink).
type EntryId struct {
	Block Id
	Kind  Kind
}

// EntryKeySize is the length of a serialized PackageEntryId key:
// prefix(16B) ++ root_hash(32B) ++ kind_tag(1B).
const EntryKeySize = PrefixSize + HashSize + 1

// EncodeKey serializes the PackageEntryId key exactly as spec §3/§6 describe
// it: prefix(16B) ++ root_hash(32B) ++ kind_tag(1B). The layout is
// load-bearing: GC recovers the handle key by slicing key[16:48].
func (id EntryId) EncodeKey() []byte {
	buf := make([]byte, EntryKeySize)
	p := id.Block.Prefix()
	copy(buf[0:PrefixSize], p[:])
	copy(buf[PrefixSize:PrefixSize+HashSize], id.Block.RootHash[:])
	buf[PrefixSize+HashSize] = byte(id.Kind)
	return buf
}

// DecodeEntryKey parses a serialized PackageEntryId key. It returns an error
// if key is not exactly EntryKeySize bytes.
func DecodeEntryKey(key []byte) (EntryId, error) {
	if len(key) != EntryKeySize {
		return EntryId{}, fmt.Errorf("blockid: package entry key has length %d, want %d", len(key), EntryKeySize)
	}
	var id EntryId
	var p Prefix
	copy(p[:], key[0:PrefixSize])
	id.Block.Workchain, id.Block.ShardPrefix, id.Block.SeqNo = DecodePrefix(p)
	copy(id.Block.RootHash[:], key[PrefixSize:PrefixSize+HashSize])
	id.Kind = Kind(key[PrefixSize+HashSize])
	return id, nil
}

// HandleKey returns the 32 byte block-handle key (root_hash) embedded in an
// entry key, i.e. key[16:48]. GC uses this to find the matching handle row
// for a package entry it is about to delete.
func HandleKey(entryKey []byte) ([]byte, bool) {
	if len(entryKey) < PrefixSize+HashSize {
		return nil, false
	}
	return entryKey[PrefixSize : PrefixSize+HashSize], true
}

// KeyBlockKey serializes a key-blocks column key: seq_no big-endian.
func KeyBlockKey(seqNo uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, seqNo)
	return buf
}
