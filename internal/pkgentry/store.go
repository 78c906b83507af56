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

// Package pkgentry is the Package Entry Store (spec §2, §6): raw block body
// and proof blob storage keyed by blockid.EntryId.
package pkgentry

import (
	"fmt"

	"github.com/golang/snappy"

	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/tonkv"
)

// Store persists raw package entries, snappy-compressed on write and
// transparently decompressed on read.
type Store struct {
	engine tonkv.Engine
}

// New builds a Store over engine.
func New(engine tonkv.Engine) *Store {
	return &Store{engine: engine}
}

// Put stores raw (the uncompressed block body, proof, or proof-link bytes)
// under id, as part of batch. Overwrites any existing row for id.
func (s *Store) Put(batch tonkv.Batch, id blockid.EntryId, raw []byte) error {
	compressed := snappy.Encode(nil, raw)
	if err := batch.Set(tonkv.PackageEntries, id.EncodeKey(), compressed); err != nil {
		return fmt.Errorf("pkgentry: put %s %s: %w", id.Block, id.Kind, err)
	}
	return nil
}

// Get returns the decompressed bytes stored under id. Returns ErrNotFound
// if no row exists.
func (s *Store) Get(r tonkv.Reader, id blockid.EntryId) ([]byte, error) {
	value, closer, err := r.Get(tonkv.PackageEntries, id.EncodeKey())
	if err != nil {
		return nil, fmt.Errorf("pkgentry: get %s %s: %w", id.Block, id.Kind, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	if value == nil {
		return nil, ErrNotFound
	}
	raw, err := snappy.Decode(nil, value)
	if err != nil {
		return nil, fmt.Errorf("pkgentry: decompress %s %s: %w", id.Block, id.Kind, err)
	}
	return raw, nil
}

// Has reports whether a row exists for id, without paying the decompression
// cost of Get.
func (s *Store) Has(r tonkv.Reader, id blockid.EntryId) (bool, error) {
	value, closer, err := r.Get(tonkv.PackageEntries, id.EncodeKey())
	if err != nil {
		return false, fmt.Errorf("pkgentry: has %s %s: %w", id.Block, id.Kind, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	return value != nil, nil
}

// Delete removes id's row, as part of batch.
func (s *Store) Delete(batch tonkv.Batch, id blockid.EntryId) error {
	if err := batch.Delete(tonkv.PackageEntries, id.EncodeKey()); err != nil {
		return fmt.Errorf("pkgentry: delete %s %s: %w", id.Block, id.Kind, err)
	}
	return nil
}
