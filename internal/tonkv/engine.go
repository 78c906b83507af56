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

package tonkv

import "io"

// Engine is the KV engine contract consumed by every storage component:
// atomic multi-CF write batches, point get with a pinned slice, a
// prefix/forward raw iterator, and per-CF merge operators. It is satisfied
// by *PebbleEngine; tests may substitute any other implementation.
type Engine interface {
	Reader

	// NewBatch starts an atomic write batch. Writes are invisible until
	// Commit; Close without Commit discards them.
	NewBatch() Batch

	Close() error
}

// Reader is the read-only half of Engine, reused by Batch so callers can
// read-your-writes inside a pending batch where the backend allows it.
type Reader interface {
	// Get performs a point lookup. The returned closer (non-nil on a hit)
	// must be released once value is no longer needed; value is only
	// valid until then. A miss returns (nil, nil, nil).
	Get(cf CF, key []byte) (value []byte, closer io.Closer, err error)

	// NewIter opens a forward iterator over [lowerBound, upperBound) in cf.
	// A nil bound is unbounded on that side.
	NewIter(cf CF, lowerBound, upperBound []byte) (Iterator, error)
}

// Iterator walks key/value pairs in ascending key order within one CF.
type Iterator interface {
	First() bool
	Next() bool
	Valid() bool
	Key() []byte
	Value() []byte
	Close() error
}

// Batch is an atomic, multi-CF write batch.
type Batch interface {
	Reader

	Set(cf CF, key, value []byte) error
	Delete(cf CF, key []byte) error

	// Merge applies value as a merge operand against cf's registered
	// merge operator (see cellValueMerger and archiveValueMerger).
	Merge(cf CF, key, value []byte) error

	// Commit makes the batch's writes atomically visible.
	Commit() error

	// Close releases batch resources. Safe to call after Commit.
	Close() error
}

// StripRefcount decodes a Cells-CF row value (refcount i64 LE ++ body) and
// returns the body, or ok=false when the row is absent or its effective
// refcount is <= 0 — per spec §3/§6, such a row is a tombstone and reads
// must treat it as if the cell were absent.
func StripRefcount(value []byte) (body []byte, ok bool) {
	if len(value) < 8 {
		return nil, false
	}
	rc := decodeInt64LE(value[:8])
	if rc <= 0 {
		return nil, false
	}
	return value[8:], true
}

// Refcount decodes the raw refcount from a Cells-CF row value, without the
// positivity check StripRefcount applies. Used by cell removal, which needs
// the exact stored count to validate against its own local bookkeeping.
func Refcount(value []byte) int64 {
	if len(value) < 8 {
		return 0
	}
	return decodeInt64LE(value[:8])
}
