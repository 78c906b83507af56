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

import (
	"encoding/binary"
	"io"
	"sort"
)

func decodeInt64LE(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) }

// EncodeCellDelta builds a Cells-CF merge operand: a signed refcount delta,
// optionally carrying the cell's serialized body. body must be non-nil only
// on the operand that is allowed to "win" the body (spec §4.1: the first
// insertion, or never, for a pure bump/removal).
func EncodeCellDelta(delta int64, body []byte) []byte {
	buf := make([]byte, 8+len(body))
	binary.LittleEndian.PutUint64(buf[:8], uint64(delta))
	copy(buf[8:], body)
	return buf
}

// cellValueMerger implements pebble.ValueMerger for the Cells CF. Per spec
// §4.1, the merge operator must compose commutatively: the final refcount is
// the base value's refcount (if any; otherwise 0) plus every delta, and the
// body is whichever operand carried one. Because a base row is stored in
// exactly the same physical layout the merger produces (rc LE ++ body), a
// base value can be folded into the running sum using the same absorb logic
// as a plain delta operand: adding its stored rc once is equivalent to using
// it as the starting point.
type cellValueMerger struct {
	rc   int64
	body []byte
}

func (m *cellValueMerger) absorb(value []byte) error {
	if len(value) < 8 {
		return errShortCellOperand
	}
	m.rc += decodeInt64LE(value[:8])
	if m.body == nil && len(value) > 8 {
		m.body = append([]byte(nil), value[8:]...)
	}
	return nil
}

func (m *cellValueMerger) MergeNewer(value []byte) error { return m.absorb(value) }
func (m *cellValueMerger) MergeOlder(value []byte) error { return m.absorb(value) }

func (m *cellValueMerger) Finish(includesBase bool) ([]byte, io.Closer, error) {
	return EncodeCellDelta(m.rc, m.body), nil, nil
}

// EncodeArchiveSegment tags a framed archive segment with a monotonically
// increasing sequence number so the merge operator can restore append order
// regardless of the order pebble happens to visit operands in. seq should be
// supplied by the caller (the Archive Manager hands out a process-wide
// counter in move_into_archive) and must be strictly increasing across
// concurrent writers appending into the same archive id.
func EncodeArchiveSegment(seq uint64, framed []byte) []byte {
	buf := make([]byte, 8+len(framed))
	binary.BigEndian.PutUint64(buf[:8], seq)
	copy(buf[8:], framed)
	return buf
}

// archiveValueMerger implements pebble.ValueMerger for the Archives CF.
// Every call (the seed passed to Merge, and each MergeNewer/MergeOlder) is
// recorded in the order pebble makes it. When Finish reports includesBase,
// the base row — the previously-finished, untagged concatenation of
// segments — is, by construction, the oldest input and is always the last
// call pebble makes before Finish; every other call carries a seq-tagged
// operand from EncodeArchiveSegment. Sorting the tagged operands by seq and
// prepending the base reconstructs the true append order.
type archiveValueMerger struct {
	calls [][]byte
}

func (m *archiveValueMerger) record(value []byte) error {
	m.calls = append(m.calls, append([]byte(nil), value...))
	return nil
}

func (m *archiveValueMerger) MergeNewer(value []byte) error { return m.record(value) }
func (m *archiveValueMerger) MergeOlder(value []byte) error { return m.record(value) }

func (m *archiveValueMerger) Finish(includesBase bool) ([]byte, io.Closer, error) {
	calls := m.calls
	var base []byte
	if includesBase && len(calls) > 0 {
		base = calls[len(calls)-1]
		calls = calls[:len(calls)-1]
	}

	ops := make([]archiveOp, 0, len(calls))
	for _, v := range calls {
		if len(v) < 8 {
			continue
		}
		ops = append(ops, archiveOp{seq: binary.BigEndian.Uint64(v[:8]), data: v[8:]})
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].seq < ops[j].seq })

	out := make([]byte, 0, len(base)+sumOpLen(ops))
	out = append(out, base...)
	for _, op := range ops {
		out = append(out, op.data...)
	}
	return out, nil, nil
}

type archiveOp struct {
	seq  uint64
	data []byte
}

func sumOpLen(ops []archiveOp) int {
	n := 0
	for _, op := range ops {
		n += len(op.data)
	}
	return n
}
