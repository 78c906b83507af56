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

// Package archive is the Archive Manager (spec §4.2): groups applied blocks
// into fixed-size archive packages keyed by masterchain seq_no, serves
// range reads of archive slices, and garbage-collects blocks and archives.
package archive

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/erigontech/erigon-lib/log/v3"
	arc "github.com/hashicorp/golang-lru/arc/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/pkgentry"
	"github.com/tonnet/archivenode/internal/tonkv"
)

// Persisted constants (spec §6).
const (
	ArchivePackageSize uint32 = 100
	ArchiveSliceSize   uint32 = 20000
)

// Manager is the Archive Manager. One Manager owns one Index and one
// archive-slice read cache; construct a single instance per open engine.
type Manager struct {
	engine  tonkv.Engine
	handles *blockhandle.Store
	entries *pkgentry.Store
	log     log.Logger

	index      *Index
	sliceCache *arc.ARCCache[uint32, []byte]

	seq atomic.Uint64 // next archive-segment sequence number; see tonkv.EncodeArchiveSegment

	zEnc *zstd.Encoder
	zDec *zstd.Decoder
}

// New builds a Manager. sliceCacheSize bounds the number of whole archive
// values (not individual slices) kept resident for GetArchiveSlice.
func New(engine tonkv.Engine, handles *blockhandle.Store, entries *pkgentry.Store, sliceCacheSize int, logger log.Logger) (*Manager, error) {
	cache, err := arc.NewARC[uint32, []byte](sliceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("archive: build slice cache: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("archive: build zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("archive: build zstd decoder: %w", err)
	}
	return &Manager{
		engine:     engine,
		handles:    handles,
		entries:    entries,
		log:        logger,
		index:      NewIndex(),
		sliceCache: cache,
		zEnc:       enc,
		zDec:       dec,
	}, nil
}

// Index exposes the in-memory archive id index, e.g. for tests asserting on
// registered coverage.
func (m *Manager) Index() *Index { return m.index }

func archiveKey(id uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, id)
	return buf
}

// ComputeArchiveId implements spec §4.2's compute_archive_id: decides, and
// registers, the archive id handle belongs to.
func (m *Manager) ComputeArchiveId(h *blockhandle.Handle) uint32 {
	mcSeqNo := h.MasterchainRefSeqNo()

	if h.Has(blockhandle.IsKeyBlock) {
		m.index.Insert(mcSeqNo)
		return mcSeqNo
	}

	aligned := (mcSeqNo / ArchiveSliceSize) * ArchiveSliceSize
	chosen := aligned
	if id, ok := m.index.GreatestLEQ(mcSeqNo); ok && id > aligned {
		chosen = id
	}

	if mcSeqNo-chosen >= ArchivePackageSize {
		m.index.Insert(mcSeqNo)
		return mcSeqNo
	}

	m.index.Insert(chosen)
	return chosen
}

// GetArchiveId implements spec §4.2's get_archive_id lookup.
func (m *Manager) GetArchiveId(mcSeqNo uint32) (uint32, bool) {
	id, ok := m.index.GreatestLEQ(mcSeqNo)
	if !ok {
		return 0, false
	}
	if mcSeqNo < id+ArchivePackageSize {
		return id, true
	}
	return 0, false
}

// MoveIntoArchive implements spec §4.2's move_into_archive write path:
// idempotent, gated by the handle's is_moving_to_archive/is_archived flags,
// and atomic — segments are merged and the handle row is rewritten in one
// batch.
func (m *Manager) MoveIntoArchive(batch tonkv.Batch, h *blockhandle.Handle) error {
	if h.Has(blockhandle.IsArchived) {
		return nil
	}
	if !h.TrySet(blockhandle.IsMovingToArchive) {
		return nil
	}

	hasData := h.Has(blockhandle.HasData)
	hasProof := h.Has(blockhandle.HasProof)
	hasProofLink := h.Has(blockhandle.HasProofLink)

	// §5: "per-handle body and proof RwLocks serialize archive-export
	// writers against body readers" — archive export takes the writer
	// side of each lock.
	if hasData {
		h.BlockDataLock().Lock()
		defer h.BlockDataLock().Unlock()
	}
	if hasProof || hasProofLink {
		h.ProofDataLock().Lock()
		defer h.ProofDataLock().Unlock()
	}

	id := h.Id()
	archiveId := m.ComputeArchiveId(h)

	var segments []Segment
	if hasData {
		body, err := m.entries.Get(batch, blockid.EntryId{Block: id, Kind: blockid.KindBlock})
		if err != nil {
			return fmt.Errorf("archive: read block body for %s: %w", id, err)
		}
		segments = append(segments, Segment{Name: fmt.Sprintf("%s:block", id), Data: m.zEnc.EncodeAll(body, nil)})
	}
	if hasProofLink {
		proof, err := m.entries.Get(batch, blockid.EntryId{Block: id, Kind: blockid.KindProofLink})
		if err != nil {
			return fmt.Errorf("archive: read proof link for %s: %w", id, err)
		}
		segments = append(segments, Segment{Name: fmt.Sprintf("%s:proof_link", id), Data: m.zEnc.EncodeAll(proof, nil)})
	} else if hasProof {
		proof, err := m.entries.Get(batch, blockid.EntryId{Block: id, Kind: blockid.KindProof})
		if err != nil {
			return fmt.Errorf("archive: read proof for %s: %w", id, err)
		}
		segments = append(segments, Segment{Name: fmt.Sprintf("%s:proof", id), Data: m.zEnc.EncodeAll(proof, nil)})
	}

	for _, seg := range segments {
		seqNo := m.nextSeq()
		operand := tonkv.EncodeArchiveSegment(seqNo, FrameSegment(seg))
		if err := batch.Merge(tonkv.Archives, archiveKey(archiveId), operand); err != nil {
			return fmt.Errorf("archive: merge segment into archive %d: %w", archiveId, err)
		}
	}
	m.sliceCache.Remove(archiveId)

	if h.TrySet(blockhandle.IsArchived) {
		if err := m.handles.Persist(batch, h); err != nil {
			return fmt.Errorf("archive: persist handle %s: %w", id, err)
		}
	}
	return nil
}

func (m *Manager) nextSeq() uint64 {
	return m.seq.Add(1)
}

// GetArchiveSlice implements spec §4.2's range read. found is false when no
// such archive id is registered; err is ErrInvalidOffset when offset is at
// or past the end of the stored value.
func (m *Manager) GetArchiveSlice(id uint32, offset, limit uint64) (slice []byte, found bool, err error) {
	value, err := m.loadArchive(id)
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		return nil, false, nil
	}
	if offset >= uint64(len(value)) {
		return nil, true, ErrInvalidOffset
	}
	end := offset + limit
	if end > uint64(len(value)) {
		end = uint64(len(value))
	}
	return value[offset:end], true, nil
}

// GetArchiveSegments returns id's archive value parsed into its framed
// segments, with each segment's payload decompressed back to the raw bytes
// MoveIntoArchive compressed on write (spec §6: a segment's payload is
// self-describing "filename + length + bytes" — the bytes a consumer gets
// back must be the original block/proof body, not its on-disk compressed
// form). found is false when no such archive id is registered.
func (m *Manager) GetArchiveSegments(id uint32) (segs []Segment, found bool, err error) {
	value, err := m.loadArchive(id)
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		return nil, false, nil
	}
	framed, err := ParseSegments(value)
	if err != nil {
		return nil, true, fmt.Errorf("archive: parse segments of archive %d: %w", id, err)
	}
	out := make([]Segment, len(framed))
	for i, seg := range framed {
		raw, err := m.zDec.DecodeAll(seg.Data, nil)
		if err != nil {
			return nil, true, fmt.Errorf("archive: decompress segment %q of archive %d: %w", seg.Name, id, err)
		}
		out[i] = Segment{Name: seg.Name, Data: raw}
	}
	return out, true, nil
}

func (m *Manager) loadArchive(id uint32) ([]byte, error) {
	if v, ok := m.sliceCache.Get(id); ok {
		return v, nil
	}
	value, closer, err := m.engine.Get(tonkv.Archives, archiveKey(id))
	if err != nil {
		return nil, fmt.Errorf("archive: get archive %d: %w", id, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	if value == nil {
		return nil, nil
	}
	cp := append([]byte(nil), value...)
	m.sliceCache.Add(id, cp)
	return cp, nil
}

// shouldRetain implements the three retention clauses of spec §4.2's Block
// GC: the live frontier, genesis, and masterchain key blocks.
func (m *Manager) shouldRetain(id blockid.EntryId, topBlocks *TopBlocks) (bool, error) {
	if id.Block.SeqNo == 0 {
		return true, nil
	}
	if topBlocks.Contains(id.Block.ShardPrefix, id.Block.SeqNo) {
		return true, nil
	}
	if id.Block.IsMasterchain() {
		return m.isKeyBlock(id.Block.SeqNo)
	}
	return false, nil
}

func (m *Manager) isKeyBlock(seqNo uint32) (bool, error) {
	value, closer, err := m.engine.Get(tonkv.KeyBlocks, blockid.KeyBlockKey(seqNo))
	if err != nil {
		return false, fmt.Errorf("archive: key block lookup %d: %w", seqNo, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	return value != nil, nil
}

// Gc implements spec §4.2's Block GC: iterates package entries ascending,
// deleting every entry (and its handle row, if recoverable) that fails all
// three retention clauses. Flushes internally every maxPerBatch deletions
// (maxPerBatch <= 0 means "never flush early"); always flushes at the end.
func (m *Manager) Gc(maxPerBatch int, topBlocks *TopBlocks) (int, error) {
	it, err := m.engine.NewIter(tonkv.PackageEntries, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("archive: gc iterator: %w", err)
	}
	defer it.Close()

	batch := m.engine.NewBatch()
	deleted := 0
	inBatch := 0

	commit := func() error {
		if err := batch.Commit(); err != nil {
			_ = batch.Close()
			return fmt.Errorf("archive: gc batch commit: %w", err)
		}
		return batch.Close()
	}

	for ok := it.First(); ok; ok = it.Next() {
		key := append([]byte(nil), it.Key()...)
		id, err := blockid.DecodeEntryKey(key)
		if err != nil {
			return deleted, fmt.Errorf("archive: gc decode entry key: %w", err)
		}

		retain, err := m.shouldRetain(id, topBlocks)
		if err != nil {
			return deleted, err
		}
		if retain {
			continue
		}

		if err := batch.Delete(tonkv.PackageEntries, key); err != nil {
			return deleted, fmt.Errorf("archive: gc delete entry: %w", err)
		}
		if hk, ok := blockid.HandleKey(key); ok {
			if err := batch.Delete(tonkv.BlockHandles, hk); err != nil {
				return deleted, fmt.Errorf("archive: gc delete handle: %w", err)
			}
		}
		deleted++
		inBatch++

		if maxPerBatch > 0 && inBatch >= maxPerBatch {
			if err := commit(); err != nil {
				return deleted, err
			}
			batch = m.engine.NewBatch()
			inBatch = 0
		}
	}

	if err := commit(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// RemoveOutdatedArchives implements spec §4.2's Archive GC: finds the
// greatest registered id strictly below untilID, keeps it and everything
// above it, and deletes every registered archive below it in one batch.
// Returns the number of archives deleted.
func (m *Manager) RemoveOutdatedArchives(untilID uint32) (int, error) {
	ids := m.index.RemoveBelow(untilID)
	if len(ids) == 0 {
		return 0, nil
	}

	batch := m.engine.NewBatch()
	for _, id := range ids {
		if err := batch.Delete(tonkv.Archives, archiveKey(id)); err != nil {
			_ = batch.Close()
			return 0, fmt.Errorf("archive: delete outdated archive %d: %w", id, err)
		}
		m.sliceCache.Remove(id)
	}
	if err := batch.Commit(); err != nil {
		_ = batch.Close()
		return 0, fmt.Errorf("archive: commit outdated archive deletion: %w", err)
	}
	if err := batch.Close(); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Preload implements spec §4.2's Preload: scans the archives column,
// registers every key in the in-memory index, and runs the integrity
// verifier over each value. A failed verification is logged and otherwise
// ignored — a corrupted archive must not block node startup.
func (m *Manager) Preload() error {
	it, err := m.engine.NewIter(tonkv.Archives, nil, nil)
	if err != nil {
		return fmt.Errorf("archive: preload iterator: %w", err)
	}
	defer it.Close()

	for ok := it.First(); ok; ok = it.Next() {
		key := it.Key()
		if len(key) != 4 {
			continue
		}
		id := binary.BigEndian.Uint32(key)
		m.index.Insert(id)

		if _, err := ParseSegments(it.Value()); err != nil {
			m.log.Warn("archive failed integrity check on preload", "archive_id", id, "err", err)
		}
	}
	return nil
}
