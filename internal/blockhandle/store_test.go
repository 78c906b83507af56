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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/tonkv"
)

func testId(seqNo uint32) blockid.Id {
	var id blockid.Id
	id.Workchain = -1
	id.ShardPrefix = 0x8000000000000000
	id.SeqNo = seqNo
	id.RootHash[0] = byte(seqNo)
	id.FileHash[0] = byte(seqNo + 1)
	return id
}

func TestTrySetIsOnceOnly(t *testing.T) {
	h := newHandle(testId(1))

	require.True(t, h.TrySet(HasData))
	require.False(t, h.TrySet(HasData))
	require.True(t, h.Has(HasData))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.TrySet(IsApplied) {
				wins++
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins, "exactly one goroutine must win the transition")
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	engine, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	store := New(engine)
	id := testId(42)

	h, err := store.GetOrCreate(engine, id)
	require.NoError(t, err)
	h.TrySet(HasData)
	h.TrySet(IsKeyBlock)
	h.SetMasterchainRefSeqNo(42)
	next := testId(43)
	h.SetNext1(next)

	batch := engine.NewBatch()
	require.NoError(t, store.Persist(batch, h))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	// Force a reload by dropping the in-memory registry entry directly.
	store.registry.Delete(id.RootHash)

	loaded, err := store.Load(engine, id.RootHash)
	require.NoError(t, err)
	require.True(t, loaded.Has(HasData))
	require.True(t, loaded.Has(IsKeyBlock))
	require.False(t, loaded.Has(IsApplied))
	require.Equal(t, uint32(42), loaded.MasterchainRefSeqNo())

	gotNext, ok := loaded.Next1()
	require.True(t, ok)
	require.Equal(t, next, gotNext)

	_, ok = loaded.Next2()
	require.False(t, ok)
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	engine, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	store := New(engine)
	_, err = store.Load(engine, blockid.Hash{0xff})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateSharesSameHandle(t *testing.T) {
	engine, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	store := New(engine)
	id := testId(7)

	a, err := store.GetOrCreate(engine, id)
	require.NoError(t, err)
	b, err := store.GetOrCreate(engine, id)
	require.NoError(t, err)
	require.Same(t, a, b)
}
