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

package cellstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/tonkv"
)

// fakeCell is a hand-built InputCell for tests: its hash is its data followed
// by the first data byte of each ref, zero-extended to 32 bytes, so distinct
// leaves never collide.
type fakeCell struct {
	data []byte
	refs []*fakeCell
}

func leaf(b byte) *fakeCell { return &fakeCell{data: []byte{b}} }

func (c *fakeCell) Hash() blockid.Hash {
	var h blockid.Hash
	copy(h[:], c.data)
	for i, r := range c.refs {
		h[len(c.data)+i] = r.data[0]
	}
	return h
}

// Body encodes data and child hashes exactly the way the store itself would
// decode them back, so a round trip through RemoveCell's cascade sees the
// same refs the in-memory fakeCell graph has.
func (c *fakeCell) Body() []byte {
	refHashes := make([]blockid.Hash, len(c.refs))
	for i, r := range c.refs {
		refHashes[i] = r.Hash()
	}
	body, err := encodeBody(c.data, refHashes, 0, 0)
	if err != nil {
		panic(err)
	}
	return body
}
func (c *fakeCell) NumRefs() int        { return len(c.refs) }
func (c *fakeCell) Ref(i int) InputCell { return c.refs[i] }

func openTestEngine(t *testing.T) tonkv.Engine {
	t.Helper()
	e, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestStoreCellDedupAndLoad(t *testing.T) {
	engine := openTestEngine(t)
	store, err := New(engine, 64)
	require.NoError(t, err)

	shared := leaf(1)
	root := &fakeCell{data: []byte{9}, refs: []*fakeCell{shared, shared}}

	batch := engine.NewBatch()
	touched, err := store.StoreCell(batch, root)
	require.NoError(t, err)
	require.Equal(t, 2, touched) // root + the one distinct shared leaf
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	loaded, err := store.LoadCell(shared.Hash())
	require.NoError(t, err)
	require.Equal(t, shared.data, loaded.Data())
}

func TestRemoveCellCascadesOnlyWhenExhausted(t *testing.T) {
	engine := openTestEngine(t)
	store, err := New(engine, 64)
	require.NoError(t, err)

	child := leaf(2)
	parentA := &fakeCell{data: []byte{10}, refs: []*fakeCell{child}}
	parentB := &fakeCell{data: []byte{11}, refs: []*fakeCell{child}}

	batch := engine.NewBatch()
	_, err = store.StoreCell(batch, parentA)
	require.NoError(t, err)
	_, err = store.StoreCell(batch, parentB)
	require.NoError(t, err)
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	// child now has refcount 2 (one from each parent). Removing parentA must
	// not cascade into child, since parentB still references it.
	batch = engine.NewBatch()
	require.NoError(t, store.RemoveCell(batch, parentA.Hash()))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	_, err = store.LoadCell(child.Hash())
	require.NoError(t, err, "child must survive while parentB still references it")

	batch = engine.NewBatch()
	require.NoError(t, store.RemoveCell(batch, parentB.Hash()))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	_, err = store.LoadCell(child.Hash())
	require.ErrorIs(t, err, ErrCellNotFound)
}

func TestRemoveCellAfterLastReferenceIsNotFound(t *testing.T) {
	engine := openTestEngine(t)
	store, err := New(engine, 64)
	require.NoError(t, err)

	c := leaf(5)
	batch := engine.NewBatch()
	_, err = store.StoreCell(batch, c)
	require.NoError(t, err)
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	batch = engine.NewBatch()
	require.NoError(t, store.RemoveCell(batch, c.Hash()))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	batch = engine.NewBatch()
	err = store.RemoveCell(batch, c.Hash())
	require.ErrorIs(t, err, ErrCellNotFound)
	require.NoError(t, batch.Close())
}
