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

package pkgentry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/tonkv"
)

func TestPutGetRoundTrip(t *testing.T) {
	engine, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	store := New(engine)
	var id blockid.EntryId
	id.Block.Workchain = -1
	id.Block.SeqNo = 100
	id.Block.RootHash[0] = 0xaa
	id.Kind = blockid.KindBlock

	body := []byte("serialized block body goes here, repeated for compressibility: xxxxxxxxxxxxxxxxxxxx")

	batch := engine.NewBatch()
	require.NoError(t, store.Put(batch, id, body))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	got, err := store.Get(engine, id)
	require.NoError(t, err)
	require.Equal(t, body, got)

	has, err := store.Has(engine, id)
	require.NoError(t, err)
	require.True(t, has)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	engine, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	store := New(engine)
	var id blockid.EntryId
	id.Block.SeqNo = 1
	id.Kind = blockid.KindProof

	_, err = store.Get(engine, id)
	require.ErrorIs(t, err, ErrNotFound)

	has, err := store.Has(engine, id)
	require.NoError(t, err)
	require.False(t, has)
}

func TestDeleteRemovesRow(t *testing.T) {
	engine, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	store := New(engine)
	var id blockid.EntryId
	id.Block.SeqNo = 5
	id.Kind = blockid.KindProofLink

	batch := engine.NewBatch()
	require.NoError(t, store.Put(batch, id, []byte("proof link bytes")))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	batch = engine.NewBatch()
	require.NoError(t, store.Delete(batch, id))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	_, err = store.Get(engine, id)
	require.ErrorIs(t, err, ErrNotFound)
}
