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
	"io"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// mergerName is persisted in the pebble manifest; bumping it is a storage
// format break, same as bumping erigon's DBSchemaVersion.
const mergerName = "tonnet.archivenode.v1"

// routingMerge dispatches a merge operand to the Cells or Archives operator
// based on the keyspace prefix byte tonkv itself adds to every key.
func routingMerge(key, value []byte) (pebble.ValueMerger, error) {
	if len(key) == 0 {
		return nil, errShortCellOperand
	}
	switch key[0] {
	case prefixByte[Cells]:
		m := &cellValueMerger{}
		if err := m.absorb(value); err != nil {
			return nil, err
		}
		return m, nil
	case prefixByte[Archives]:
		m := &archiveValueMerger{}
		if err := m.record(value); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errNoMergerForCF
	}
}

// PebbleEngine is the concrete Engine (spec §6) backed by a single
// pebble.DB, with column families modeled as byte-prefixed keyspaces and a
// single routing Merger standing in for RocksDB's per-CF merge operators.
type PebbleEngine struct {
	db *pebble.DB
}

// Options configures OpenPebble.
type Options struct {
	// Dir is the on-disk directory. Ignored when InMemory is true.
	Dir string
	// InMemory opens the engine against an in-memory vfs, for tests.
	InMemory bool
}

// OpenPebble opens (creating if necessary) a PebbleEngine.
func OpenPebble(opts Options) (*PebbleEngine, error) {
	popts := &pebble.Options{
		Merger: &pebble.Merger{
			Name:  mergerName,
			Merge: routingMerge,
		},
	}
	if opts.InMemory {
		popts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(opts.Dir, popts)
	if err != nil {
		return nil, err
	}
	return &PebbleEngine{db: db}, nil
}

func (e *PebbleEngine) Close() error { return e.db.Close() }

func (e *PebbleEngine) Get(cf CF, key []byte) ([]byte, io.Closer, error) {
	v, closer, err := e.db.Get(prefixed(cf, key))
	if err == pebble.ErrNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return v, closer, nil
}

func (e *PebbleEngine) NewIter(cf CF, lowerBound, upperBound []byte) (Iterator, error) {
	iterOpts := &pebble.IterOptions{
		LowerBound: prefixed(cf, lowerBound),
	}
	if upperBound != nil {
		iterOpts.UpperBound = prefixed(cf, upperBound)
	} else {
		iterOpts.UpperBound = prefixUpperBound(cf)
	}
	it, err := e.db.NewIter(iterOpts)
	if err != nil {
		return nil, err
	}
	return &pebbleIterator{it: it, prefixLen: 1}, nil
}

func (e *PebbleEngine) NewBatch() Batch {
	return &pebbleBatch{b: e.db.NewIndexedBatch()}
}

// prefixUpperBound returns the smallest key strictly greater than every key
// in cf's keyspace, i.e. cf's prefix byte incremented by one. Used as an
// unbounded-above iterator bound that still stays inside the CF.
func prefixUpperBound(cf CF) []byte {
	return []byte{prefixByte[cf] + 1}
}

type pebbleIterator struct {
	it        *pebble.Iterator
	prefixLen int
}

func (p *pebbleIterator) First() bool { return p.it.First() }
func (p *pebbleIterator) Next() bool  { return p.it.Next() }
func (p *pebbleIterator) Valid() bool { return p.it.Valid() }
func (p *pebbleIterator) Key() []byte { return p.it.Key()[p.prefixLen:] }
func (p *pebbleIterator) Value() []byte {
	return p.it.Value()
}
func (p *pebbleIterator) Close() error { return p.it.Close() }

type pebbleBatch struct {
	b *pebble.Batch
}

func (p *pebbleBatch) Get(cf CF, key []byte) ([]byte, io.Closer, error) {
	v, closer, err := p.b.Get(prefixed(cf, key))
	if err == pebble.ErrNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return v, closer, nil
}

func (p *pebbleBatch) NewIter(cf CF, lowerBound, upperBound []byte) (Iterator, error) {
	iterOpts := &pebble.IterOptions{LowerBound: prefixed(cf, lowerBound)}
	if upperBound != nil {
		iterOpts.UpperBound = prefixed(cf, upperBound)
	} else {
		iterOpts.UpperBound = prefixUpperBound(cf)
	}
	it, err := p.b.NewIter(iterOpts)
	if err != nil {
		return nil, err
	}
	return &pebbleIterator{it: it, prefixLen: 1}, nil
}

func (p *pebbleBatch) Set(cf CF, key, value []byte) error {
	return p.b.Set(prefixed(cf, key), value, nil)
}

func (p *pebbleBatch) Delete(cf CF, key []byte) error {
	return p.b.Delete(prefixed(cf, key), nil)
}

func (p *pebbleBatch) Merge(cf CF, key, value []byte) error {
	return p.b.Merge(prefixed(cf, key), value, nil)
}

func (p *pebbleBatch) Commit() error { return p.b.Commit(pebble.Sync) }
func (p *pebbleBatch) Close() error  { return p.b.Close() }
