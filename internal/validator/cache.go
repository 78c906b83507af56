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

package validator

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// resolvedValidatorSet is what selectValidatorSet derives from a key block's
// proof: the validator set, its catchain config, and the raw proof bytes
// CheckMasterchainProof still needs. Caching all three together means a
// cache hit skips both entries.Get and ExtractValidatorSetFromProof.
type resolvedValidatorSet struct {
	vs    *ValidatorSet
	cc    *CatchainConfig
	proof []byte
}

// validatorSetCacheOptions configures the optional per-key-block validator
// set cache. A zero value disables caching: every broadcast re-derives its
// validator set from storage, which is always correct, just slower under
// sustained broadcast traffic referencing the same key block.
type validatorSetCacheOptions struct {
	capacity int
	ttl      time.Duration
}

// validatorSetCache memoizes selectValidatorSet's non-genesis branch, keyed
// by prev_key_block_seqno. Every broadcast at a given shard height resolves
// the same key block, so without this a validator processing a burst of
// shard broadcasts re-parses the identical key block proof on every one.
type validatorSetCache struct {
	c *expirable.LRU[uint32, resolvedValidatorSet]
}

// newValidatorSetCache builds a cache per opts, or no-op (every get misses,
// every set is a no-op) when opts is the zero value — mirroring the
// original's own Option<ShardStateCacheOptions>-gated cache.
func newValidatorSetCache(opts validatorSetCacheOptions) *validatorSetCache {
	if opts.capacity <= 0 {
		return &validatorSetCache{}
	}
	return &validatorSetCache{c: expirable.NewLRU[uint32, resolvedValidatorSet](opts.capacity, nil, opts.ttl)}
}

func (vc *validatorSetCache) get(keyBlockSeqNo uint32) (resolvedValidatorSet, bool) {
	if vc.c == nil {
		return resolvedValidatorSet{}, false
	}
	return vc.c.Get(keyBlockSeqNo)
}

func (vc *validatorSetCache) set(keyBlockSeqNo uint32, r resolvedValidatorSet) {
	if vc.c == nil {
		return
	}
	vc.c.Add(keyBlockSeqNo, r)
}
